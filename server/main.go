package server

import (
	"log/slog"
	"os"

	"github.com/jafari-mohammad-reza/canvacast/pkg"
)

func InitServer() {
	cfg, err := pkg.GetServerConfig()
	if err != nil {
		slog.Error("Error getting server config", "err", err.Error())
		os.Exit(1)
	}
	if err := pkg.EnsureDir(cfg.PublicDir); err != nil {
		slog.Error("Error creating public dir", "dir", cfg.PublicDir, "err", err.Error())
		os.Exit(1)
	}
	store, err := NewConsentStore(cfg)
	if err != nil {
		slog.Error("Error opening consent store", "backend", cfg.StoreBackend, "err", err.Error())
		os.Exit(1)
	}
	defer store.Close()
	if err := InitHttpServer(cfg, store); err != nil {
		slog.Error("Error init http server", "err", err.Error())
	}
}
