package main

import (
	"log/slog"

	"github.com/jafari-mohammad-reza/canvacast/cli"
)

func main() {
	if err := cli.InitCli(); err != nil {
		slog.Error("Error init cli", "err", err.Error())
	}
}
