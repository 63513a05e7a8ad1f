package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jafari-mohammad-reza/canvacast/pkg"
	"github.com/stretchr/testify/assert"
)

func TestSqliteConsentStore(t *testing.T) {
	store, err := NewSqliteConsentStore(filepath.Join(t.TempDir(), "consents.sqlite"))
	assert.Nil(t, err)
	defer store.Close()
	ctx := context.Background()

	consented, err := store.IsConsented(ctx, "u1")
	assert.Nil(t, err)
	assert.False(t, consented)

	assert.Nil(t, store.Grant(ctx, "u1"))
	consented, err = store.IsConsented(ctx, "u1")
	assert.Nil(t, err)
	assert.True(t, consented)

	// granting an already-present id is a no-op
	assert.Nil(t, store.Grant(ctx, "u1"))
	consented, _ = store.IsConsented(ctx, "u1")
	assert.True(t, consented)

	assert.Nil(t, store.Revoke(ctx, "u1"))
	consented, _ = store.IsConsented(ctx, "u1")
	assert.False(t, consented)

	// revoking an absent id is a no-op
	assert.Nil(t, store.Revoke(ctx, "u1"))
	consented, _ = store.IsConsented(ctx, "u1")
	assert.False(t, consented)
}

func TestSqliteConsentStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consents.sqlite")
	ctx := context.Background()

	store, err := NewSqliteConsentStore(path)
	assert.Nil(t, err)
	assert.Nil(t, store.Grant(ctx, "u1"))
	assert.Nil(t, store.Close())

	// consent survives a process restart
	reopened, err := NewSqliteConsentStore(path)
	assert.Nil(t, err)
	defer reopened.Close()
	consented, err := reopened.IsConsented(ctx, "u1")
	assert.Nil(t, err)
	assert.True(t, consented)
}

func TestNewConsentStoreBackendSelection(t *testing.T) {
	cfg := &pkg.ServerConfig{StoreBackend: "sqlite", SqlitePath: filepath.Join(t.TempDir(), "c.sqlite")}
	store, err := NewConsentStore(cfg)
	assert.Nil(t, err)
	assert.NotNil(t, store)
	store.Close()

	_, err = NewConsentStore(&pkg.ServerConfig{StoreBackend: "mongo"})
	assert.NotNil(t, err)
}
