package server

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jafari-mohammad-reza/canvacast/pkg"
	"github.com/jafari-mohammad-reza/canvacast/pkg/db"
	"github.com/redis/go-redis/v9"
)

// ConsentStore is the durable set of user ids that completed the auth flow.
// Membership is the sole gate for configuration and publish success. Every
// mutation reaches the backing store before the HTTP response goes out.
type ConsentStore interface {
	IsConsented(ctx context.Context, userId string) (bool, error)
	Grant(ctx context.Context, userId string) error
	Revoke(ctx context.Context, userId string) error
	Close() error
}

func NewConsentStore(cfg *pkg.ServerConfig) (ConsentStore, error) {
	switch cfg.StoreBackend {
	case "", "sqlite":
		return NewSqliteConsentStore(cfg.SqlitePath)
	case "redis":
		return NewRedisConsentStore(cfg.RedisAddr), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

type sqliteConsentStore struct {
	conn *sql.DB
}

func NewSqliteConsentStore(path string) (ConsentStore, error) {
	conn, err := db.OpenSqlite(path)
	if err != nil {
		return nil, err
	}
	query := `CREATE TABLE IF NOT EXISTS consents (
	user_id VARCHAR(100) PRIMARY KEY,
	granted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP);
	`
	if _, err := conn.Exec(query); err != nil {
		return nil, err
	}
	return &sqliteConsentStore{conn: conn}, nil
}

func (s *sqliteConsentStore) IsConsented(ctx context.Context, userId string) (bool, error) {
	var found string
	query := `SELECT user_id FROM consents WHERE user_id = ?`
	err := s.conn.QueryRowContext(ctx, query, userId).Scan(&found)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *sqliteConsentStore) Grant(ctx context.Context, userId string) error {
	query := `INSERT OR IGNORE INTO consents (user_id) VALUES (?)`
	_, err := s.conn.ExecContext(ctx, query, userId)
	return err
}

func (s *sqliteConsentStore) Revoke(ctx context.Context, userId string) error {
	query := `DELETE FROM consents WHERE user_id = ?`
	_, err := s.conn.ExecContext(ctx, query, userId)
	return err
}

func (s *sqliteConsentStore) Close() error {
	return s.conn.Close()
}

const redisConsentKey = "canvacast:consents"

type redisConsentStore struct {
	client *redis.Client
}

func NewRedisConsentStore(addr string) ConsentStore {
	return &redisConsentStore{client: db.NewRedisClient(addr)}
}

func (s *redisConsentStore) IsConsented(ctx context.Context, userId string) (bool, error) {
	return s.client.SIsMember(ctx, redisConsentKey, userId).Result()
}

func (s *redisConsentStore) Grant(ctx context.Context, userId string) error {
	return s.client.SAdd(ctx, redisConsentKey, userId).Err()
}

func (s *redisConsentStore) Revoke(ctx context.Context, userId string) error {
	return s.client.SRem(ctx, redisConsentKey, userId).Err()
}

func (s *redisConsentStore) Close() error {
	return s.client.Close()
}
