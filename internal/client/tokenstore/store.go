// Package tokenstore keeps the single bearer token issued by the lab API.
//
// A Store never fails loudly: if the backing storage is unavailable the
// token is simply treated as absent and writes become no-ops, so callers
// behave as an anonymous visitor instead of crashing.
package tokenstore

import (
	"context"
	"database/sql"
	"sync"

	"github.com/gilab/labsite/internal/client/repositories/metadata"
	"github.com/gilab/labsite/internal/dbx"
	"github.com/gilab/labsite/internal/logging"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// KeyAccessToken is the metadata key the token is persisted under.
const KeyAccessToken = "access_token"

type Store interface {
	// Set replaces any existing token. An empty token is the same as Clear.
	Set(ctx context.Context, token string)
	// Get reports the current token and whether one is present.
	Get(ctx context.Context) (string, bool)
	// Clear removes the token. Clearing an absent token is a no-op.
	Clear(ctx context.Context)
}

// Persistent stores the token in the local SQLite metadata table.
type Persistent struct {
	db  *sql.DB
	log logging.Logger
}

func NewPersistent(db *sql.DB, log logging.Logger) *Persistent {
	if log == nil {
		log = logging.Nop()
	}
	return &Persistent{db: db, log: log.With("component", "tokenstore")}
}

func (p *Persistent) Set(ctx context.Context, token string) {
	if token == "" {
		p.Clear(ctx)
		return
	}
	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Set(ctx, KeyAccessToken, []byte(token))
	})
	if err != nil {
		p.log.Warn(ctx, "token not persisted", "error", err)
	}
}

func (p *Persistent) Get(ctx context.Context) (string, bool) {
	v, err := metadata.NewSQLiteRepository(p.db).Get(ctx, KeyAccessToken)
	if err != nil {
		p.log.Warn(ctx, "token unreadable, treating as absent", "error", err)
		return "", false
	}
	if len(v) == 0 {
		return "", false
	}
	return string(v), true
}

func (p *Persistent) Clear(ctx context.Context) {
	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, KeyAccessToken)
	})
	if err != nil {
		p.log.Warn(ctx, "token not cleared", "error", err)
	}
}

// Memory keeps the token for the lifetime of the process only.
type Memory struct {
	mu    sync.RWMutex
	token string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Set(_ context.Context, token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *Memory) Get(context.Context) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *Memory) Clear(context.Context) {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}

// Disabled is used when no storage could be opened at all.
type Disabled struct{}

func (Disabled) Set(context.Context, string)         {}
func (Disabled) Get(context.Context) (string, bool) { return "", false }
func (Disabled) Clear(context.Context)               {}
