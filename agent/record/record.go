// Package record persists finished calls so they can be looked up later.
package record

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
)

const (
	BackendNone     = "none"
	BackendUpstash  = "upstash"
	BackendPostgres = "postgres"
)

// Config is loaded with the RECORD prefix and picks one backend.
type Config struct {
	Backend string `envconfig:"BACKEND" split_words:"true" default:"none"`
}

// Open builds the configured store. A nil store means persistence is disabled.
func Open(ctx context.Context, cfg Config, upstash UpstashRedisConfig, postgres PostgresConfig) (contractx.RecordStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return nil, nil
	case BackendUpstash:
		store, err := NewUpstashRedisStore(upstash)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendPostgres:
		store, err := NewPostgresStore(ctx, postgres)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown record backend %q", contractx.ErrValidation, cfg.Backend)
	}
}

func stampCreatedAt(rec *contractx.CallRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	} else {
		rec.CreatedAt = rec.CreatedAt.UTC()
	}
}

// restoreRaw puts the stored raw payload back on the snapshot so raw output modes
// print what the platform returned.
func restoreRaw(rec *contractx.CallRecord) {
	if rec.Snapshot != nil && rec.RawSnapshot != "" {
		rec.Snapshot.Raw = json.RawMessage(rec.RawSnapshot)
	}
}
