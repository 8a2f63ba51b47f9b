package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/vapi-caller/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var _ contractx.RecordStore = (*PostgresStore)(nil)

type PostgresConfig struct {
	DSN          string        `envconfig:"DSN" split_words:"true"`
	Timeout      time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	CreateSchema bool          `envconfig:"CREATE_SCHEMA" split_words:"true" default:"true"`
}

type callRecordRow struct {
	bun.BaseModel `bun:"table:call_records,alias:cr"`

	CallID      string    `bun:"call_id,pk"`
	Destination string    `bun:"destination"`
	Goal        string    `bun:"goal"`
	Status      string    `bun:"status,notnull"`
	Outcome     string    `bun:"outcome,notnull"`
	Summary     string    `bun:"summary,type:jsonb,nullzero"`
	Snapshot    string    `bun:"snapshot,type:jsonb,nullzero"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

// PostgresStore keeps one row per call in the call_records table.
type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if cfg.Timeout > 0 {
		opts = append(opts, pgdriver.WithTimeout(cfg.Timeout))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	store := NewPostgresStoreWithDB(bun.NewDB(sqldb, pgdialect.New()))

	if cfg.CreateSchema {
		if err := store.CreateSchema(ctx); err != nil {
			_ = sqldb.Close()
			return nil, err
		}
	}
	return store, nil
}

func NewPostgresStoreWithDB(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	if _, err := s.createTableQuery().Exec(ctx); err != nil {
		return fmt.Errorf("create call_records table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Save(ctx context.Context, rec *contractx.CallRecord) error {
	if rec == nil {
		return ErrNilRecord
	}
	if strings.TrimSpace(rec.CallID) == "" {
		return ErrInvalidCallID
	}
	stampCreatedAt(rec)

	row, err := toRow(rec)
	if err != nil {
		return err
	}
	if _, err := s.upsertQuery(row).Exec(ctx); err != nil {
		return fmt.Errorf("save call record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, callID string) (*contractx.CallRecord, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return nil, ErrInvalidCallID
	}

	row := new(callRecordRow)
	err := s.db.NewSelect().Model(row).Where("cr.call_id = ?", callID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contractx.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load call record: %w", err)
	}
	return fromRow(row)
}

func (s *PostgresStore) createTableQuery() *bun.CreateTableQuery {
	return s.db.NewCreateTable().Model((*callRecordRow)(nil)).IfNotExists()
}

func (s *PostgresStore) upsertQuery(row *callRecordRow) *bun.InsertQuery {
	return s.db.NewInsert().
		Model(row).
		On("CONFLICT (call_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("outcome = EXCLUDED.outcome").
		Set("summary = EXCLUDED.summary").
		Set("snapshot = EXCLUDED.snapshot")
}

func toRow(rec *contractx.CallRecord) (*callRecordRow, error) {
	row := &callRecordRow{
		CallID:      rec.CallID,
		Destination: rec.Destination,
		Goal:        rec.Goal,
		Status:      string(rec.Status.Normalize()),
		Outcome:     string(rec.Outcome),
		Snapshot:    rec.RawSnapshot,
		CreatedAt:   rec.CreatedAt,
	}
	if row.Snapshot == "" && rec.Snapshot != nil {
		raw, err := json.Marshal(rec.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("marshal snapshot: %w", err)
		}
		row.Snapshot = string(raw)
	}
	if rec.Summary != nil {
		raw, err := json.Marshal(rec.Summary)
		if err != nil {
			return nil, fmt.Errorf("marshal order summary: %w", err)
		}
		row.Summary = string(raw)
	}
	return row, nil
}

func fromRow(row *callRecordRow) (*contractx.CallRecord, error) {
	rec := &contractx.CallRecord{
		CallID:      row.CallID,
		Destination: row.Destination,
		Goal:        row.Goal,
		Status:      contractx.Status(row.Status),
		Outcome:     contractx.Outcome(row.Outcome),
		RawSnapshot: row.Snapshot,
		CreatedAt:   row.CreatedAt.UTC(),
	}
	if row.Snapshot != "" {
		snap, err := contractx.DecodeSnapshot([]byte(row.Snapshot))
		if err != nil {
			return nil, fmt.Errorf("decode stored snapshot: %w", err)
		}
		rec.Snapshot = snap
	}
	if row.Summary != "" {
		var summary contractx.OrderSummary
		if err := json.Unmarshal([]byte(row.Summary), &summary); err != nil {
			return nil, fmt.Errorf("decode stored summary: %w", err)
		}
		rec.Summary = &summary
	}
	return rec, nil
}
