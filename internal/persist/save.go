package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DaanHessen/sci-adventure/internal/engine"
	"github.com/DaanHessen/sci-adventure/internal/util"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB wraps gorm.DB for the save-slot store and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error    { return d.sql.Close() }
func (d *DB) Gorm() *gorm.DB  { return d.gorm }

// Open connects to Postgres per config.
func Open(ctx context.Context, cfg util.Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(10)
	sdb.SetMaxIdleConns(5)
	if err := sdb.PingContext(ctx); err != nil {
		return nil, err
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// SaveRecord is the row shape behind the `saves` table: one JSON-column
// document per save slot (nested structs marshaled into a single
// column), keyed by player-chosen slot name within a profile, since a
// save snapshot is already a single coherent unit.
type SaveRecord struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
	Slot      string
	Snapshot  json.RawMessage
	UpdatedAt time.Time
}

// Store is the save/restore repository.
type Store struct {
	db  *DB
	log util.Logger
}

func NewStore(db *DB, log util.Logger) *Store {
	return &Store{db: db, log: log}
}

// Save writes (or overwrites) the snapshot for (profileID, slot).
func (s *Store) Save(ctx context.Context, profileID uuid.UUID, slot string, snap engine.SaveSnapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.db.gorm.WithContext(ctx).Exec(
		`INSERT INTO saves (id, profile_id, slot, snapshot, updated_at)
		 VALUES (?, ?, ?, ?, now())
		 ON CONFLICT (profile_id, slot) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = now()`,
		uuid.New(), profileID, slot, body,
	).Error
}

// Load reads the snapshot for (profileID, slot) and validates it against
// the currently loaded world package's digest before handing it back:
// a save made against a different world revision is rejected rather than
// silently applied, per the digest-mismatch invariant.
func (s *Store) Load(ctx context.Context, profileID uuid.UUID, slot string, expectDigest string) (engine.SaveSnapshot, error) {
	var rec SaveRecord
	err := s.db.gorm.WithContext(ctx).Raw(
		`SELECT id, profile_id, slot, snapshot, updated_at FROM saves WHERE profile_id = ? AND slot = ?`,
		profileID, slot,
	).Scan(&rec).Error
	if err != nil {
		return engine.SaveSnapshot{}, err
	}
	if rec.ID == uuid.Nil {
		return engine.SaveSnapshot{}, &engine.SaveError{Kind: engine.SaveMissingIDs, Detail: fmt.Sprintf("no save in slot %q", slot)}
	}
	var snap engine.SaveSnapshot
	if err := json.Unmarshal(rec.Snapshot, &snap); err != nil {
		return engine.SaveSnapshot{}, &engine.SaveError{Kind: engine.SaveSchemaUnsupported, Detail: err.Error()}
	}
	if expectDigest != "" && snap.WorldPackageDigest != expectDigest {
		return engine.SaveSnapshot{}, &engine.SaveError{Kind: engine.SaveDigestMismatch, Detail: fmt.Sprintf("save digest %q != world digest %q", snap.WorldPackageDigest, expectDigest)}
	}
	return snap, nil
}

// List returns every slot name saved for a profile.
func (s *Store) List(ctx context.Context, profileID uuid.UUID) ([]string, error) {
	var slots []string
	err := s.db.gorm.WithContext(ctx).Raw(
		`SELECT slot FROM saves WHERE profile_id = ? ORDER BY updated_at DESC`, profileID,
	).Scan(&slots).Error
	return slots, err
}
