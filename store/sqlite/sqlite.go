// Package sqlite registers a GORM-backed SQLite backend for sqlite://
// store URIs. Each collection is a table; payloads are kept as JSON text.
//
//	sqlite://experiment.db      relative file
//	sqlite:///var/lib/exp.db    absolute file
//	sqlite://:memory:           in-memory database
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/gonogo/logger"
	"github.com/kbukum/gonogo/store"
)

func init() {
	store.Register("sqlite", Dial)
}

// Submission is the row stored for one record.
type Submission struct {
	ID         uint   `gorm:"primaryKey"`
	Data       string `gorm:"type:text;not null"`
	SessionID  string `gorm:"size:64;index"`
	ReceivedAt *time.Time
	CreatedAt  time.Time
}

// Backend writes records into SQLite tables.
type Backend struct {
	db   *gorm.DB
	path string

	mu       sync.Mutex
	migrated map[string]bool
	closed   bool
}

var _ store.Backend = (*Backend)(nil)

// Path returns the database file named by a sqlite:// URI.
func Path(uri string) (string, error) {
	path := strings.TrimPrefix(uri, "sqlite://")
	if path == "" || path == uri {
		return "", fmt.Errorf("sqlite uri %q names no database file", uri)
	}
	return path, nil
}

// Dial opens the database file and pings it.
func Dial(ctx context.Context, cfg store.Config, log *logger.Logger) (store.Backend, error) {
	path, err := Path(cfg.URI)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newGormLogger(log, parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	// One connection keeps :memory: databases alive across inserts.
	sqlDB.SetMaxOpenConns(1)

	return &Backend{db: db, path: path, migrated: make(map[string]bool)}, nil
}

func (b *Backend) Name() string   { return "sqlite" }
func (b *Backend) Target() string { return b.path }

func (b *Backend) Insert(ctx context.Context, collection string, rec store.Record) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := b.migrate(collection); err != nil {
		return err
	}

	row := Submission{Data: string(data), SessionID: rec.SessionID}
	if !rec.ReceivedAt.IsZero() {
		at := rec.ReceivedAt.UTC()
		row.ReceivedAt = &at
	}
	return b.db.WithContext(ctx).Table(collection).Create(&row).Error
}

// Rows returns the rows of collection in insertion order.
func (b *Backend) Rows(ctx context.Context, collection string) ([]Submission, error) {
	var rows []Submission
	err := b.db.WithContext(ctx).Table(collection).Order("id").Find(&rows).Error
	return rows, err
}

// Close closes the connection pool. Safe to call multiple times.
func (b *Backend) Close(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *Backend) migrate(collection string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.migrated[collection] {
		return nil
	}
	if err := b.db.Table(collection).AutoMigrate(&Submission{}); err != nil {
		return fmt.Errorf("migrate %s: %w", collection, err)
	}
	b.migrated[collection] = true
	return nil
}
