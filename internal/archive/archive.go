// Package archive keeps a write-behind log of finished matches. Rooms hand
// results to a Recorder without waiting on the database.
package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrUnsupportedDSN = errors.New("unsupported archive dsn")

// Result describes one finished match.
type Result struct {
	RoomID     string
	Winner     string
	BlueName   string
	OrangeName string
	Commands   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder must not block the caller.
type Recorder interface {
	Record(Result)
}

// Nop discards every result.
type Nop struct{}

func (Nop) Record(Result) {}

// MatchRecord is the persisted row.
type MatchRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomID     string    `gorm:"index;size:32" json:"roomId"`
	Winner     string    `gorm:"size:8" json:"winner"`
	BlueName   string    `gorm:"size:64" json:"blueName"`
	OrangeName string    `gorm:"size:64" json:"orangeName"`
	Commands   int       `json:"commands"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `gorm:"index" json:"finishedAt"`
}

type Store struct {
	db    *gorm.DB
	queue chan Result
	log   *zap.Logger
}

const queueSize = 256

// Open connects using a "postgres://" / "postgresql://" URL or a
// "sqlite:<path>" DSN and migrates the schema.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.AutoMigrate(&MatchRecord{}); err != nil {
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, queue: make(chan Result, queueSize), log: log}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:")), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDSN, dsn)
	}
}

// Record queues r; when the queue is full the result is dropped.
func (s *Store) Record(r Result) {
	select {
	case s.queue <- r:
	default:
		s.log.Warn("archive queue full, dropping match result", zap.String("room", r.RoomID))
	}
}

// Run writes queued results until ctx is cancelled, then flushes what is
// left.
func (s *Store) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return nil
		case r := <-s.queue:
			s.write(ctx, r)
		}
	}
}

func (s *Store) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case r := <-s.queue:
			s.write(ctx, r)
		default:
			return
		}
	}
}

func (s *Store) write(ctx context.Context, r Result) {
	rec := MatchRecord{
		RoomID:     r.RoomID,
		Winner:     r.Winner,
		BlueName:   r.BlueName,
		OrangeName: r.OrangeName,
		Commands:   r.Commands,
		StartedAt:  r.StartedAt.UTC(),
		FinishedAt: r.FinishedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.log.Error("archive match result", zap.String("room", r.RoomID), zap.Error(err))
	}
}

// Recent returns the newest results for a room.
func (s *Store) Recent(ctx context.Context, roomID string, limit int) ([]MatchRecord, error) {
	var out []MatchRecord
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("finished_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
