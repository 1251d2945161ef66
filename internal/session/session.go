// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session keeps per-user interactive state between requests. State
// is ephemeral: entries expire after a TTL and nothing is written to disk.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// ErrNotFound is returned by Load for unknown or expired ids.
var ErrNotFound = errors.New("session not found")

// Session is the state of one browser session. Every field follows last
// write wins.
type Session struct {
	ID string `json:"id"`

	// Single-paper mode.
	FileName  string                 `json:"file_name,omitempty"`
	Pages     int                    `json:"pages,omitempty"`
	Sections  []types.Section        `json:"sections,omitempty"`
	Summaries []types.SectionSummary `json:"summaries,omitempty"`
	Question  string                 `json:"question,omitempty"`
	Analysis  string                 `json:"analysis,omitempty"`

	// Multi-document mode.
	Documents []types.DocumentSummary `json:"documents,omitempty"`
	Topic     string                  `json:"topic,omitempty"`
	Review    string                  `json:"review,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty session with a fresh random id.
func New() *Session {
	return &Session{ID: uuid.NewString(), UpdatedAt: time.Now().UTC()}
}

// ValidID reports whether id has the form issued by New.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ResetPaper clears single-paper state before a new upload.
func (s *Session) ResetPaper() {
	s.FileName, s.Pages = "", 0
	s.Sections, s.Summaries = nil, nil
	s.Question, s.Analysis = "", ""
}

// ResetReview clears multi-document state before a new review.
func (s *Session) ResetReview() {
	s.Documents, s.Topic, s.Review = nil, "", ""
}

// Store loads and saves sessions. Implementations are safe for concurrent
// use.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// NewStore returns the store selected by cfg.Backend.
func NewStore(ctx context.Context, cfg types.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "", types.SessionMemory:
		return NewMemoryStore(cfg.TTL, cfg.CleanupInterval), nil
	case types.SessionRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return NewRedisStore(rdb, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
