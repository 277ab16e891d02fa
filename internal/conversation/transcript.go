package conversation

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Transcript roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message kinds. Chat turns leave Kind empty.
const (
	KindIntro      = "intro"
	KindNotice     = "notice"
	KindSaveNotice = "save_notice"
	// KindOutcome holds the raw data block of a completing turn.
	KindOutcome    = "outcome"
)

// Message is one bubble in a consultation transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Kind      string    `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptStore persists transcripts keyed by client identity.
type TranscriptStore interface {
	Append(ctx context.Context, key string, msgs ...Message) error
	List(ctx context.Context, key string) ([]Message, error)
}

// TranscriptKey identifies a client across sessions: (name, birthToken).
func TranscriptKey(name, birthToken string) string {
	return strings.TrimSpace(name) + "_" + strings.TrimSpace(birthToken)
}

// FormatTranscript renders the transcript as "[role] text" blocks.
func FormatTranscript(msgs []Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, "["+m.Role+"] "+m.Text)
	}
	return strings.Join(parts, "\n\n")
}

// MemoryTranscriptStore keeps transcripts in process memory.
type MemoryTranscriptStore struct {
	mu    sync.RWMutex
	items map[string][]Message
}

func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{items: make(map[string][]Message)}
}

func (s *MemoryTranscriptStore) Append(_ context.Context, key string, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append(s.items[key], msgs...)
	return nil
}

func (s *MemoryTranscriptStore) List(_ context.Context, key string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.items[key]))
	copy(out, s.items[key])
	return out, nil
}
