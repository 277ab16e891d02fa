package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/eumlog/consultation-engine/internal/negotiation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutcomeRecord is what a finished consultation persists. A session saves one
// record per completion, told apart by CompletionID.
type OutcomeRecord struct {
	SessionID    string              `json:"sessionId"`
	CompletionID string              `json:"completionId,omitempty"`
	Name         string              `json:"name"`
	BirthToken   string              `json:"birth"`
	Outcome      negotiation.Outcome `json:"outcome"`
	ChatLog      string              `json:"chatLog"`
	CompletedAt  time.Time           `json:"completedAt"`
}

// Key returns the transcript key the record belongs to.
func (r OutcomeRecord) Key() string {
	return TranscriptKey(r.Name, r.BirthToken)
}

// OutcomeStore persists consultation outcomes.
type OutcomeStore interface {
	Save(ctx context.Context, rec OutcomeRecord) error
}

// OutcomeReader looks up the latest outcome for a client.
type OutcomeReader interface {
	Latest(ctx context.Context, name, birthToken string) (OutcomeRecord, bool, error)
}

// MemoryOutcomeStore keeps outcomes in process memory.
type MemoryOutcomeStore struct {
	mu      sync.RWMutex
	records []OutcomeRecord
}

func NewMemoryOutcomeStore() *MemoryOutcomeStore {
	return &MemoryOutcomeStore{}
}

func (s *MemoryOutcomeStore) Save(_ context.Context, rec OutcomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *MemoryOutcomeStore) Latest(_ context.Context, name, birthToken string) (OutcomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := TranscriptKey(name, birthToken)
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Key() == key {
			return s.records[i], true, nil
		}
	}
	return OutcomeRecord{}, false, nil
}

// Records returns a copy of everything saved so far.
func (s *MemoryOutcomeStore) Records() []OutcomeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OutcomeRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ScriptOutcomeStore posts outcomes to the spreadsheet script endpoint.
type ScriptOutcomeStore struct {
	url    string
	client *http.Client
}

type scriptPayload struct {
	Action  string            `json:"action"`
	Name    string            `json:"name"`
	Birth   string            `json:"birth"`
	Updates map[string]string `json:"updates"`
	Summary string            `json:"summary"`
	Memo    string            `json:"memo"`
	ChatLog string            `json:"chatLog"`
}

func NewScriptOutcomeStore(url string, timeout time.Duration) *ScriptOutcomeStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ScriptOutcomeStore{url: url, client: &http.Client{Timeout: timeout}}
}

func (s *ScriptOutcomeStore) Save(ctx context.Context, rec OutcomeRecord) error {
	if s == nil || strings.TrimSpace(s.url) == "" {
		return errors.New("conversation: outcome script url not configured")
	}

	updates := make(map[string]string, len(rec.Outcome.Updates))
	for k, v := range rec.Outcome.Updates {
		updates[string(k)] = v
	}
	body, err := json.Marshal(scriptPayload{
		Action:  "save_consultation",
		Name:    rec.Name,
		Birth:   rec.BirthToken,
		Updates: updates,
		Summary: rec.Outcome.Summary,
		Memo:    rec.Outcome.Memo,
		ChatLog: rec.ChatLog,
	})
	if err != nil {
		return fmt.Errorf("conversation: marshal outcome: %w", err)
	}

	// The script endpoint reads the raw body; text/plain avoids a preflight
	// on the spreadsheet side.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("conversation: build outcome request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("conversation: post outcome: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("conversation: post outcome: unexpected status %d", resp.StatusCode)
	}
	return nil
}

type outcomeQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresOutcomeStore writes outcomes to the consultation_outcomes table.
type PostgresOutcomeStore struct {
	db outcomeQuerier
}

func NewPostgresOutcomeStore(pool *pgxpool.Pool) *PostgresOutcomeStore {
	if pool == nil {
		panic("conversation: pgx pool required")
	}
	return &PostgresOutcomeStore{db: pool}
}

func newPostgresOutcomeStoreWithQuerier(db outcomeQuerier) *PostgresOutcomeStore {
	if db == nil {
		panic("conversation: querier required")
	}
	return &PostgresOutcomeStore{db: db}
}

func (s *PostgresOutcomeStore) Save(ctx context.Context, rec OutcomeRecord) error {
	updates, err := json.Marshal(rec.Outcome.Updates)
	if err != nil {
		return fmt.Errorf("conversation: marshal updates: %w", err)
	}
	completedAt := rec.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO consultation_outcomes
			(session_id, completion_id, client_name, birth_token, updates, summary, memo, chat_log, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id, completion_id) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, query,
		rec.SessionID, rec.CompletionID, rec.Name, rec.BirthToken, updates,
		rec.Outcome.Summary, rec.Outcome.Memo, rec.ChatLog, completedAt,
	); err != nil {
		return fmt.Errorf("conversation: insert outcome: %w", err)
	}
	return nil
}

func (s *PostgresOutcomeStore) Latest(ctx context.Context, name, birthToken string) (OutcomeRecord, bool, error) {
	query := `
		SELECT session_id, completion_id, updates, summary, memo, chat_log, completed_at
		FROM consultation_outcomes
		WHERE client_name = $1 AND birth_token = $2
		ORDER BY completed_at DESC
		LIMIT 1
	`
	rec := OutcomeRecord{Name: name, BirthToken: birthToken}
	var updates []byte
	err := s.db.QueryRow(ctx, query, name, birthToken).Scan(
		&rec.SessionID, &rec.CompletionID, &updates, &rec.Outcome.Summary, &rec.Outcome.Memo, &rec.ChatLog, &rec.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OutcomeRecord{}, false, nil
		}
		return OutcomeRecord{}, false, fmt.Errorf("conversation: load outcome: %w", err)
	}
	rec.Outcome.Updates = map[negotiation.FieldKey]string{}
	if len(updates) > 0 {
		if err := json.Unmarshal(updates, &rec.Outcome.Updates); err != nil {
			return OutcomeRecord{}, false, fmt.Errorf("conversation: decode updates: %w", err)
		}
	}
	return rec, true, nil
}

// MultiOutcomeStore saves to every configured store and joins the failures.
type MultiOutcomeStore []OutcomeStore

func (m MultiOutcomeStore) Save(ctx context.Context, rec OutcomeRecord) error {
	var errs []error
	for _, store := range m {
		if store == nil {
			continue
		}
		if err := store.Save(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
