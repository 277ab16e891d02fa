package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/negotiation"
	"github.com/eumlog/consultation-engine/internal/observability/metrics"
	"github.com/eumlog/consultation-engine/internal/script"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

const (
	retryNotice       = "상담 매니저와의 연결이 잠시 원활하지 않았습니다. 방금 말씀해주신 내용을 다시 한번 입력 부탁드려요!"
	rejectedNotice    = "⚠ 오류: 상담 엔진 설정을 확인해주세요. 관리자에게 문의 부탁드립니다."
	savedNotice       = "✅ 상담 내용이 저장되었습니다. 매니저가 확인 후 매칭을 시작하겠습니다."
	saveFailedNotice  = "⚠ 상담 내용 저장에 실패했습니다. 대화 기록은 보관되어 있으니 매니저에게 알려주세요."
	defaultTurnBudget = 90 * time.Second
)

// ManagerOptions wires the dependencies every session shares.
type ManagerOptions struct {
	LLM         LLMClient
	Transcripts TranscriptStore
	Outcomes    OutcomeStore
	Model       string
	Temperature float32
	// TurnTimeout bounds one Send, retries included.
	TurnTimeout time.Duration
	Metrics     *metrics.ConsultationMetrics
	Logger      *logging.Logger
}

// Manager owns the live consultation sessions of one process.
type Manager struct {
	opts   ManagerOptions
	logger *logging.Logger
	tracer trace.Tracer
	now    func() time.Time

	mu    sync.Mutex
	byID  map[string]*Session
	byKey map[string]*Session
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.Transcripts == nil {
		opts.Transcripts = NewMemoryTranscriptStore()
	}
	if opts.Outcomes == nil {
		opts.Outcomes = NewMemoryOutcomeStore()
	}
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = defaultTurnBudget
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		opts:   opts,
		logger: logger.WithComponent("consultation_session"),
		tracer: otel.Tracer("eumlog.internal.conversation.session"),
		now:    func() time.Time { return time.Now().UTC() },
		byID:   make(map[string]*Session),
		byKey:  make(map[string]*Session),
	}
}

// Session is one client's interactive consultation. Turns within a session
// are serialized.
type Session struct {
	ID  string
	Key string

	manager     *Manager
	record      intake.ClientRecord
	instruction string
	logger      *logging.Logger

	mu        sync.Mutex
	saving    bool   // set while a completion is being forwarded
	savedTurn string // id of the last forwarded completing bubble
}

// TurnResult carries the bubbles a turn produced.
type TurnResult struct {
	Messages  []Message            `json:"messages"`
	Completed bool                 `json:"completed"`
	Saved     bool                 `json:"saved"`
	Outcome   *negotiation.Outcome `json:"outcome,omitempty"`
}

// Start opens or resumes the session for a record. A stored transcript is
// resumed as-is; otherwise the greeting bubbles are appended. A resumed
// transcript that ended on an unsaved completion is saved now.
func (m *Manager) Start(ctx context.Context, rec intake.ClientRecord) (*Session, []Message, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return nil, nil, ErrInvalidRecord
	}
	key := TranscriptKey(rec.Name, rec.BirthToken)

	m.mu.Lock()
	sess, ok := m.byKey[key]
	if !ok {
		sess = &Session{
			ID:          uuid.NewString(),
			Key:         key,
			manager:     m,
			record:      rec,
			instruction: script.Instruction(script.Build(rec)),
			logger:      m.logger.WithSession(key),
		}
		m.byKey[key] = sess
		m.byID[sess.ID] = sess
	}
	m.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	msgs, err := m.opts.Transcripts.List(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if len(msgs) > 0 {
		m.opts.Metrics.ObserveSessionEvent("resumed")
		if _, err := sess.finalizeLocked(ctx, msgs); err != nil {
			sess.logger.Warn("resumed completion not saved", "error", err)
		}
		msgs, err = m.opts.Transcripts.List(ctx, key)
		if err != nil {
			return nil, nil, err
		}
		return sess, msgs, nil
	}

	intro := script.IntroMessages(rec)
	greeting := make([]Message, 0, len(intro))
	for _, text := range intro {
		greeting = append(greeting, m.message(RoleModel, text, KindIntro))
	}
	if err := m.opts.Transcripts.Append(ctx, key, greeting...); err != nil {
		return nil, nil, err
	}
	m.opts.Metrics.ObserveSessionEvent("started")
	sess.logger.Info("consultation session started", "session_id", sess.ID, "tier", string(rec.Tier()))
	return sess, greeting, nil
}

// Get returns a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (m *Manager) message(role, text, kind string) Message {
	return Message{ID: uuid.NewString(), Role: role, Text: text, Kind: kind, Timestamp: m.now()}
}

// Record returns the record the session was opened with.
func (s *Session) Record() intake.ClientRecord { return s.record }

// Transcript returns the stored transcript.
func (s *Session) Transcript(ctx context.Context) ([]Message, error) {
	return s.manager.opts.Transcripts.List(ctx, s.Key)
}

// Send records a client message, generates the reply and saves the outcome
// when the reply completes the consultation. Transient generation failures
// yield a notice bubble and a nil error; rejected requests yield a notice and
// ErrGenerationRejected.
func (s *Session) Send(ctx context.Context, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.manager
	ctx, span := m.tracer.Start(ctx, "conversation.session.send",
		trace.WithAttributes(attribute.String("session_id", s.ID)))
	defer span.End()

	history, err := m.opts.Transcripts.List(ctx, s.Key)
	if err != nil {
		return TurnResult{}, err
	}

	userMsg := m.message(RoleUser, text, "")
	if err := m.opts.Transcripts.Append(ctx, s.Key, userMsg); err != nil {
		return TurnResult{}, err
	}
	m.opts.Metrics.ObserveSessionEvent("turn")

	turnCtx, cancel := context.WithTimeout(ctx, m.opts.TurnTimeout)
	defer cancel()
	resp, genErr := m.opts.LLM.Complete(turnCtx, s.request(history, text))
	if genErr != nil {
		span.RecordError(genErr)
		return s.failTurn(ctx, genErr)
	}

	s.logger.Debug("consultation turn generated",
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)

	visible, block := SplitOutcome(resp.Text)
	bubbles := SplitBubbles(visible)
	result := TurnResult{Messages: make([]Message, 0, len(bubbles)+1)}
	for _, b := range bubbles {
		result.Messages = append(result.Messages, m.message(RoleModel, b, ""))
	}
	toStore := result.Messages
	if block != "" {
		toStore = append(append([]Message(nil), result.Messages...), m.message(RoleModel, block, KindOutcome))
	}
	if err := m.opts.Transcripts.Append(ctx, s.Key, toStore...); err != nil {
		return TurnResult{}, err
	}

	all := append(append(history, userMsg), toStore...)
	saved, notice, outcome, err := s.finalizeWithOutcome(ctx, all)
	if outcome != nil {
		result.Completed = true
		result.Outcome = outcome
		result.Saved = saved
	}
	if notice != nil {
		result.Messages = append(result.Messages, *notice)
	}
	if err != nil {
		span.RecordError(err)
		s.logger.Error("consultation outcome not saved", "error", err)
	}
	span.SetAttributes(attribute.Bool("completed", result.Completed))
	return result, nil
}

// Finalize saves a pending completion. It reports whether a save happened.
// Repeated calls save at most once.
func (s *Session) Finalize(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, err := s.manager.opts.Transcripts.List(ctx, s.Key)
	if err != nil {
		return false, err
	}
	return s.finalizeLocked(ctx, msgs)
}

func (s *Session) finalizeLocked(ctx context.Context, msgs []Message) (bool, error) {
	saved, _, _, err := s.finalizeWithOutcome(ctx, msgs)
	return saved, err
}

func (s *Session) finalizeWithOutcome(ctx context.Context, msgs []Message) (bool, *Message, *negotiation.Outcome, error) {
	if s.saving {
		return false, nil, nil, nil
	}
	outcome, turnID, pending := pendingCompletion(msgs)
	if !pending || (turnID != "" && turnID == s.savedTurn) {
		return false, nil, nil, nil
	}
	s.saving = true
	defer func() { s.saving = false }()

	m := s.manager
	rec := OutcomeRecord{
		SessionID:    s.ID,
		CompletionID: turnID,
		Name:         s.record.Name,
		BirthToken:   s.record.BirthToken,
		Outcome:      outcome,
		ChatLog:      FormatTranscript(chatTurns(msgs)),
		CompletedAt:  m.now(),
	}

	saveErr := m.opts.Outcomes.Save(ctx, rec)
	s.savedTurn = turnID
	text := savedNotice
	status := "saved"
	if saveErr != nil {
		text = saveFailedNotice
		status = "failed"
	}
	m.opts.Metrics.ObserveOutcomeSave(status)

	notice := m.message(RoleModel, text, KindSaveNotice)
	if err := m.opts.Transcripts.Append(ctx, s.Key, notice); err != nil {
		saveErr = errors.Join(saveErr, err)
	}
	if saveErr == nil {
		s.logger.Info("consultation outcome saved", "session_id", s.ID, "changes", outcome.HasChanges())
	}
	return saveErr == nil, &notice, &outcome, saveErr
}

func (s *Session) failTurn(ctx context.Context, genErr error) (TurnResult, error) {
	m := s.manager
	text := retryNotice
	if errors.Is(genErr, ErrGenerationRejected) {
		text = rejectedNotice
	}
	notice := m.message(RoleModel, text, KindNotice)
	if err := m.opts.Transcripts.Append(ctx, s.Key, notice); err != nil {
		s.logger.Warn("failed to store notice", "error", err)
	}
	result := TurnResult{Messages: []Message{notice}}

	if errors.Is(genErr, ErrGenerationRejected) {
		s.logger.Error("generation rejected", "error", genErr)
		return result, fmt.Errorf("%w: %v", ErrGenerationRejected, genErr)
	}
	s.logger.Warn("generation unavailable", "error", genErr)
	return result, nil
}

func (s *Session) request(history []Message, text string) LLMRequest {
	req := turnRequest(s.instruction, history, script.TurnReminder+text)
	req.Model = s.manager.opts.Model
	req.Temperature = s.manager.opts.Temperature
	return req
}

// chatTurns drops system notices and data blocks, keeping what the client saw
// as conversation.
func chatTurns(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Kind {
		case KindNotice, KindSaveNotice, KindOutcome:
			continue
		}
		out = append(out, msg)
	}
	return out
}

// PendingCompletion reports whether the most recent generated turn completed
// the consultation and has not been followed by a save notice. The outcome
// comes from that turn's data block. Once a completion has been saved, a later
// closing turn only counts when it carries a new data block.
func PendingCompletion(msgs []Message) (negotiation.Outcome, bool) {
	outcome, _, ok := pendingCompletion(msgs)
	return outcome, ok
}

// pendingCompletion also returns the id of the bubble holding the completion
// phrase, which identifies the completion across repeated detection.
func pendingCompletion(msgs []Message) (negotiation.Outcome, string, bool) {
	var block string
	var turn []string
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		switch {
		case msg.Kind == KindSaveNotice, msg.Role == RoleUser:
			return negotiation.Outcome{}, "", false
		case msg.Kind == KindOutcome:
			if block == "" {
				block = msg.Text
			}
		case msg.Kind != "":
			continue
		default:
			turn = append([]string{msg.Text}, turn...)
			if !strings.Contains(msg.Text, negotiation.CompletionPhrase) {
				continue
			}
			if block == "" && hasSaveNotice(msgs[:i]) {
				return negotiation.Outcome{}, "", false
			}
			return ParseOutcome(block, collectTurn(msgs[:i], turn)), msg.ID, true
		}
	}
	return negotiation.Outcome{}, "", false
}

func hasSaveNotice(msgs []Message) bool {
	for _, msg := range msgs {
		if msg.Kind == KindSaveNotice {
			return true
		}
	}
	return false
}

// collectTurn prepends earlier bubbles of the same model turn.
func collectTurn(before []Message, turn []string) []string {
	for i := len(before) - 1; i >= 0; i-- {
		msg := before[i]
		if msg.Role != RoleModel || msg.Kind != "" {
			break
		}
		turn = append([]string{msg.Text}, turn...)
	}
	return turn
}
