package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eumlog/consultation-engine/internal/conversation"
	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/observability/metrics"
	"github.com/eumlog/consultation-engine/internal/script"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

const defaultMaxExportBytes int64 = 8 << 20

// ConsultationHandler serves record parsing, batch scripts and interactive
// sessions.
type ConsultationHandler struct {
	parser   intake.RecordParser
	renderer *script.Renderer
	sessions *conversation.Manager
	outcomes conversation.OutcomeReader
	metrics  *metrics.ConsultationMetrics
	logger   *logging.Logger
	maxBytes int64
}

// ConsultationHandlerConfig wires the handler. Outcomes is optional.
// MaxExportBytes caps a TSV export body; zero means 8 MiB.
type ConsultationHandlerConfig struct {
	Parser         intake.RecordParser
	Renderer       *script.Renderer
	Sessions       *conversation.Manager
	Outcomes       conversation.OutcomeReader
	Metrics        *metrics.ConsultationMetrics
	Logger         *logging.Logger
	MaxExportBytes int64
}

func NewConsultationHandler(cfg ConsultationHandlerConfig) *ConsultationHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	parser := cfg.Parser
	if parser == nil {
		parser = intake.NewTabularParser(intake.DefaultLayout)
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = script.NewRenderer(script.DefaultOptions())
	}
	maxBytes := cfg.MaxExportBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxExportBytes
	}
	return &ConsultationHandler{
		maxBytes: maxBytes,
		parser:   parser,
		renderer: renderer,
		sessions: cfg.Sessions,
		outcomes: cfg.Outcomes,
		metrics:  cfg.Metrics,
		logger:   logger.WithComponent("consultation_http"),
	}
}

// HasOutcomes reports whether outcome lookups are available.
func (h *ConsultationHandler) HasOutcomes() bool { return h.outcomes != nil }

type recordView struct {
	intake.ClientRecord
	Tier intake.Tier `json:"tier"`
}

type parseResponse struct {
	Records []recordView      `json:"records"`
	Stats   intake.BatchStats `json:"stats"`
}

// HealthCheck reports liveness.
func (h *ConsultationHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ParseRecords parses a tab-separated export body.
func (h *ConsultationHandler) ParseRecords(w http.ResponseWriter, r *http.Request) {
	records, stats, ok := h.readExport(w, r)
	if !ok {
		return
	}
	resp := parseResponse{Records: make([]recordView, 0, len(records)), Stats: stats}
	for _, rec := range records {
		resp.Records = append(resp.Records, recordView{ClientRecord: rec, Tier: rec.Tier()})
	}
	writeJSON(w, http.StatusOK, resp)
}

type scriptDocument struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Tier     intake.Tier `json:"tier"`
	Document string      `json:"document"`
}

// BatchScripts renders a consultation document per parsed record.
func (h *ConsultationHandler) BatchScripts(w http.ResponseWriter, r *http.Request) {
	records, stats, ok := h.readExport(w, r)
	if !ok {
		return
	}
	docs := make([]scriptDocument, 0, len(records))
	for _, rec := range records {
		s := script.Build(rec)
		docs = append(docs, scriptDocument{
			ID:       rec.ID,
			Name:     rec.Name,
			Tier:     s.Tier(),
			Document: h.renderer.Document(s),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs, "stats": stats})
}

func (h *ConsultationHandler) readExport(w http.ResponseWriter, r *http.Request) ([]intake.ClientRecord, intake.BatchStats, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("export rejected", "limit_bytes", tooLarge.Limit)
			jsonError(w, fmt.Sprintf("export exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return nil, intake.BatchStats{}, false
		}
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return nil, intake.BatchStats{}, false
	}
	if strings.TrimSpace(string(body)) == "" {
		jsonError(w, "empty export", http.StatusBadRequest)
		return nil, intake.BatchStats{}, false
	}
	records, stats := intake.ParseBatch(h.parser, string(body))
	h.metrics.ObserveRows(stats.Parsed, stats.Dropped)
	if stats.Dropped > 0 {
		h.logger.Info("export rows skipped", "rows", stats.Rows, "dropped", stats.Dropped)
	}
	return records, stats, true
}

type startSessionRequest struct {
	Row string `json:"row"`
}

type startSessionResponse struct {
	SessionID  string                 `json:"sessionId"`
	Key        string                 `json:"key"`
	Tier       intake.Tier            `json:"tier"`
	Messages   []conversation.Message `json:"messages"`
	Directives []script.Directive     `json:"directives"`
}

// StartSession opens or resumes an interactive consultation for one row.
func (h *ConsultationHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		jsonError(w, "sessions disabled", http.StatusServiceUnavailable)
		return
	}
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	rec, ok := h.parser.Parse(req.Row)
	if !ok {
		h.metrics.ObserveRows(0, 1)
		jsonError(w, conversation.ErrInvalidRecord.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.metrics.ObserveRows(1, 0)

	sess, msgs, err := h.sessions.Start(r.Context(), rec)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startSessionResponse{
		SessionID:  sess.ID,
		Key:        sess.Key,
		Tier:       rec.Tier(),
		Messages:   msgs,
		Directives: script.Directives(script.Build(sess.Record())),
	})
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage runs one client turn.
func (h *ConsultationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := sess.Send(r.Context(), req.Text)
	if errors.Is(err, conversation.ErrGenerationRejected) {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":    "generation request rejected",
			"messages": result.Messages,
		})
		return
	}
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetSession returns the stored transcript.
func (h *ConsultationHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	msgs, err := sess.Transcript(r.Context())
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sess.ID,
		"key":       sess.Key,
		"messages":  msgs,
	})
}

// GetOutcome returns the latest saved outcome for ?name=&birth=.
func (h *ConsultationHandler) GetOutcome(w http.ResponseWriter, r *http.Request) {
	if h.outcomes == nil {
		jsonError(w, "outcome lookup disabled", http.StatusServiceUnavailable)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	birth := strings.TrimSpace(r.URL.Query().Get("birth"))
	if name == "" || birth == "" {
		jsonError(w, "name and birth are required", http.StatusBadRequest)
		return
	}
	rec, found, err := h.outcomes.Latest(r.Context(), name, birth)
	if err != nil {
		h.logger.Error("failed to load outcome", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !found {
		jsonError(w, "no outcome found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ConsultationHandler) lookup(w http.ResponseWriter, r *http.Request) (*conversation.Session, bool) {
	if h.sessions == nil {
		jsonError(w, "sessions disabled", http.StatusServiceUnavailable)
		return nil, false
	}
	id := strings.TrimSpace(chi.URLParam(r, "sessionID"))
	sess, err := h.sessions.Get(id)
	if err != nil {
		h.writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}

func (h *ConsultationHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, conversation.ErrEmptyMessage):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, conversation.ErrInvalidRecord):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("session request failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
