package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eumlog/consultation-engine/internal/conversation"
	"github.com/eumlog/consultation-engine/internal/http/handlers"
	httpmiddleware "github.com/eumlog/consultation-engine/internal/http/middleware"
	"github.com/eumlog/consultation-engine/pkg/logging"
)

type echoLLM struct{}

func (echoLLM) Complete(ctx context.Context, req conversation.LLMRequest) (conversation.LLMResponse, error) {
	return conversation.LLMResponse{Text: "네 확인했습니다."}, nil
}

func newTestRouter(t *testing.T, cfg *Config) http.Handler {
	t.Helper()

	logger := logging.Default()
	manager := conversation.NewManager(conversation.ManagerOptions{LLM: echoLLM{}, Logger: logger})
	cfg.Logger = logger
	cfg.ConsultationHandler = handlers.NewConsultationHandler(handlers.ConsultationHandlerConfig{
		Sessions: manager,
		Logger:   logger,
	})
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, &Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestRouterMetricsOptional(t *testing.T) {
	router := newTestRouter(t, &Config{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", rr.Code)
	}

	router = newTestRouter(t, &Config{MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics handler, got %d", rr.Code)
	}
}

func TestRouterParseEndpoint(t *testing.T) {
	router := newTestRouter(t, &Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/records:parse", strings.NewReader("헤더\t없음"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"dropped":1`) {
		t.Fatalf("expected dropped row in stats, got %s", rr.Body.String())
	}
}

func TestRouterSessionNotFound(t *testing.T) {
	router := newTestRouter(t, &Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/unknown", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestRouterOutcomesRouteRequiresReader(t *testing.T) {
	router := newTestRouter(t, &Config{})

	req := httptest.NewRequest(http.MethodGet, "/v1/outcomes?name=a&birth=1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected outcomes route to be absent, got %d", rr.Code)
	}
}

func TestRouterSessionRateLimit(t *testing.T) {
	router := newTestRouter(t, &Config{SessionLimiter: httpmiddleware.NewRateLimiter(0.001, 1)})

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/v1/sessions/unknown", nil)
		req.Header.Set("X-Real-Ip", "198.51.100.4")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}
	if code := send(); code != http.StatusNotFound {
		t.Fatalf("expected first request to reach handler, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
}
