package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/origon-labs/apiutils/authctx"
	apperrors "github.com/origon-labs/apiutils/errors"
	"github.com/origon-labs/apiutils/logger"
	"github.com/origon-labs/apiutils/observability"
	"github.com/origon-labs/apiutils/server/middleware"
	"github.com/origon-labs/apiutils/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine builds a Gin engine with the given middleware and a GET /ping
// route running the handler.
func newEngine(handler gin.HandlerFunc, mws ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	for _, mw := range mws {
		engine.Use(mw)
	}
	engine.GET("/ping", handler)
	return engine
}

func decodeErrorBody(t *testing.T, body []byte) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("response is not a valid error envelope: %v", err)
	}
	return resp
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	}, middleware.Recovery())

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	engine := newEngine(func(_ *gin.Context) {
		panic("test panic")
	}, middleware.Recovery())

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	resp := decodeErrorBody(t, rr.Body.Bytes())
	if resp.Error.Code != apperrors.ErrCodeInternal {
		t.Fatalf("code = %s, want INTERNAL_ERROR", resp.Error.Code)
	}
}

// ---------------------------------------------------------------------------
// RequestID and Correlation
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, middleware.RequestID())

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))

	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id in response headers")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, middleware.RequestID())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("X-Request-Id", "custom-id-123")
	engine.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-Id"); got != "custom-id-123" {
		t.Fatalf("expected custom-id-123, got %s", got)
	}
}

func TestCorrelation_MintsAndEchoes(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		if c.GetString("correlation_id") == "" {
			t.Error("expected correlation_id in gin context")
		}
		c.Status(http.StatusOK)
	}, middleware.Correlation())

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))
	if rr.Header().Get(middleware.HeaderCorrelationID) == "" {
		t.Error("expected minted correlation ID on response")
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set(middleware.HeaderCorrelationID, "corr-42")
	engine.ServeHTTP(rr, req)
	if got := rr.Header().Get(middleware.HeaderCorrelationID); got != "corr-42" {
		t.Fatalf("expected corr-42, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func TestCORS_WildcardPreflight(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("handler should not be called for OPTIONS preflight")
	}))

	// The wildcard header must be present even without an Origin header.
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("OPTIONS", "/dev-login", http.NoBody))

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
}

func TestCORS_SpecificOrigin(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{"GET", "POST"},
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("Origin", "https://example.com")
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("expected https://example.com, got %s", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Fatalf("expected 'GET, POST', got %s", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"https://allowed.com"},
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for disallowed origin, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// RequireAuth
// ---------------------------------------------------------------------------

func stubValidator(claims *token.Claims, err error) func(string) (*token.Claims, error) {
	return func(string) (*token.Claims, error) {
		return claims, err
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		t.Error("handler should not run without a token")
	}, middleware.RequireAuth(middleware.AuthConfig{
		Validator: stubValidator(&token.Claims{}, nil),
	}))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	resp := decodeErrorBody(t, rr.Body.Bytes())
	if resp.Error.Code != apperrors.ErrCodeMalformedHeader {
		t.Fatalf("code = %s, want MALFORMED_HEADER", resp.Error.Code)
	}
}

func TestRequireAuth_WrongScheme(t *testing.T) {
	validatorCalled := false
	engine := newEngine(func(c *gin.Context) {
		t.Error("handler should not run")
	}, middleware.RequireAuth(middleware.AuthConfig{
		Validator: func(string) (*token.Claims, error) {
			validatorCalled = true
			return nil, nil
		},
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("Authorization", "Token abc123")
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if validatorCalled {
		t.Error("header parsing must fail before the validator runs")
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		t.Error("handler should not run")
	}, middleware.RequireAuth(middleware.AuthConfig{
		Validator: stubValidator(nil, apperrors.TokenValidation(apperrors.ReasonExpired)),
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	resp := decodeErrorBody(t, rr.Body.Bytes())
	if resp.Error.Reason != apperrors.ReasonExpired {
		t.Fatalf("reason = %s, want EXPIRED", resp.Error.Reason)
	}
}

func TestRequireAuth_ValidTokenStoresClaims(t *testing.T) {
	claims := &token.Claims{Roles: []string{"developer"}}
	claims.Subject = "alice"

	engine := newEngine(func(c *gin.Context) {
		got := authctx.MustGet[*token.Claims](c.Request.Context())
		if got.UserID() != "alice" {
			t.Errorf("context user = %q, want alice", got.UserID())
		}
		if c.GetString("user_id") != "alice" {
			t.Errorf("gin user_id = %q, want alice", c.GetString("user_id"))
		}
		c.Status(http.StatusOK)
	}, middleware.RequireAuth(middleware.AuthConfig{
		Validator: stubValidator(claims, nil),
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequireAuth_SkipPaths(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, middleware.RequireAuth(middleware.AuthConfig{
		Validator: stubValidator(nil, apperrors.TokenValidation(apperrors.ReasonMalformed)),
		SkipPaths: []string{"/ping"},
	}))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected skip path to bypass auth, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// RateLimit
// ---------------------------------------------------------------------------

func TestRateLimit_Blocks(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerMinute: 2,
		KeyFunc:           func(*gin.Context) string { return "fixed" },
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the limit, got %d", rr.Code)
	}
	resp := decodeErrorBody(t, rr.Body.Bytes())
	if resp.Error.Code != apperrors.ErrCodeRateLimited {
		t.Fatalf("code = %s, want RATE_LIMITED", resp.Error.Code)
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger_PassesThrough(t *testing.T) {
	log := logger.NewDefault("test")
	handler := middleware.RequestLogger(log, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/config", http.NoBody))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestRequestLogger_SkipsOperational(t *testing.T) {
	log := logger.NewDefault("test")
	called := false
	handler := middleware.RequestLogger(log, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if !called {
		t.Error("handler should still be called for health endpoints")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestBodySizeLimit_AppliesLimit(t *testing.T) {
	handler := middleware.BodySizeLimit("1KB")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/dev-login", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

func TestChain_Order(t *testing.T) {
	var order []string

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-before")
			next.ServeHTTP(w, r)
			order = append(order, "m1-after")
		})
	}
	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-before")
			next.ServeHTTP(w, r)
			order = append(order, "m2-after")
		})
	}

	chain := middleware.Chain(m1, m2)
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/ping", http.NoBody))

	expected := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Fatalf("position %d: expected %s, got %s (full: %v)", i, v, order[i], order)
		}
	}
}

// ---------------------------------------------------------------------------
// statusWriter Flush support
// ---------------------------------------------------------------------------

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestStatusWriter_Flush(t *testing.T) {
	fr := &flushRecorder{ResponseWriter: httptest.NewRecorder()}

	log := logger.NewDefault("test")
	handler := middleware.RequestLogger(log, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(fr, httptest.NewRequest("GET", "/stream", http.NoBody))

	if !fr.flushed {
		t.Error("expected Flush to be delegated to underlying writer")
	}
}

// ---------------------------------------------------------------------------
// Validation span
// ---------------------------------------------------------------------------

func TestRequireAuth_RecordsValidationSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	claims := &token.Claims{}
	claims.Subject = "carol"

	engine := newEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, middleware.RequireAuth(middleware.AuthConfig{
		Validator: stubValidator(claims, nil),
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() != observability.SpanTokenValidation {
			continue
		}
		found = true
		var status, userID string
		for _, kv := range span.Attributes() {
			switch string(kv.Key) {
			case observability.AttrStatus:
				status = kv.Value.AsString()
			case observability.AttrUserID:
				userID = kv.Value.AsString()
			}
		}
		if status != observability.ResultOK {
			t.Errorf("span status = %q, want %s", status, observability.ResultOK)
		}
		if userID != "carol" {
			t.Errorf("span user = %q, want carol", userID)
		}
	}
	if !found {
		t.Fatalf("no %s span recorded", observability.SpanTokenValidation)
	}
}

func TestRequireAuth_SpanRecordsFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	engine := newEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, middleware.RequireAuth(middleware.AuthConfig{
		Validator: stubValidator(nil, apperrors.TokenValidation(apperrors.ReasonExpired)),
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() != observability.SpanTokenValidation {
			continue
		}
		found = true
		var status string
		for _, kv := range span.Attributes() {
			if string(kv.Key) == observability.AttrStatus {
				status = kv.Value.AsString()
			}
		}
		if status != string(apperrors.ReasonExpired) {
			t.Errorf("span status = %q, want %s", status, apperrors.ReasonExpired)
		}
		if len(span.Events()) == 0 {
			t.Error("expected the validation error recorded on the span")
		}
	}
	if !found {
		t.Fatalf("no %s span recorded", observability.SpanTokenValidation)
	}
}

func TestCORS_NotConfigured(t *testing.T) {
	engine := newEngine(func(c *gin.Context) {
		c.Status(http.StatusOK)
	}, middleware.GinCORS(&middleware.CORSConfig{}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", http.NoBody)
	req.Header.Set("Origin", "https://spa.example.com")
	engine.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want unset", got)
	}
}
