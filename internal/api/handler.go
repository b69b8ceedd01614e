// Package api implements the HTTP surface of the opportunity service.
//
// Routes:
//
//	POST /api/sync-opportunities   → run one sync for {type}, default mixed
//	GET  /api/check-llm            → round-trip the configured model
//	GET  /health                   → liveness
//	GET  /metrics                  → Prometheus exposition
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/llm"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

const (
	serviceName  = "opportunity-service"
	checkPrompt  = "Reply with the single word: OK"
	maxBodyBytes = 1 << 16
)

// Syncer runs one sync cycle.
type Syncer interface {
	RunSync(ctx context.Context, category model.Category, trigger model.Trigger) (model.SyncReport, error)
}

// Options configures a Handler.
type Options struct {
	Syncer      Syncer
	Generator   llm.Generator
	Metrics     http.Handler // optional; mounted at /metrics
	Version     string
	FrontendURL string
	Log         *zap.Logger
}

// Handler holds shared dependencies.
type Handler struct {
	syncer      Syncer
	gen         llm.Generator
	metrics     http.Handler
	version     string
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		syncer:      opts.Syncer,
		gen:         opts.Generator,
		metrics:     opts.Metrics,
		version:     opts.Version,
		frontendURL: opts.FrontendURL,
		log:         opts.Log.Named("api"),
		now:         time.Now,
	}
}

// RegisterRoutes mounts every route on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/api/sync-opportunities", h.syncOpportunities)
	mux.HandleFunc("/api/check-llm", h.checkLLM)
	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics)
	}
}

// Router returns the routes wrapped in the standard middleware chain.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return Chain(mux,
		RequestID,
		Recover(h.log),
		AccessLog(h.log),
		CORS(h.frontendURL),
	)
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jsonOK(w, map[string]string{
		"status":    "ok",
		"service":   serviceName,
		"version":   h.version,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// syncRequest keeps type raw so an absent field and an explicit null differ.
type syncRequest struct {
	Type json.RawMessage `json:"type"`
}

type syncResponse struct {
	Success bool `json:"success"`
	model.SyncReport
}

// syncOpportunities handles POST /api/sync-opportunities. The run is detached
// from the request context so that a client hanging up does not abort it.
func (h *Handler) syncOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	category, err := parseSyncRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.syncer.RunSync(context.WithoutCancel(r.Context()), category, model.TriggerManual)
	if err != nil {
		h.log.Error("manual sync failed",
			zap.String("category", string(category)),
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	jsonOK(w, syncResponse{Success: true, SyncReport: report})
}

// parseSyncRequest reads {type?}. An empty body counts as {}.
func parseSyncRequest(r *http.Request) (model.Category, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("could not read request body")
	}

	var req syncRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return "", fmt.Errorf("invalid JSON body")
		}
	}
	if req.Type == nil {
		return model.CategoryMixed, nil
	}

	// null, numbers and the empty string are all invalid, like unknown names.
	var typ string
	if err := json.Unmarshal(req.Type, &typ); err != nil || typ == "" {
		return "", invalidType()
	}

	category, err := model.ParseCategory(typ)
	if err != nil {
		return "", invalidType()
	}
	return category, nil
}

func invalidType() error {
	return fmt.Errorf("Invalid type. Must be one of: %s", model.CategoryList())
}

// checkLLM handles GET /api/check-llm.
func (h *Handler) checkLLM(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	text, err := h.gen.Generate(r.Context(), checkPrompt)
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		jsonError(w, fmt.Sprintf("%s_API_KEY is missing", strings.ToUpper(h.gen.Provider())), http.StatusBadRequest)
		return
	case err != nil:
		h.log.Warn("llm check failed", zap.String("provider", h.gen.Provider()), zap.Error(err))
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	jsonOK(w, map[string]any{
		"success":  true,
		"provider": h.gen.Provider(),
		"model":    h.gen.Model(),
		"response": strings.TrimSpace(text),
	})
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
