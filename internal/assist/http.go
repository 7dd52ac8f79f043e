package assist

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type ParseRequest struct {
	Prompt string `json:"prompt"`
}

type ParseResponse struct {
	Draft Draft `json:"draft"`
}

// Handler serves /api/assist/parse. Parser may be nil when no API key is
// configured; the endpoint then answers 503 instead of breaking the UI.
type Handler struct {
	parser  Parser
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewHandler(parser Parser, maxPerMinute int, log zerolog.Logger) *Handler {
	if maxPerMinute < 1 {
		maxPerMinute = 10
	}
	return &Handler{
		parser:  parser,
		limiter: rate.NewLimiter(rate.Limit(float64(maxPerMinute)/60.0), maxPerMinute),
		log:     log,
	}
}

func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	if h.parser == nil {
		writeErr(w, 503, "assist is not configured")
		return
	}
	if !h.limiter.Allow() {
		writeErr(w, 429, "too many requests")
		return
	}

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		writeErr(w, 400, "prompt is required")
		return
	}

	draft, err := h.parser.Parse(r.Context(), prompt)
	if err != nil {
		h.log.Warn().Err(err).Msg("assist parse failed")
		writeErr(w, 502, "assist parse failed")
		return
	}
	writeJSON(w, 200, ParseResponse{Draft: draft})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
