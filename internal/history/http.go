package history

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Handler struct {
	store        *Store
	userResolver func(*http.Request) string
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) SetUserResolver(fn func(*http.Request) string) {
	h.userResolver = fn
}

func (h *Handler) user(r *http.Request) string {
	if h.userResolver != nil {
		if u := strings.TrimSpace(h.userResolver(r)); u != "" {
			return u
		}
	}
	return "default"
}

// /api/history?limit=N
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.store.Recent(r.Context(), h.user(r), limit)
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, entries)
}

// /api/history/stats?days=N
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	stats, err := h.store.StatsSince(r.Context(), h.user(r), since)
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, stats)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
