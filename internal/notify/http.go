package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type Handler struct {
	repo         *FileRepo
	userResolver func(*http.Request) string
}

func NewHandler(repo *FileRepo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) SetUserResolver(fn func(*http.Request) string) {
	h.userResolver = fn
}

func (h *Handler) repoFor(r *http.Request) *FileRepo {
	if h.userResolver != nil {
		if u := strings.TrimSpace(h.userResolver(r)); u != "" {
			return h.repo.ForUser(u)
		}
	}
	return h.repo
}

// /api/notifications/settings
func (h *Handler) SettingsRoot(w http.ResponseWriter, r *http.Request) {
	repo := h.repoFor(r)

	switch r.Method {
	case http.MethodGet:
		s, err := repo.Settings()
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, s)

	case http.MethodPut:
		var s Settings
		if err := decodeJSON(r, &s); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		saved, err := repo.UpdateSettings(s)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, saved)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

// /api/notifications/subscriptions and /api/notifications/subscriptions/{id}
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	repo := h.repoFor(r)

	tail := strings.TrimPrefix(r.URL.Path, "/api/notifications/subscriptions")
	tail = strings.Trim(tail, "/")

	if tail == "" {
		switch r.Method {
		case http.MethodGet:
			subs, err := repo.Subscriptions()
			if err != nil {
				writeErr(w, 500, err.Error())
				return
			}
			writeJSON(w, 200, subs)

		case http.MethodPost:
			var sub Subscription
			if err := decodeJSON(r, &sub); err != nil {
				writeErr(w, 400, "bad json")
				return
			}
			saved, err := repo.Subscribe(sub)
			if err != nil {
				writeErr(w, 400, err.Error())
				return
			}
			writeJSON(w, 201, saved)

		default:
			writeErr(w, 405, "method not allowed")
		}
		return
	}

	if r.Method != http.MethodDelete {
		writeErr(w, 405, "method not allowed")
		return
	}
	err := repo.Unsubscribe(tail)
	if errors.Is(err, ErrSubscriptionNotFound) {
		writeErr(w, 404, "not found")
		return
	}
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}
