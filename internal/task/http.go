package task

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eisendo/internal/model"
)

// CompletionRecorder receives every completion for the history log.
// Recording failures must not fail the completion itself.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, user string, res CompletionResult) error
}

type Handler struct {
	repo         Repo
	repoResolver func(*http.Request) Repo
	userResolver func(*http.Request) string
	recorder     CompletionRecorder
	log          zerolog.Logger
}

func NewHandler(repo Repo, log zerolog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) SetRepoResolver(fn func(*http.Request) Repo) {
	h.repoResolver = fn
}

func (h *Handler) SetUserResolver(fn func(*http.Request) string) {
	h.userResolver = fn
}

func (h *Handler) SetCompletionRecorder(rec CompletionRecorder) {
	h.recorder = rec
}

func (h *Handler) repoForRequest(r *http.Request) Repo {
	if h.repoResolver != nil {
		if repo := h.repoResolver(r); repo != nil {
			return repo
		}
	}
	return h.repo
}

func (h *Handler) userForRequest(r *http.Request) string {
	if h.userResolver != nil {
		if u := strings.TrimSpace(h.userResolver(r)); u != "" {
			return u
		}
	}
	return "default"
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

func parseBoolPtr(s string) *bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "any" {
		return nil
	}
	if s == "1" || s == "true" || s == "yes" {
		b := true
		return &b
	}
	if s == "0" || s == "false" || s == "no" {
		b := false
		return &b
	}
	return nil
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		filter := ListFilter{
			Status:    q.Get("status"),
			Quadrant:  q.Get("quadrant"),
			Recurring: parseBoolPtr(q.Get("recurring")),
		}
		ts, err := repo.List(filter)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, ts)
		return

	case http.MethodPost:
		var in model.TaskUpsert
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}

		t, err := repo.Create(model.Task{
			Title:       in.Title,
			Description: in.Description,
			Quadrant:    in.Quadrant,
			Tags:        in.Tags,
			DueDate:     in.DueDate,
			Complexity:  in.Complexity,
			Recurrence:  in.Recurrence,
		})
		if err != nil {
			if errors.Is(err, ErrTitleRequired) {
				writeErr(w, 400, err.Error())
				return
			}
			writeErr(w, 500, err.Error())
			return
		}

		writeJSON(w, 201, t)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/tasks/{id} and its sub-resources
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	repo := h.repoForRequest(r)

	tail := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}

	parts := strings.Split(tail, "/")
	id := model.TaskID(parts[0])

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			t, err := repo.Get(id)
			if errors.Is(err, ErrNotFound) {
				writeErr(w, 404, "not found")
				return
			}
			if err != nil {
				writeErr(w, 500, err.Error())
				return
			}
			writeJSON(w, 200, t)
			return

		case http.MethodPatch:
			var p Patch
			if err := decodeJSON(r, &p); err != nil {
				writeErr(w, 400, "bad json")
				return
			}

			t, err := repo.Update(id, p)
			if errors.Is(err, ErrNotFound) {
				writeErr(w, 404, "not found")
				return
			}
			if errors.Is(err, ErrTitleRequired) {
				writeErr(w, 400, err.Error())
				return
			}
			if err != nil {
				writeErr(w, 500, err.Error())
				return
			}
			writeJSON(w, 200, t)
			return

		case http.MethodDelete:
			err := repo.Delete(id)
			if errors.Is(err, ErrNotFound) {
				writeErr(w, 404, "not found")
				return
			}
			if err != nil {
				writeErr(w, 500, err.Error())
				return
			}
			writeJSON(w, 200, map[string]any{"ok": true})
			return

		default:
			writeErr(w, 405, "method not allowed")
			return
		}
	}

	// /api/tasks/{id}/complete
	if len(parts) == 2 && parts[1] == "complete" {
		if r.Method != http.MethodPost {
			writeErr(w, 405, "method not allowed")
			return
		}

		res, err := Complete(repo, id, time.Now())
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}

		if h.recorder != nil {
			if err := h.recorder.RecordCompletion(r.Context(), h.userForRequest(r), res); err != nil {
				h.log.Warn().Err(err).Str("task", string(id)).Msg("completion history not recorded")
			}
		}

		writeJSON(w, 200, res)
		return
	}

	// /api/tasks/{id}/calendar.ics
	if len(parts) == 2 && parts[1] == "calendar.ics" {
		if r.Method != http.MethodGet {
			writeErr(w, 405, "method not allowed")
			return
		}

		t, err := repo.Get(id)
		if errors.Is(err, ErrNotFound) {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}

		ics, err := BuildTaskCalendarICS(t, time.Now())
		if err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="task.ics"`)
		_, _ = w.Write([]byte(ics))
		return
	}

	writeErr(w, 404, "not found")
}

// /api/matrix — pending tasks grouped by quadrant, the board view's payload.
func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	repo := h.repoForRequest(r)

	ts, err := repo.List(ListFilter{Status: "pending"})
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}

	out := map[model.Quadrant][]model.Task{}
	for _, q := range model.Quadrants() {
		out[q] = []model.Task{}
	}
	for _, t := range ts {
		out[t.Quadrant] = append(out[t.Quadrant], t)
	}
	writeJSON(w, 200, out)
}
