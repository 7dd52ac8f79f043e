package recurrence

import (
	"encoding/json"
	"net/http"
	"time"
)

// PreviewRequest carries either an edited form or a raw stored spec. When
// both are present the form wins, since that is what the user is looking at.
type PreviewRequest struct {
	Form       *FormState      `json:"form,omitempty"`
	Recurrence json.RawMessage `json:"recurrence,omitempty"`
	DueDate    string          `json:"dueDate,omitempty"`
	Count      int             `json:"count,omitempty"`
}

type PreviewResponse struct {
	Spec        Spec      `json:"spec"`
	Form        FormState `json:"form"`
	Description string    `json:"description"`
	Next        []string  `json:"next,omitempty"`
}

// PreviewHandler answers the edit form's live preview: the normalized spec,
// its description, and the next few occurrences from the given due date.
type PreviewHandler struct {
	// Now is the clock used for previews without a due date. Defaults to
	// time.Now; tests pin it.
	Now func() time.Time
}

func (h *PreviewHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// /api/recurrence/preview
func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		previewErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		previewErr(w, http.StatusBadRequest, "bad json")
		return
	}

	var spec Spec
	switch {
	case req.Form != nil:
		spec = BuildSpec(*req.Form)
	case len(req.Recurrence) > 0:
		// Spec unmarshalling validates; malformed input previews as none.
		_ = json.Unmarshal(req.Recurrence, &spec)
	}

	resp := PreviewResponse{
		Spec:        spec,
		Form:        ParseToForm(spec),
		Description: Describe(spec),
	}

	if !spec.IsNone() {
		count := req.Count
		if count < 1 {
			count = 3
		}
		if count > 10 {
			count = 10
		}
		now := h.now()
		deadline := req.DueDate
		for range count {
			next, err := Next(deadline, spec, now)
			if err != nil {
				break
			}
			resp.Next = append(resp.Next, next)
			deadline = next
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func previewErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
