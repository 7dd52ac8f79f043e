package recurrence

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func previewRequest(t *testing.T, body string) PreviewResponse {
	t.Helper()
	h := &PreviewHandler{Now: func() time.Time { return testNow }}

	rr := httptest.NewRecorder()
	h.Preview(rr, httptest.NewRequest("POST", "/api/recurrence/preview", strings.NewReader(body)))
	require.Equal(t, 200, rr.Code)

	var resp PreviewResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestPreviewFromForm(t *testing.T) {
	resp := previewRequest(t, `{
		"form": {"enabled": true, "preset": "custom", "interval": 2, "unit": "week", "weekDays": [1,3]},
		"dueDate": "2024-01-01",
		"count": 3
	}`)

	assert.Equal(t, KindFlexible, resp.Spec.Kind)
	assert.Equal(t, "Every 2 weeks on Monday, Wednesday", resp.Description)
	assert.Equal(t, []string{"2024-01-15", "2024-01-29", "2024-02-12"}, resp.Next)
}

func TestPreviewFromRawSpec(t *testing.T) {
	resp := previewRequest(t, `{"recurrence": "daily", "dueDate": "2024-01-01", "count": 2}`)

	assert.Equal(t, Legacy(PatternDaily), resp.Spec)
	assert.Equal(t, "Daily", resp.Description)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, resp.Next)
}

func TestPreviewFormWinsOverRaw(t *testing.T) {
	resp := previewRequest(t, `{
		"form": {"enabled": true, "preset": "daily"},
		"recurrence": "yearly",
		"dueDate": "2024-01-01",
		"count": 1
	}`)
	assert.Equal(t, Legacy(PatternDaily), resp.Spec)
}

func TestPreviewMalformedSpecIsNone(t *testing.T) {
	resp := previewRequest(t, `{"recurrence": {"interval": "nope"}, "dueDate": "2024-01-01"}`)

	assert.True(t, resp.Spec.IsNone())
	assert.Empty(t, resp.Next)
	assert.Empty(t, resp.Description)
}

func TestPreviewCountClamped(t *testing.T) {
	resp := previewRequest(t, `{"recurrence": "daily", "dueDate": "2024-01-01", "count": 99}`)
	assert.Len(t, resp.Next, 10)
}

func TestPreviewRejectsBadMethod(t *testing.T) {
	h := &PreviewHandler{}

	rr := httptest.NewRecorder()
	h.Preview(rr, httptest.NewRequest("GET", "/api/recurrence/preview", nil))
	assert.Equal(t, 405, rr.Code)
}
