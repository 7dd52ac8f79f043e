package assist

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eisendo/internal/model"
	"eisendo/internal/recurrence"
)

func TestDecodeDraftPlainJSON(t *testing.T) {
	d, err := decodeDraft(`{"title":"Water plants","quadrant":"not-urgent-important","dueDate":"2024-06-20","recurrence":"weekly"}`)
	require.NoError(t, err)
	assert.Equal(t, "Water plants", d.Title)
	assert.Equal(t, model.QuadrantSchedule, d.Quadrant)
	assert.Equal(t, "2024-06-20", d.DueDate)
	assert.Equal(t, recurrence.Legacy(recurrence.PatternWeekly), d.Recurrence)
}

func TestDecodeDraftStripsFences(t *testing.T) {
	raw := "Sure, here is the task:\n```json\n{\"title\":\"File taxes\",\"quadrant\":\"urgent-important\",\"complexity\":4}\n```"
	d, err := decodeDraft(raw)
	require.NoError(t, err)
	assert.Equal(t, "File taxes", d.Title)
	assert.Equal(t, 4, d.Complexity)
}

func TestDecodeDraftFlexibleRecurrence(t *testing.T) {
	d, err := decodeDraft(`{"title":"Gym","quadrant":"not-urgent-important","recurrence":{"interval":1,"unit":"week","weekDays":[1,3,5]}}`)
	require.NoError(t, err)
	assert.Equal(t, recurrence.KindFlexible, d.Recurrence.Kind)
	assert.Equal(t, []int{1, 3, 5}, d.Recurrence.WeekDays)
}

func TestDecodeDraftNormalizes(t *testing.T) {
	d, err := decodeDraft(`{"title":"  Trim me  ","quadrant":"nonsense","complexity":9,"dueDate":"tomorrow"}`)
	require.NoError(t, err)
	assert.Equal(t, "Trim me", d.Title)
	assert.Equal(t, model.QuadrantDrop, d.Quadrant)
	assert.Equal(t, 5, d.Complexity)
	assert.Empty(t, d.DueDate)
}

func TestDecodeDraftRejectsGarbage(t *testing.T) {
	_, err := decodeDraft("no json here")
	assert.Error(t, err)

	_, err = decodeDraft(`{"title":"   "}`)
	assert.Error(t, err)
}

type fakeParser struct {
	draft Draft
	err   error
}

func (f fakeParser) Parse(context.Context, string) (Draft, error) {
	return f.draft, f.err
}

func TestParseEndpoint(t *testing.T) {
	h := NewHandler(fakeParser{draft: Draft{Title: "Call dentist", Quadrant: model.QuadrantDo}}, 10, zerolog.Nop())

	rr := httptest.NewRecorder()
	h.Parse(rr, httptest.NewRequest("POST", "/api/assist/parse", strings.NewReader(`{"prompt":"call dentist today"}`)))
	require.Equal(t, 200, rr.Code)
	assert.Contains(t, rr.Body.String(), "Call dentist")
}

func TestParseEndpointWithoutParser(t *testing.T) {
	h := NewHandler(nil, 10, zerolog.Nop())

	rr := httptest.NewRecorder()
	h.Parse(rr, httptest.NewRequest("POST", "/api/assist/parse", strings.NewReader(`{"prompt":"x"}`)))
	assert.Equal(t, 503, rr.Code)
}

func TestParseEndpointRequiresPrompt(t *testing.T) {
	h := NewHandler(fakeParser{}, 10, zerolog.Nop())

	rr := httptest.NewRecorder()
	h.Parse(rr, httptest.NewRequest("POST", "/api/assist/parse", strings.NewReader(`{"prompt":"  "}`)))
	assert.Equal(t, 400, rr.Code)
}

func TestParseEndpointUpstreamFailure(t *testing.T) {
	h := NewHandler(fakeParser{err: fmt.Errorf("quota")}, 10, zerolog.Nop())

	rr := httptest.NewRecorder()
	h.Parse(rr, httptest.NewRequest("POST", "/api/assist/parse", strings.NewReader(`{"prompt":"x"}`)))
	assert.Equal(t, 502, rr.Code)
}

func TestParseEndpointRateLimit(t *testing.T) {
	h := NewHandler(fakeParser{draft: Draft{Title: "T", Quadrant: model.QuadrantDo}}, 1, zerolog.Nop())

	rr := httptest.NewRecorder()
	h.Parse(rr, httptest.NewRequest("POST", "/api/assist/parse", strings.NewReader(`{"prompt":"x"}`)))
	require.Equal(t, 200, rr.Code)

	rr = httptest.NewRecorder()
	h.Parse(rr, httptest.NewRequest("POST", "/api/assist/parse", strings.NewReader(`{"prompt":"x"}`)))
	assert.Equal(t, 429, rr.Code)
}
