package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"eisendo/internal/model"
	"eisendo/internal/recurrence"
)

// Draft is the model's structured reading of a free-text task description.
// Recurrence arrives as raw JSON and goes through the same validation as any
// stored spec.
type Draft struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Quadrant    model.Quadrant  `json:"quadrant"`
	DueDate     string          `json:"dueDate,omitempty"`
	Complexity  int             `json:"complexity,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Recurrence  recurrence.Spec `json:"recurrence,omitzero"`
}

// Parser turns a free-text prompt into a task draft.
type Parser interface {
	Parse(ctx context.Context, prompt string) (Draft, error)
}

const draftPrompt = `You turn a short task description into JSON for an Eisenhower-matrix task manager.
Today is %s.

Respond with ONLY a JSON object, no markdown fences, with these fields:
  title       string, required, a concise task title
  description string, optional details
  quadrant    one of "urgent-important", "not-urgent-important", "urgent-not-important", "not-urgent-not-important"
  dueDate     optional, YYYY-MM-DD
  complexity  optional, 1 (trivial) to 5 (hard)
  tags        optional, array of short lowercase strings
  recurrence  optional; either "daily"/"weekly"/"monthly"/"yearly", or an object
              {"interval":N,"unit":"day"|"week"|"month"|"year","weekDays":[0-6],"monthDay":1-31}

Task description: %s`

// GeminiParser asks Gemini to structure the task.
type GeminiParser struct {
	client *genai.Client
	model  string
	// Now feeds today's date into the prompt so relative dates resolve.
	Now func() time.Time
}

func NewGeminiParser(ctx context.Context, apiKey, modelName string) (*GeminiParser, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("assist: API key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("assist: create client: %w", err)
	}
	return &GeminiParser{client: client, model: modelName, Now: time.Now}, nil
}

func (p *GeminiParser) Parse(ctx context.Context, prompt string) (Draft, error) {
	today := p.Now().Format(recurrence.DateLayout)
	contents := genai.Text(fmt.Sprintf(draftPrompt, today, prompt))

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return Draft{}, fmt.Errorf("assist: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Draft{}, fmt.Errorf("assist: empty response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return decodeDraft(text.String())
}

// decodeDraft tolerates markdown fences and stray prose around the JSON.
func decodeDraft(raw string) (Draft, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Draft{}, fmt.Errorf("assist: no JSON object in response")
	}

	var d Draft
	if err := json.Unmarshal([]byte(raw[start:end+1]), &d); err != nil {
		return Draft{}, fmt.Errorf("assist: decode draft: %w", err)
	}

	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return Draft{}, fmt.Errorf("assist: draft has no title")
	}
	d.Quadrant = model.NormalizeQuadrant(d.Quadrant)
	if d.Complexity < 0 {
		d.Complexity = 0
	}
	if d.Complexity > 5 {
		d.Complexity = 5
	}
	if d.DueDate != "" {
		if _, err := time.Parse(recurrence.DateLayout, d.DueDate); err != nil {
			d.DueDate = ""
		}
	}
	return d, nil
}
