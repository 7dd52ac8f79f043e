package model

import (
	"time"

	"eisendo/internal/recurrence"
)

type TaskID string

// Quadrant is the Eisenhower-matrix cell a task is filed under.
type Quadrant string

const (
	QuadrantDo       Quadrant = "urgent-important"
	QuadrantSchedule Quadrant = "not-urgent-important"
	QuadrantDelegate Quadrant = "urgent-not-important"
	QuadrantDrop     Quadrant = "not-urgent-not-important"
)

func Quadrants() []Quadrant {
	return []Quadrant{QuadrantDo, QuadrantSchedule, QuadrantDelegate, QuadrantDrop}
}

func ValidQuadrant(q Quadrant) bool {
	switch q {
	case QuadrantDo, QuadrantSchedule, QuadrantDelegate, QuadrantDrop:
		return true
	}
	return false
}

// NormalizeQuadrant maps unknown values to the lowest-priority cell.
func NormalizeQuadrant(q Quadrant) Quadrant {
	if ValidQuadrant(q) {
		return q
	}
	return QuadrantDrop
}

type Task struct {
	ID          TaskID   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Quadrant    Quadrant `json:"quadrant"`
	Done        bool     `json:"done"`
	Tags        []string `json:"tags,omitempty"`

	// DueDate is a calendar date (YYYY-MM-DD), nil when the task has none.
	DueDate *string `json:"dueDate,omitempty"`

	// Complexity is a 1..5 effort estimate; 0 means unset.
	Complexity int `json:"complexity,omitempty"`

	Recurrence recurrence.Spec `json:"recurrence,omitzero"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskUpsert is the create-request payload.
type TaskUpsert struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Quadrant    Quadrant        `json:"quadrant"`
	Tags        []string        `json:"tags,omitempty"`
	DueDate     *string         `json:"dueDate,omitempty"`
	Complexity  int             `json:"complexity,omitempty"`
	Recurrence  recurrence.Spec `json:"recurrence,omitzero"`
}
