package task

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"eisendo/internal/model"
	"eisendo/internal/recurrence"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrTitleRequired = errors.New("task title required")
)

// Patch represents a partial update.
// nil pointer => "no change"
// empty string for DueDate => clear (set to nil)
// Recurrence pointing at a zero spec => recurrence disabled
type Patch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Done        *bool            `json:"done,omitempty"`
	Quadrant    *model.Quadrant  `json:"quadrant,omitempty"`
	Tags        *[]string        `json:"tags,omitempty"`
	DueDate     *string          `json:"dueDate,omitempty"`
	Complexity  *int             `json:"complexity,omitempty"`
	Recurrence  *recurrence.Spec `json:"recurrence,omitempty"`
}

type ListFilter struct {
	// Status:
	//   "" | "all" | "pending" | "done" | "due_today" | "upcoming" | "overdue"
	Status string

	// Quadrant:
	//   "" | "any" | "<exact quadrant name>"
	Quadrant string

	// Recurring:
	//   nil = don't care, true/false = filter by "has a recurrence"
	Recurring *bool
}

type Repo interface {
	Create(t model.Task) (model.Task, error)
	Get(id model.TaskID) (model.Task, error)
	Update(id model.TaskID, patch Patch) (model.Task, error)
	Delete(id model.TaskID) error
	List(filter ListFilter) ([]model.Task, error)
}

func newID(prefix string) model.TaskID {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return model.TaskID(prefix + "_" + hex.EncodeToString(b[:]))
}

func normalizeTask(t *model.Task) {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.Quadrant = model.NormalizeQuadrant(t.Quadrant)
	if t.Complexity < 0 {
		t.Complexity = 0
	}
	if t.Complexity > 5 {
		t.Complexity = 5
	}
}

// applyPatch mutates t in place. The completion timestamp follows the Done
// flag: it is stamped on the false->true transition and cleared on undo.
func applyPatch(t *model.Task, p Patch, now time.Time) error {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return ErrTitleRequired
		}
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Done != nil && *p.Done != t.Done {
		t.Done = *p.Done
		if t.Done {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
	}
	if p.Quadrant != nil {
		t.Quadrant = model.NormalizeQuadrant(*p.Quadrant)
	}

	// pointer string field with "empty clears" semantics
	if p.DueDate != nil {
		if *p.DueDate == "" {
			t.DueDate = nil
		} else {
			t.DueDate = p.DueDate
		}
	}

	if p.Tags != nil {
		// treat nil slice as empty slice
		if *p.Tags == nil {
			t.Tags = []string{}
		} else {
			t.Tags = *p.Tags
		}
	}

	if p.Complexity != nil {
		t.Complexity = *p.Complexity
	}
	if p.Recurrence != nil {
		t.Recurrence = recurrence.Validate(*p.Recurrence)
	}

	return nil
}

func matchesFilter(t model.Task, filter ListFilter, today string) bool {
	if filter.Recurring != nil && !t.Recurrence.IsNone() != *filter.Recurring {
		return false
	}

	switch q := strings.TrimSpace(filter.Quadrant); strings.ToLower(q) {
	case "", "any":
	default:
		if t.Quadrant != model.Quadrant(q) {
			return false
		}
	}

	switch strings.ToLower(strings.TrimSpace(filter.Status)) {
	case "", "all":
		return true
	case "pending":
		return !t.Done
	case "done":
		return t.Done
	case "due_today":
		return !t.Done && t.DueDate != nil && *t.DueDate == today
	case "overdue":
		// YYYY-MM-DD compares lexicographically
		return !t.Done && t.DueDate != nil && *t.DueDate < today
	case "upcoming":
		return !t.Done && t.DueDate != nil && *t.DueDate > today
	default:
		return true
	}
}

// lessTasks orders due-soonest first (no due date last), then updated desc.
func lessTasks(a, b model.Task) bool {
	da, db := a.DueDate, b.DueDate
	switch {
	case da == nil && db == nil:
		return a.UpdatedAt.After(b.UpdatedAt)
	case da == nil:
		return false
	case db == nil:
		return true
	case *da != *db:
		return *da < *db
	default:
		return a.UpdatedAt.After(b.UpdatedAt)
	}
}
