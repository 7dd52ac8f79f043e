package task

import (
	"fmt"
	"time"

	"eisendo/internal/model"
	"eisendo/internal/recurrence"
)

// CompletionResult is what completing a task produced: the task itself,
// now done, and the successor spawned for it when it recurs.
type CompletionResult struct {
	Completed model.Task  `json:"completed"`
	Successor *model.Task `json:"successor,omitempty"`
}

// Complete marks a task done and, when it has a recurrence, creates the next
// occurrence: a fresh task carrying the same text, quadrant, tags, complexity
// and recurrence, due on the engine's next computed deadline.
//
// Completing an already-done task is a no-op and never spawns a duplicate.
func Complete(repo Repo, id model.TaskID, now time.Time) (CompletionResult, error) {
	cur, err := repo.Get(id)
	if err != nil {
		return CompletionResult{}, err
	}
	if cur.Done {
		return CompletionResult{Completed: cur}, nil
	}

	done := true
	completed, err := repo.Update(id, Patch{Done: &done})
	if err != nil {
		return CompletionResult{}, err
	}

	if cur.Recurrence.IsNone() {
		return CompletionResult{Completed: completed}, nil
	}

	deadline := ""
	if cur.DueDate != nil {
		deadline = *cur.DueDate
	}
	next, err := recurrence.Next(deadline, cur.Recurrence, now)
	if err != nil {
		return CompletionResult{}, fmt.Errorf("compute next occurrence for %s: %w", id, err)
	}

	successor, err := repo.Create(model.Task{
		Title:       cur.Title,
		Description: cur.Description,
		Quadrant:    cur.Quadrant,
		Tags:        append([]string(nil), cur.Tags...),
		Complexity:  cur.Complexity,
		Recurrence:  cur.Recurrence,
		DueDate:     &next,
	})
	if err != nil {
		return CompletionResult{}, fmt.Errorf("create successor for %s: %w", id, err)
	}

	return CompletionResult{Completed: completed, Successor: &successor}, nil
}
