package task

import (
	"sort"
	"strings"
	"sync"
	"time"

	"eisendo/internal/model"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	tasks map[model.TaskID]model.Task
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tasks: map[model.TaskID]model.Task{}}
}

func (r *MemoryRepo) Create(t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.Title) == "" {
		return model.Task{}, ErrTitleRequired
	}

	now := time.Now()
	t.ID = newID("task")
	t.CreatedAt = now
	t.UpdatedAt = now
	normalizeTask(&t)

	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	normalizeTask(&t)
	return t, nil
}

func (r *MemoryRepo) Update(id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}

	now := time.Now()
	if err := applyPatch(&t, p, now); err != nil {
		return model.Task{}, err
	}
	t.UpdatedAt = now
	normalizeTask(&t)

	r.tasks[id] = t
	return t, nil
}

func (r *MemoryRepo) Delete(id model.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepo) List(filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// "today" in server local time, matching the web client's expectations.
	today := time.Now().Format("2006-01-02")

	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		normalizeTask(&t)
		if matchesFilter(t, filter, today) {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return lessTasks(out[i], out[j]) })
	return out, nil
}
