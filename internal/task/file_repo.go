package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"eisendo/internal/model"
)

type fileState struct {
	Users map[string]userTaskState `json:"users"`
}

type userTaskState struct {
	Tasks map[model.TaskID]model.Task `json:"tasks"`
}

func newFileState() fileState {
	return fileState{Users: map[string]userTaskState{}}
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is a persistent task repository.
// It is user-scoped; call ForUser(userID) to get a scoped view.
type FileRepo struct {
	store  *fileStore
	userID string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "tasks.json"),
		s:    newFileState(),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileRepo{
		store:  st,
		userID: "default",
	}, nil
}

func (s *fileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = newFileState()
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]userTaskState{}
	}
	for uid, us := range loaded.Users {
		if us.Tasks == nil {
			us.Tasks = map[model.TaskID]model.Task{}
		}
		loaded.Users[uid] = us
	}
	s.s = loaded
	return nil
}

func (s *fileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (r *FileRepo) ForUser(userID string) *FileRepo {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "default"
	}
	return &FileRepo{
		store:  r.store,
		userID: userID,
	}
}

func (r *FileRepo) userStateLocked() userTaskState {
	us, ok := r.store.s.Users[r.userID]
	if !ok {
		us = userTaskState{Tasks: map[model.TaskID]model.Task{}}
		r.store.s.Users[r.userID] = us
		return us
	}
	if us.Tasks == nil {
		us.Tasks = map[model.TaskID]model.Task{}
		r.store.s.Users[r.userID] = us
	}
	return us
}

func (r *FileRepo) Create(t model.Task) (model.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if strings.TrimSpace(t.Title) == "" {
		return model.Task{}, ErrTitleRequired
	}

	us := r.userStateLocked()

	now := time.Now()
	t.ID = newID("task")
	t.CreatedAt = now
	t.UpdatedAt = now
	normalizeTask(&t)

	us.Tasks[t.ID] = t
	if err := r.store.saveLocked(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *FileRepo) Get(id model.TaskID) (model.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Tasks == nil {
		return model.Task{}, ErrNotFound
	}
	t, ok := us.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	normalizeTask(&t)
	return t, nil
}

func (r *FileRepo) Update(id model.TaskID, p Patch) (model.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	t, ok := us.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}

	now := time.Now()
	if err := applyPatch(&t, p, now); err != nil {
		return model.Task{}, err
	}
	t.UpdatedAt = now
	normalizeTask(&t)

	us.Tasks[id] = t
	if err := r.store.saveLocked(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *FileRepo) Delete(id model.TaskID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	if _, ok := us.Tasks[id]; !ok {
		return ErrNotFound
	}
	delete(us.Tasks, id)
	return r.store.saveLocked()
}

func (r *FileRepo) List(filter ListFilter) ([]model.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	us, ok := r.store.s.Users[r.userID]
	if !ok || us.Tasks == nil {
		return []model.Task{}, nil
	}

	today := time.Now().Format("2006-01-02")

	out := make([]model.Task, 0, len(us.Tasks))
	for _, t := range us.Tasks {
		normalizeTask(&t)
		if matchesFilter(t, filter, today) {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return lessTasks(out[i], out[j]) })
	return out, nil
}
