package notify

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrSubscriptionNotFound = errors.New("notify: subscription not found")

type fileState struct {
	Users map[string]userState `json:"users"`
}

type userState struct {
	Settings      Settings       `json:"settings"`
	Subscriptions []Subscription `json:"subscriptions"`
}

type store struct {
	mu       sync.RWMutex
	path     string
	s        fileState
	defaults Settings
}

// FileRepo persists per-user reminder settings and push subscriptions in a
// single JSON file under the data dir.
type FileRepo struct {
	store  *store
	userID string
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &store{
		path:     filepath.Join(dataDir, "notify.json"),
		s:        fileState{Users: map[string]userState{}},
		defaults: defaultSettings(),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileRepo{store: st, userID: "default"}, nil
}

func (s *store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = fileState{Users: map[string]userState{}}
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]userState{}
	}
	for uid, us := range loaded.Users {
		us.Settings = normalizeSettings(us.Settings)
		loaded.Users[uid] = us
	}
	s.s = loaded
	return nil
}

func (s *store) saveLocked() error {
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
	return &FileRepo{store: r.store, userID: userID}
}

// SetDefaultDaysBefore sets the server-wide reminder window applied to users
// who have never stored their own settings.
func (r *FileRepo) SetDefaultDaysBefore(days int) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.defaults.DaysBefore = days
	r.store.defaults = normalizeSettings(r.store.defaults)
}

func (r *FileRepo) userStateLocked() userState {
	us, ok := r.store.s.Users[r.userID]
	if !ok {
		us = userState{Settings: r.store.defaults}
		r.store.s.Users[r.userID] = us
		return us
	}
	us.Settings = normalizeSettings(us.Settings)
	r.store.s.Users[r.userID] = us
	return us
}

func (r *FileRepo) Settings() (Settings, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.userStateLocked().Settings, nil
}

func (r *FileRepo) UpdateSettings(s Settings) (Settings, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	us.Settings = normalizeSettings(s)
	r.store.s.Users[r.userID] = us
	if err := r.store.saveLocked(); err != nil {
		return Settings{}, err
	}
	return us.Settings, nil
}

func (r *FileRepo) Subscriptions() ([]Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	out := make([]Subscription, len(us.Subscriptions))
	copy(out, us.Subscriptions)
	return out, nil
}

// Subscribe registers an endpoint; re-subscribing the same endpoint replaces
// its keys instead of duplicating it.
func (r *FileRepo) Subscribe(sub Subscription) (Subscription, error) {
	endpoint := strings.TrimSpace(sub.Endpoint)
	if endpoint == "" {
		return Subscription{}, errors.New("notify: endpoint is required")
	}
	sub.Endpoint = endpoint

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	replaced := false
	for i, existing := range us.Subscriptions {
		if existing.Endpoint == endpoint {
			sub.ID = existing.ID
			us.Subscriptions[i] = sub
			replaced = true
			break
		}
	}
	if !replaced {
		sub.ID = uuid.NewString()
		us.Subscriptions = append(us.Subscriptions, sub)
	}
	r.store.s.Users[r.userID] = us
	if err := r.store.saveLocked(); err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

func (r *FileRepo) Unsubscribe(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	for i, existing := range us.Subscriptions {
		if existing.ID == id {
			us.Subscriptions = append(us.Subscriptions[:i], us.Subscriptions[i+1:]...)
			r.store.s.Users[r.userID] = us
			return r.store.saveLocked()
		}
	}
	return ErrSubscriptionNotFound
}

// Users lists every user id with stored state; the reminder scan walks this.
func (r *FileRepo) Users() []string {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]string, 0, len(r.store.s.Users))
	for uid := range r.store.s.Users {
		out = append(out, uid)
	}
	return out
}
