package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"eisendo/internal/task"
)

//go:embed migrations.sql
var migrationsFS embed.FS

// ErrDisabled is returned by a nil store; callers treat history as best
// effort and log instead of failing the request.
var ErrDisabled = errors.New("history: store disabled")

// Entry is one recorded completion.
type Entry struct {
	ID         int64     `json:"id"`
	At         time.Time `json:"at"`
	User       string    `json:"user"`
	TaskID     string    `json:"taskId"`
	Title      string    `json:"title"`
	Quadrant   string    `json:"quadrant"`
	Complexity int       `json:"complexity"`
	Recurring  bool      `json:"recurring"`
	// Successor holds the spawned task's id for recurring completions.
	Successor string `json:"successor,omitempty"`
}

// Stats aggregates completions per quadrant over a window.
type Stats struct {
	Since       time.Time      `json:"since"`
	Total       int            `json:"total"`
	ByQuadrant  map[string]int `json:"byQuadrant"`
	Recurring   int            `json:"recurring"`
	ActiveUsers int            `json:"activeUsers"`
}

type Config struct {
	Path          string
	BusyTimeoutMS int
}

type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

func Open(cfg Config, log zerolog.Logger) (*Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("history: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeoutMS > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeoutMS))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	s := &Store{db: db, log: log}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordCompletion implements task.CompletionRecorder.
func (s *Store) RecordCompletion(ctx context.Context, user string, res task.CompletionResult) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	t := res.Completed
	successor := ""
	if res.Successor != nil {
		successor = string(res.Successor.ID)
	}
	at := time.Now()
	if t.CompletedAt != nil {
		at = *t.CompletedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completions(at, user, task_id, title, quadrant, complexity, recurring, successor)
		 VALUES(?,?,?,?,?,?,?,?)`,
		at.UTC().Format(time.RFC3339Nano), user, string(t.ID), t.Title, string(t.Quadrant),
		t.Complexity, !t.Recurrence.IsNone(), nullStr(successor),
	)
	return err
}

// Recent returns the user's latest completions, newest first.
func (s *Store) Recent(ctx context.Context, user string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, user, task_id, title, quadrant, complexity, recurring, successor
		 FROM completions WHERE user = ? ORDER BY at DESC, id DESC LIMIT ?`,
		user, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			at        string
			recurring int
			successor sql.NullString
		)
		if err := rows.Scan(&e.ID, &at, &e.User, &e.TaskID, &e.Title, &e.Quadrant, &e.Complexity, &recurring, &successor); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		e.Recurring = recurring != 0
		e.Successor = successor.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// StatsSince aggregates the user's completions at or after the cutoff.
func (s *Store) StatsSince(ctx context.Context, user string, since time.Time) (Stats, error) {
	st := Stats{Since: since, ByQuadrant: map[string]int{}}
	if s == nil || s.db == nil {
		return st, ErrDisabled
	}
	cutoff := since.UTC().Format(time.RFC3339Nano)

	rows, err := s.db.QueryContext(ctx,
		`SELECT quadrant, COUNT(*), SUM(recurring) FROM completions
		 WHERE user = ? AND at >= ? GROUP BY quadrant`,
		user, cutoff,
	)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q         string
			n         int
			recurring sql.NullInt64
		)
		if err := rows.Scan(&q, &n, &recurring); err != nil {
			return st, err
		}
		st.ByQuadrant[q] = n
		st.Total += n
		st.Recurring += int(recurring.Int64)
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user) FROM completions WHERE at >= ?`, cutoff,
	).Scan(&st.ActiveUsers)
	return st, err
}

func nullStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
