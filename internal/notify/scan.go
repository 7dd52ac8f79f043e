package notify

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"eisendo/internal/model"
	"eisendo/internal/recurrence"
	"eisendo/internal/task"
)

// Reminder is one due-soon notice for a user.
type Reminder struct {
	User    string     `json:"user"`
	TaskID  string     `json:"taskId"`
	Title   string     `json:"title"`
	DueDate string     `json:"dueDate"`
	DaysOut int        `json:"daysOut"`
	Urgent  bool       `json:"urgent"`
	SentAt  time.Time  `json:"sentAt"`
	Task    model.Task `json:"-"`
}

// Sender delivers reminders. The default sender just logs; a Web Push
// sender would use the stored subscriptions.
type Sender interface {
	Send(ctx context.Context, subs []Subscription, r Reminder) error
}

// LogSender writes reminders to the log. It stands in until push delivery
// credentials are configured.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, subs []Subscription, r Reminder) error {
	s.Log.Info().
		Str("user", r.User).
		Str("task", r.TaskID).
		Str("title", r.Title).
		Str("due", r.DueDate).
		Int("days_out", r.DaysOut).
		Int("subscriptions", len(subs)).
		Msg("task due reminder")
	return nil
}

// RepoResolver returns the task repo scoped to a user.
type RepoResolver func(userID string) task.Repo

// Scanner runs the daily due-date sweep.
type Scanner struct {
	settings *FileRepo
	tasks    RepoResolver
	sender   Sender
	log      zerolog.Logger

	// Now is the scan clock; tests pin it.
	Now func() time.Time
}

func NewScanner(settings *FileRepo, tasks RepoResolver, sender Sender, log zerolog.Logger) *Scanner {
	return &Scanner{
		settings: settings,
		tasks:    tasks,
		sender:   sender,
		log:      log,
		Now:      time.Now,
	}
}

// Start schedules the sweep on the given cron expression and returns a stop
// function.
func (s *Scanner) Start(spec string) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n := s.Scan(ctx)
		s.log.Info().Int("reminders", n).Msg("reminder scan finished")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

// Scan sweeps every known user's pending tasks and sends a reminder for each
// task due within the user's window. Returns the number of reminders sent.
func (s *Scanner) Scan(ctx context.Context) int {
	users := s.settings.Users()
	if len(users) == 0 {
		users = []string{"default"}
	}

	now := s.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sent := 0

	for _, uid := range users {
		userRepo := s.settings.ForUser(uid)
		settings, err := userRepo.Settings()
		if err != nil || !settings.Enabled {
			continue
		}
		subs, _ := userRepo.Subscriptions()

		repo := s.tasks(uid)
		if repo == nil {
			continue
		}
		ts, err := repo.List(task.ListFilter{Status: "pending"})
		if err != nil {
			s.log.Warn().Err(err).Str("user", uid).Msg("reminder scan could not list tasks")
			continue
		}

		for _, t := range ts {
			if t.DueDate == nil || *t.DueDate == "" {
				continue
			}
			due, err := time.ParseInLocation(recurrence.DateLayout, *t.DueDate, now.Location())
			if err != nil {
				continue
			}
			// Overdue tasks (negative daysOut) always remind; the window
			// only bounds how early a reminder may fire.
			daysOut := int(due.Sub(today).Hours() / 24)
			if daysOut > settings.DaysBefore {
				continue
			}
			r := Reminder{
				User:    uid,
				TaskID:  string(t.ID),
				Title:   t.Title,
				DueDate: *t.DueDate,
				DaysOut: daysOut,
				Urgent:  t.Quadrant == model.QuadrantDo || t.Quadrant == model.QuadrantDelegate,
				SentAt:  now,
				Task:    t,
			}
			if err := s.sender.Send(ctx, subs, r); err != nil {
				s.log.Warn().Err(err).Str("user", uid).Str("task", r.TaskID).Msg("reminder not delivered")
				continue
			}
			sent++
		}
	}
	return sent
}
