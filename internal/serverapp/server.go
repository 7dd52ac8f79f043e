package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eisendo/internal/assist"
	"eisendo/internal/config"
	"eisendo/internal/history"
	"eisendo/internal/httpmw"
	"eisendo/internal/notify"
	"eisendo/internal/recurrence"
	"eisendo/internal/server"
	"eisendo/internal/task"
	staticfiles "eisendo/static"
)

type Options struct {
	Config *config.Config
	Log    zerolog.Logger
}

// NewHandler wires the whole application. The returned closer stops the
// reminder cron and closes the history database.
func NewHandler(opts Options) (http.Handler, func(), error) {
	if opts.Config == nil {
		return nil, nil, errors.New("config is required")
	}
	cfg := opts.Config
	log := opts.Log

	dataDir := cfg.Server.DataDir
	if strings.TrimSpace(dataDir) == "" {
		dataDir = "data"
	}

	mux := http.NewServeMux()
	rr := &server.RouteRegistry{}
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (http.Handler, func(), error) {
		closeAll()
		return nil, nil, err
	}

	// Identity: tasks are scoped by the X-User header. Anything fronting
	// this server (a reverse proxy, basic auth) supplies it; absent a
	// header everything lands in the "default" scope.
	userFromRequest := func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get("X-User"))
	}

	// Static assets and the matrix shell.
	var staticHandler http.Handler
	if cfg.Server.DevStatic {
		staticHandler = http.FileServer(http.Dir(cfg.Server.StaticDir))
	} else {
		staticHandler = http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Server.DevStatic {
			http.ServeFile(w, r, filepath.Join(cfg.Server.StaticDir, "index.html"))
			return
		}
		http.ServeFileFS(w, r, staticfiles.EmbeddedFS(), "index.html")
	})

	// Tasks.
	taskFileRepo, err := task.NewFileRepo(filepath.Join(dataDir, "tasks"))
	if err != nil {
		return fail(err)
	}
	taskHandler := task.NewHandler(taskFileRepo, log)
	taskHandler.SetRepoResolver(func(r *http.Request) task.Repo {
		if u := userFromRequest(r); u != "" {
			return taskFileRepo.ForUser(u)
		}
		return taskFileRepo
	})
	taskHandler.SetUserResolver(userFromRequest)

	// Completion history.
	var historyStore *history.Store
	if cfg.History.Enabled {
		historyStore, err = history.Open(history.Config{
			Path:          cfg.History.Path,
			BusyTimeoutMS: cfg.History.BusyTimeoutMS,
		}, log)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = historyStore.Close() })
		taskHandler.SetCompletionRecorder(historyStore)

		historyHandler := history.NewHandler(historyStore)
		historyHandler.SetUserResolver(userFromRequest)
		server.Handle(mux, rr, "GET /api/history", "Recent completions, newest first", "", historyHandler.Recent)
		server.Handle(mux, rr, "GET /api/history/stats", "Completion counts per quadrant", "", historyHandler.Stats)
	}

	server.Handle(mux, rr, "GET /api/tasks", "List tasks; filters: status, quadrant, recurring", "", taskHandler.TasksRoot)
	server.Handle(mux, rr, "POST /api/tasks", "Create a task",
		`{"title":"Water plants","quadrant":"not-urgent-important","dueDate":"2026-09-07","recurrence":"weekly"}`,
		taskHandler.TasksRoot)
	server.Handle(mux, rr, "GET /api/tasks/{id...}", "Get, patch, delete, complete, or export a task", "", taskHandler.TasksSub)
	mux.HandleFunc("PATCH /api/tasks/{id...}", taskHandler.TasksSub)
	mux.HandleFunc("DELETE /api/tasks/{id...}", taskHandler.TasksSub)
	mux.HandleFunc("POST /api/tasks/{id...}", taskHandler.TasksSub)
	server.Handle(mux, rr, "GET /api/matrix", "Pending tasks grouped by quadrant", "", taskHandler.Matrix)

	// Recurrence preview for the edit form.
	previewHandler := &recurrence.PreviewHandler{}
	server.Handle(mux, rr, "POST /api/recurrence/preview", "Normalize a recurrence and preview upcoming dates",
		`{"form":{"enabled":true,"preset":"custom","interval":2,"unit":"week","weekDays":[1,3]},"dueDate":"2026-09-01"}`,
		previewHandler.Preview)

	// Reminders.
	notifyRepo, err := notify.NewFileRepo(filepath.Join(dataDir, "notify"))
	if err != nil {
		return fail(err)
	}
	notifyRepo.SetDefaultDaysBefore(cfg.Notifications.DaysBefore)
	notifyHandler := notify.NewHandler(notifyRepo)
	notifyHandler.SetUserResolver(userFromRequest)
	server.Handle(mux, rr, "GET /api/notifications/settings", "Reminder preferences", "", notifyHandler.SettingsRoot)
	mux.HandleFunc("PUT /api/notifications/settings", notifyHandler.SettingsRoot)
	server.Handle(mux, rr, "GET /api/notifications/subscriptions", "Web Push registrations", "", notifyHandler.Subscriptions)
	mux.HandleFunc("POST /api/notifications/subscriptions", notifyHandler.Subscriptions)
	mux.HandleFunc("DELETE /api/notifications/subscriptions/{id}", notifyHandler.Subscriptions)

	if cfg.Notifications.Enabled {
		scanner := notify.NewScanner(
			notifyRepo,
			func(userID string) task.Repo { return taskFileRepo.ForUser(userID) },
			notify.LogSender{Log: log},
			log,
		)
		stop, err := scanner.Start(cfg.Notifications.Cron)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, stop)
	}

	// Assist. Without an API key the endpoint stays up and answers 503.
	var parser assist.Parser
	if cfg.Assist.Enabled {
		if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
			p, err := assist.NewGeminiParser(context.Background(), key, cfg.Assist.Model)
			if err != nil {
				log.Warn().Err(err).Msg("assist parser not available")
			} else {
				parser = p
			}
		} else {
			log.Info().Msg("GEMINI_API_KEY not set, assist disabled")
		}
	}
	assistHandler := assist.NewHandler(parser, cfg.Assist.MaxPerMinute, log)
	server.Handle(mux, rr, "POST /api/assist/parse", "Turn free text into a task draft",
		`{"prompt":"water the plants every tuesday and friday"}`,
		assistHandler.Parse)

	mux.HandleFunc("GET /api/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "eisendo",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := taskFileRepo.List(task.ListFilter{Status: "all"}); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "eisendo",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	server.RegisterAdminUI(mux, rr, strconv.Itoa(cfg.Server.Port))

	// Request ID first so the access log can report it.
	handler := httpmw.Chain(
		mux,
		httpmw.WithRequestID,
		httpmw.WithAccessLog(log),
		httpmw.WithRecover(log),
	)
	return handler, closeAll, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
