package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chorecal/internal/assign"
	"github.com/dukerupert/chorecal/internal/completion"
	"github.com/dukerupert/chorecal/internal/config"
	"github.com/dukerupert/chorecal/internal/gamification"
	"github.com/dukerupert/chorecal/internal/handler"
	"github.com/dukerupert/chorecal/internal/metrics"
	"github.com/dukerupert/chorecal/internal/middleware"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/reminder"
	"github.com/dukerupert/chorecal/internal/store"
	ws "github.com/dukerupert/chorecal/internal/websocket"
)

type Server struct {
	hub           *ws.Hub
	origins       []string
	memberH       *handler.MemberHandler
	categoryH     *handler.CategoryHandler
	availabilityH *handler.AvailabilityHandler
	choreH        *handler.ChoreHandler
	completionH   *handler.CompletionHandler
	assignmentH   *handler.AssignmentHandler
	gamificationH *handler.GamificationHandler
	rateLimiter   *middleware.RateLimiter
	reminder      *reminder.Scheduler
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, scorer *gamification.Scorer, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	now := func() time.Time { return time.Now().In(loc) }

	hub := ws.NewHub(logger.With("component", "websocket"), m)

	choreStore := store.NewChoreStore(db)
	memberStore := store.NewMemberStore(db)
	availabilityStore := store.NewAvailabilityStore(db)
	core := store.Core{Chores: choreStore, Members: memberStore}

	tracker := completion.NewTracker(core, scorer, now)
	assigner := assign.NewAssigner(nil)
	window := handler.CalendarWindow{MonthsBefore: cfg.Calendar.MonthsBefore, MonthsAfter: cfg.Calendar.MonthsAfter}

	var sched *reminder.Scheduler
	if cfg.Reminder.Enabled {
		sched = reminder.NewScheduler(core, hubNotifier{hub: hub, metrics: m}, cfg.Reminder.Interval, loc, logger.With("component", "reminder"))
	}

	return &Server{
		hub:           hub,
		origins:       cfg.Server.AllowedOrigins,
		memberH:       handler.NewMemberHandler(memberStore, tracker, hub, logger.With("component", "member")),
		categoryH:     handler.NewCategoryHandler(choreStore, hub, logger.With("component", "category")),
		availabilityH: handler.NewAvailabilityHandler(availabilityStore, memberStore, logger.With("component", "availability")),
		choreH:        handler.NewChoreHandler(choreStore, memberStore, availabilityStore, assigner, hub, m, window, now, logger.With("component", "chore")),
		completionH:   handler.NewCompletionHandler(choreStore, memberStore, tracker, hub, m, logger.With("component", "completion")),
		assignmentH:   handler.NewAssignmentHandler(choreStore, memberStore, availabilityStore, assigner, hub, m, now, logger.With("component", "assignment")),
		gamificationH: handler.NewGamificationHandler(choreStore, memberStore, scorer, now, logger.With("component", "gamification")),
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		reminder:      sched,
		metrics:       m,
		logger:        logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Reminder returns the due-chore scheduler, or nil when reminders are off.
func (s *Server) Reminder() *reminder.Scheduler {
	return s.reminder
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.metrics.Handler())
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.origins))

	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)
	outerMux.Handle("/api/", middleware.RateLimit(s.rateLimiter, middleware.RealIP)(apiMux))

	instrumented := middleware.Metrics(s.metrics)(outerMux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(instrumented)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Team members
	mux.HandleFunc("GET /api/members", s.memberH.List)
	mux.HandleFunc("POST /api/members", s.memberH.Create)
	mux.HandleFunc("PUT /api/members/{id}", s.memberH.Update)
	mux.HandleFunc("DELETE /api/members/{id}", s.memberH.Delete)
	mux.HandleFunc("GET /api/members/{id}/stats", s.memberH.Stats)

	// PIN routes
	mux.HandleFunc("POST /api/members/{id}/pin", s.memberH.SetPIN)
	mux.HandleFunc("DELETE /api/members/{id}/pin", s.memberH.ClearPIN)
	mux.HandleFunc("POST /api/members/{id}/pin/verify", s.memberH.VerifyPIN)

	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)

	mux.HandleFunc("GET /api/availability", s.availabilityH.List)
	mux.HandleFunc("POST /api/availability", s.availabilityH.Create)
	mux.HandleFunc("DELETE /api/availability/{id}", s.availabilityH.Delete)

	// Chores
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores/upcoming", s.choreH.Upcoming)
	mux.HandleFunc("GET /api/chores/{id}", s.choreH.Get)
	mux.HandleFunc("PUT /api/chores/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("GET /api/instances", s.choreH.Instances)

	// Completions
	mux.HandleFunc("GET /api/completions", s.completionH.List)
	mux.HandleFunc("POST /api/chores/{id}/complete", s.completionH.Complete)
	mux.HandleFunc("DELETE /api/completions/{id}", s.completionH.Uncomplete)

	// Assignment
	mux.HandleFunc("GET /api/assignments/stats", s.assignmentH.Stats)
	mux.HandleFunc("GET /api/assignments/suggest", s.assignmentH.Suggest)
	mux.HandleFunc("POST /api/assignments/auto", s.assignmentH.Auto)
	mux.HandleFunc("GET /api/assignments/balance", s.assignmentH.Balance)
	mux.HandleFunc("POST /api/chores/{id}/next-assignee", s.assignmentH.NextAssignee)

	mux.HandleFunc("GET /api/badges", s.gamificationH.Badges)
	mux.HandleFunc("GET /api/dashboard", s.gamificationH.Dashboard)
}

// hubNotifier pushes due-chore reminders to connected clients.
type hubNotifier struct {
	hub     *ws.Hub
	metrics *metrics.Metrics
}

func (n hubNotifier) InstanceDue(inst model.ChoreInstance) {
	extra := map[string]any{
		"chore_id": inst.ChoreID,
		"title":    inst.Title,
		"date":     inst.Date.String(),
	}
	if inst.AssigneeID != nil {
		extra["assignee_id"] = *inst.AssigneeID
	}
	n.hub.Broadcast(ws.NewMessage(ws.EntityInstance, ws.ActionDue, inst.ID, extra))
	n.metrics.ReminderEmitted()
}
