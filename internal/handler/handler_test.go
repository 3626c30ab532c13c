package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/chorecal/internal/assign"
	"github.com/dukerupert/chorecal/internal/chore"
	"github.com/dukerupert/chorecal/internal/completion"
	"github.com/dukerupert/chorecal/internal/dashboard"
	"github.com/dukerupert/chorecal/internal/database"
	"github.com/dukerupert/chorecal/internal/gamification"
	"github.com/dukerupert/chorecal/internal/metrics"
	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/store"
)

// Wednesday
var testNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	mux     *http.ServeMux
	chores  *store.ChoreStore
	members *store.MemberStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cs := store.NewChoreStore(db)
	ms := store.NewMemberStore(db)
	as := store.NewAvailabilityStore(db)
	now := func() time.Time { return testNow }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	scorer := gamification.Default()
	tracker := completion.NewTracker(store.Core{Chores: cs, Members: ms}, scorer, now)
	assigner := assign.NewAssigner(rand.New(rand.NewPCG(1, 2)))

	members := NewMemberHandler(ms, tracker, nil, logger)
	categories := NewCategoryHandler(cs, nil, logger)
	availability := NewAvailabilityHandler(as, ms, logger)
	chores := NewChoreHandler(cs, ms, as, assigner, nil, m, CalendarWindow{MonthsBefore: 1, MonthsAfter: 1}, now, logger)
	completions := NewCompletionHandler(cs, ms, tracker, nil, m, logger)
	assignments := NewAssignmentHandler(cs, ms, as, assigner, nil, m, now, logger)
	game := NewGamificationHandler(cs, ms, scorer, now, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/members", members.List)
	mux.HandleFunc("POST /api/members", members.Create)
	mux.HandleFunc("PUT /api/members/{id}", members.Update)
	mux.HandleFunc("DELETE /api/members/{id}", members.Delete)
	mux.HandleFunc("GET /api/members/{id}/stats", members.Stats)
	mux.HandleFunc("POST /api/members/{id}/pin", members.SetPIN)
	mux.HandleFunc("DELETE /api/members/{id}/pin", members.ClearPIN)
	mux.HandleFunc("POST /api/members/{id}/pin/verify", members.VerifyPIN)
	mux.HandleFunc("GET /api/categories", categories.List)
	mux.HandleFunc("POST /api/categories", categories.Create)
	mux.HandleFunc("DELETE /api/categories/{id}", categories.Delete)
	mux.HandleFunc("GET /api/availability", availability.List)
	mux.HandleFunc("POST /api/availability", availability.Create)
	mux.HandleFunc("DELETE /api/availability/{id}", availability.Delete)
	mux.HandleFunc("GET /api/chores", chores.List)
	mux.HandleFunc("POST /api/chores", chores.Create)
	mux.HandleFunc("GET /api/chores/upcoming", chores.Upcoming)
	mux.HandleFunc("GET /api/instances", chores.Instances)
	mux.HandleFunc("GET /api/chores/{id}", chores.Get)
	mux.HandleFunc("PUT /api/chores/{id}", chores.Update)
	mux.HandleFunc("DELETE /api/chores/{id}", chores.Delete)
	mux.HandleFunc("POST /api/chores/{id}/complete", completions.Complete)
	mux.HandleFunc("POST /api/chores/{id}/next-assignee", assignments.NextAssignee)
	mux.HandleFunc("GET /api/completions", completions.List)
	mux.HandleFunc("DELETE /api/completions/{id}", completions.Uncomplete)
	mux.HandleFunc("GET /api/assignments/stats", assignments.Stats)
	mux.HandleFunc("GET /api/assignments/suggest", assignments.Suggest)
	mux.HandleFunc("GET /api/assignments/balance", assignments.Balance)
	mux.HandleFunc("POST /api/assignments/auto", assignments.Auto)
	mux.HandleFunc("GET /api/badges", game.Badges)
	mux.HandleFunc("GET /api/dashboard", game.Dashboard)

	return &testEnv{mux: mux, chores: cs, members: ms}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func (e *testEnv) createMember(t *testing.T, name string) model.TeamMember {
	t.Helper()
	rec := e.do(t, "POST", "/api/members", map[string]any{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create member %s: status %d body %s", name, rec.Code, rec.Body)
	}
	return decodeBody[model.TeamMember](t, rec)
}

func (e *testEnv) createChore(t *testing.T, body map[string]any) model.Chore {
	t.Helper()
	rec := e.do(t, "POST", "/api/chores", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chore: status %d body %s", rec.Code, rec.Body)
	}
	return decodeBody[model.Chore](t, rec)
}

func TestMemberCreate(t *testing.T) {
	env := setupTestEnv(t)

	ana := env.createMember(t, "Ana")
	if ana.ID == "" {
		t.Error("expected an ID")
	}
	if ana.Color == "" {
		t.Error("expected a default color")
	}

	rec := env.do(t, "POST", "/api/members", map[string]any{"name": "Ana"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate name: status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = env.do(t, "POST", "/api/members", map[string]any{"name": "Ben", "color": "blue"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad color: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = env.do(t, "GET", "/api/members", nil)
	list := decodeBody[[]model.TeamMember](t, rec)
	if len(list) != 1 {
		t.Errorf("members = %d, want 1", len(list))
	}
}

func TestMemberPIN(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")

	tests := []struct {
		name   string
		method string
		path   string
		pin    string
		status int
	}{
		{"too short", "POST", "/pin", "123", http.StatusBadRequest},
		{"not digits", "POST", "/pin", "12a4", http.StatusBadRequest},
		{"set", "POST", "/pin", "1234", http.StatusOK},
		{"verify wrong", "POST", "/pin/verify", "9999", http.StatusUnauthorized},
		{"verify right", "POST", "/pin/verify", "1234", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, "/api/members/"+ana.ID+tt.path, map[string]string{"pin": tt.pin})
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
		})
	}

	rec := env.do(t, "DELETE", "/api/members/"+ana.ID+"/pin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear pin: status = %d", rec.Code)
	}
	rec = env.do(t, "POST", "/api/members/"+ana.ID+"/pin/verify", map[string]string{"pin": "1234"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("verify after clear: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestChoreCreateValidation(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"date": "2024-03-13"}},
		{"blank title", map[string]any{"title": "  ", "date": "2024-03-13"}},
		{"bad date", map[string]any{"title": "Dishes", "date": "03/13/2024"}},
		{"bad recurrence", map[string]any{"title": "Dishes", "date": "2024-03-13", "recurrence": "yearly"}},
		{"bad priority", map[string]any{"title": "Dishes", "date": "2024-03-13", "priority": "urgent"}},
		{"bad time", map[string]any{"title": "Dishes", "date": "2024-03-13", "start_time": "9am"}},
		{"end before start", map[string]any{"title": "Dishes", "date": "2024-03-13", "start_time": "10:00", "end_time": "09:00"}},
		{"unknown assignee", map[string]any{"title": "Dishes", "date": "2024-03-13", "assignee_id": "nobody"}},
		{"unknown category", map[string]any{"title": "Dishes", "date": "2024-03-13", "category_id": "nothing"}},
		{"bad rotation", map[string]any{"title": "Dishes", "date": "2024-03-13", "auto_assign": map[string]any{"enabled": true, "rotation_type": "lottery"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "POST", "/api/chores", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, http.StatusBadRequest, rec.Body)
			}
		})
	}
}

func TestChoreCRUD(t *testing.T) {
	env := setupTestEnv(t)

	c := env.createChore(t, map[string]any{"title": "Dishes", "date": "2024-03-13", "recurrence": "daily"})
	if c.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium", c.Priority)
	}

	rec := env.do(t, "PUT", "/api/chores/"+c.ID, map[string]any{"title": "Dishes and pans", "date": "2024-03-13", "recurrence": "daily", "priority": "high"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d body %s", rec.Code, rec.Body)
	}
	updated := decodeBody[model.Chore](t, rec)
	if updated.Title != "Dishes and pans" || updated.Priority != model.PriorityHigh {
		t.Errorf("updated = %+v", updated)
	}

	rec = env.do(t, "GET", "/api/chores/"+c.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: status = %d", rec.Code)
	}

	rec = env.do(t, "DELETE", "/api/chores/"+c.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", rec.Code)
	}
	rec = env.do(t, "GET", "/api/chores/"+c.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestChoreAutoAssignOnCreate(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")
	ben := env.createMember(t, "Ben")

	c := env.createChore(t, map[string]any{
		"title":       "Trash",
		"date":        "2024-03-13",
		"auto_assign": map[string]any{"enabled": true, "rotation_type": "round-robin"},
	})
	if c.AssigneeID == nil {
		t.Fatal("expected an assignee")
	}
	if *c.AssigneeID != ana.ID && *c.AssigneeID != ben.ID {
		t.Errorf("assignee = %s, want one of the members", *c.AssigneeID)
	}

	off := env.createChore(t, map[string]any{
		"title":       "Mop",
		"date":        "2024-03-13",
		"auto_assign": map[string]any{"enabled": false},
	})
	if off.AssigneeID != nil {
		t.Errorf("disabled auto-assign picked %s", *off.AssigneeID)
	}
}

func TestChoreInstances(t *testing.T) {
	env := setupTestEnv(t)
	env.createChore(t, map[string]any{"title": "Laundry", "date": "2024-03-06", "recurrence": "weekly"})

	rec := env.do(t, "GET", "/api/instances?start=2024-03-01&end=2024-03-31", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body)
	}
	instances := decodeBody[[]chore.InstanceWithStatus](t, rec)

	want := []struct {
		date   string
		status chore.Status
	}{
		{"2024-03-06", chore.StatusOverdue},
		{"2024-03-13", chore.StatusPending},
		{"2024-03-20", chore.StatusPending},
		{"2024-03-27", chore.StatusPending},
	}
	if len(instances) != len(want) {
		t.Fatalf("instances = %d, want %d", len(instances), len(want))
	}
	for i, w := range want {
		if instances[i].Date.String() != w.date || instances[i].Status != w.status {
			t.Errorf("instance[%d] = %s %s, want %s %s", i, instances[i].Date, instances[i].Status, w.date, w.status)
		}
	}

	rec = env.do(t, "GET", "/api/instances?start=2024-03-31&end=2024-03-01", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reversed range: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCompleteChore(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")
	c := env.createChore(t, map[string]any{"title": "Vacuum", "date": "2024-03-13", "priority": "high"})

	rec := env.do(t, "POST", "/api/chores/"+c.ID+"/complete", map[string]any{"date": "2024-03-13", "member_id": ana.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("complete: status = %d body %s", rec.Code, rec.Body)
	}
	res := decodeBody[completion.Result](t, rec)
	if res.PointsAwarded != 21 {
		t.Errorf("points = %d, want 21", res.PointsAwarded)
	}
	if len(res.NewBadges) == 0 || res.NewBadges[0] != "first-chore" {
		t.Errorf("new badges = %v, want first-chore first", res.NewBadges)
	}

	rec = env.do(t, "GET", "/api/completions?member_id="+ana.ID, nil)
	list := decodeBody[[]model.ChoreCompletion](t, rec)
	if len(list) != 1 {
		t.Fatalf("completions = %d, want 1", len(list))
	}

	rec = env.do(t, "GET", "/api/instances?start=2024-03-13&end=2024-03-13", nil)
	instances := decodeBody[[]chore.InstanceWithStatus](t, rec)
	if len(instances) != 1 || instances[0].Status != chore.StatusCompleted {
		t.Errorf("instances after completion = %+v", instances)
	}

	rec = env.do(t, "DELETE", "/api/completions/"+list[0].ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("uncomplete: status = %d", rec.Code)
	}
	rec = env.do(t, "GET", "/api/completions", nil)
	if list := decodeBody[[]model.ChoreCompletion](t, rec); len(list) != 0 {
		t.Errorf("completions after delete = %d, want 0", len(list))
	}
}

func TestListCompletionsRange(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")
	c := env.createChore(t, map[string]any{"title": "Dust", "date": "2024-03-10", "recurrence": "daily"})

	rec := env.do(t, "POST", "/api/chores/"+c.ID+"/complete", map[string]any{"date": "2024-03-10", "member_id": ana.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("complete: status = %d body %s", rec.Code, rec.Body)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"both bounds", "?start=2024-03-01&end=2024-03-31", 1},
		{"start only", "?start=2024-03-01", 1},
		{"end only", "?end=2024-03-31", 1},
		{"start after", "?start=2024-03-11", 0},
		{"end before", "?end=2024-03-09", 0},
		{"earliest start", "?start=0001-01-01&end=2024-03-10", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "GET", "/api/completions"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d body %s", rec.Code, rec.Body)
			}
			if got := decodeBody[[]model.ChoreCompletion](t, rec); len(got) != tt.want {
				t.Errorf("completions = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestCompleteChoreErrors(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")
	c := env.createChore(t, map[string]any{"title": "Vacuum", "date": "2024-03-13"})

	tests := []struct {
		name    string
		choreID string
		body    map[string]any
		status  int
	}{
		{"unknown chore", "missing", map[string]any{"date": "2024-03-13", "member_id": ana.ID}, http.StatusNotFound},
		{"unknown member", c.ID, map[string]any{"date": "2024-03-13", "member_id": "nobody"}, http.StatusBadRequest},
		{"missing member", c.ID, map[string]any{"date": "2024-03-13"}, http.StatusBadRequest},
		{"bad date", c.ID, map[string]any{"date": "tomorrow", "member_id": ana.ID}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "POST", "/api/chores/"+tt.choreID+"/complete", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
		})
	}
}

func TestCompleteChoreRequiresPIN(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")
	c := env.createChore(t, map[string]any{"title": "Vacuum", "date": "2024-03-13"})

	if rec := env.do(t, "POST", "/api/members/"+ana.ID+"/pin", map[string]string{"pin": "4321"}); rec.Code != http.StatusOK {
		t.Fatalf("set pin: status = %d", rec.Code)
	}

	path := "/api/chores/" + c.ID + "/complete"
	if rec := env.do(t, "POST", path, map[string]any{"date": "2024-03-13", "member_id": ana.ID}); rec.Code != http.StatusUnauthorized {
		t.Errorf("no pin: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if rec := env.do(t, "POST", path, map[string]any{"date": "2024-03-13", "member_id": ana.ID, "pin": "4321"}); rec.Code != http.StatusCreated {
		t.Errorf("with pin: status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestMemberStats(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")
	c := env.createChore(t, map[string]any{"title": "Dishes", "date": "2024-03-11", "recurrence": "daily", "assignee_id": ana.ID})

	for _, d := range []string{"2024-03-12", "2024-03-13"} {
		if rec := env.do(t, "POST", "/api/chores/"+c.ID+"/complete", map[string]any{"date": d, "member_id": ana.ID}); rec.Code != http.StatusCreated {
			t.Fatalf("complete %s: status = %d", d, rec.Code)
		}
	}

	rec := env.do(t, "GET", "/api/members/"+ana.ID+"/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	stats := decodeBody[memberStatsResponse](t, rec)
	if stats.TotalCompleted != 2 {
		t.Errorf("total = %d, want 2", stats.TotalCompleted)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("current streak = %d, want 2", stats.CurrentStreak)
	}
	if stats.Points == 0 {
		t.Error("expected points")
	}

	rec = env.do(t, "GET", "/api/members/missing/stats", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown member: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAutoAssignEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	env.createMember(t, "Ana")
	env.createMember(t, "Ben")
	env.createChore(t, map[string]any{"title": "Trash", "date": "2024-03-14"})
	env.createChore(t, map[string]any{"title": "Mop", "date": "2024-03-15"})

	type autoResponse struct {
		Assignments map[string]string `json:"assignments"`
		Applied     bool              `json:"applied"`
	}

	rec := env.do(t, "POST", "/api/assignments/auto", nil)
	preview := decodeBody[autoResponse](t, rec)
	if len(preview.Assignments) != 2 || preview.Applied {
		t.Errorf("preview = %+v, want 2 unapplied assignments", preview)
	}

	chores, _ := env.chores.List()
	for _, c := range chores {
		if c.AssigneeID != nil {
			t.Errorf("preview assigned %s", c.Title)
		}
	}

	rec = env.do(t, "POST", "/api/assignments/auto?apply=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("apply: status = %d", rec.Code)
	}
	if applied := decodeBody[autoResponse](t, rec); !applied.Applied {
		t.Error("applied = false, want true")
	}
	chores, _ = env.chores.List()
	for _, c := range chores {
		if c.AssigneeID == nil {
			t.Errorf("%s left unassigned", c.Title)
		}
	}
}

func TestNextAssignee(t *testing.T) {
	env := setupTestEnv(t)
	c := env.createChore(t, map[string]any{"title": "Trash", "date": "2024-03-14"})

	rec := env.do(t, "POST", "/api/chores/missing/next-assignee", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown chore: status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = env.do(t, "POST", "/api/chores/"+c.ID+"/next-assignee", nil)
	empty := decodeBody[model.AssignmentPreview](t, rec)
	if empty.AssigneeID != nil {
		t.Errorf("no members: assignee = %v, want nil", *empty.AssigneeID)
	}

	ana := env.createMember(t, "Ana")

	rec = env.do(t, "POST", "/api/chores/"+c.ID+"/next-assignee", map[string]any{"rotation_type": "lottery"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad rotation: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = env.do(t, "POST", "/api/chores/"+c.ID+"/next-assignee?apply=true", map[string]any{"rotation_type": "least-loaded"})
	if rec.Code != http.StatusOK {
		t.Fatalf("apply: status = %d body %s", rec.Code, rec.Body)
	}
	preview := decodeBody[model.AssignmentPreview](t, rec)
	if preview.AssigneeID == nil || *preview.AssigneeID != ana.ID {
		t.Fatalf("preview = %+v, want Ana", preview)
	}
	if preview.Reason != "Lowest workload" {
		t.Errorf("reason = %q", preview.Reason)
	}

	got, _ := env.chores.GetByID(c.ID)
	if got.AssigneeID == nil || *got.AssigneeID != ana.ID {
		t.Errorf("stored assignee = %v, want %s", got.AssigneeID, ana.ID)
	}
}

func TestAssignmentInsights(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")
	env.createMember(t, "Ben")
	env.createChore(t, map[string]any{"title": "Trash", "date": "2024-03-14", "assignee_id": ana.ID})

	rec := env.do(t, "GET", "/api/assignments/stats", nil)
	stats := decodeBody[[]model.AssignmentStats](t, rec)
	if len(stats) != 2 {
		t.Fatalf("stats = %d entries, want 2", len(stats))
	}

	rec = env.do(t, "GET", "/api/assignments/suggest", nil)
	suggest := decodeBody[struct {
		Member *model.TeamMember `json:"member"`
	}](t, rec)
	if suggest.Member == nil || suggest.Member.Name != "Ben" {
		t.Errorf("suggested = %+v, want Ben", suggest.Member)
	}

	rec = env.do(t, "GET", "/api/assignments/balance", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("balance: status = %d", rec.Code)
	}
}

func TestDashboardAndBadges(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")
	c := env.createChore(t, map[string]any{"title": "Dishes", "date": "2024-03-13", "assignee_id": ana.ID})
	env.createChore(t, map[string]any{"title": "Windows", "date": "2024-03-01"})

	if rec := env.do(t, "POST", "/api/chores/"+c.ID+"/complete", map[string]any{"date": "2024-03-13", "member_id": ana.ID}); rec.Code != http.StatusCreated {
		t.Fatalf("complete: status = %d", rec.Code)
	}

	rec := env.do(t, "GET", "/api/dashboard", nil)
	d := decodeBody[dashboard.Dashboard](t, rec)
	if d.Summary.TotalChores != 2 {
		t.Errorf("total chores = %d, want 2", d.Summary.TotalChores)
	}
	if d.Summary.CompletedToday != 1 {
		t.Errorf("completed today = %d, want 1", d.Summary.CompletedToday)
	}
	if d.Summary.Overdue != 1 {
		t.Errorf("overdue = %d, want 1", d.Summary.Overdue)
	}
	if len(d.Members) != 1 || d.Members[0].TotalCompleted != 1 {
		t.Errorf("members = %+v", d.Members)
	}

	rec = env.do(t, "GET", "/api/badges", nil)
	badges := decodeBody[[]model.Badge](t, rec)
	if len(badges) != len(gamification.Default().Badges()) {
		t.Errorf("badges = %d, want %d", len(badges), len(gamification.Default().Badges()))
	}
}

func TestCategoryAndAvailability(t *testing.T) {
	env := setupTestEnv(t)
	ana := env.createMember(t, "Ana")

	rec := env.do(t, "POST", "/api/categories", map[string]any{"name": "kitchen"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate category: status = %d, want %d", rec.Code, http.StatusConflict)
	}
	rec = env.do(t, "POST", "/api/categories", map[string]any{"name": "Garage"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: status = %d", rec.Code)
	}
	cat := decodeBody[model.Category](t, rec)
	if cat.Color != "#6B7280" {
		t.Errorf("default color = %q", cat.Color)
	}

	rec = env.do(t, "POST", "/api/availability", map[string]any{"member_id": ana.ID, "start_date": "2024-03-20", "end_date": "2024-03-18"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reversed range: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = env.do(t, "POST", "/api/availability", map[string]any{"member_id": ana.ID, "start_date": "2024-03-18", "end_date": "2024-03-20", "reason": "trip"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create availability: status = %d body %s", rec.Code, rec.Body)
	}

	rec = env.do(t, "GET", "/api/availability?member_id="+ana.ID, nil)
	if list := decodeBody[[]model.MemberAvailability](t, rec); len(list) != 1 {
		t.Errorf("availability = %d, want 1", len(list))
	}
}
