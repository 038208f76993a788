package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/model"
)

func seedContent(t *testing.T, store *fakeStore) (alice, bob string) {
	t.Helper()
	ctx := context.Background()

	for _, u := range []*model.User{
		{Username: "alice", Email: "alice@example.com", PasswordHash: "x"},
		{Username: "bob", Email: "bob@example.com", PasswordHash: "x"},
	} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if u.Username == "alice" {
			alice = u.ID
		} else {
			bob = u.ID
		}
	}

	ideas := NewIdeaService(store, &fakeGenerator{}, testLogger())
	schedules := NewScheduleService(store, testLogger())
	for _, owner := range []string{alice, alice, bob} {
		if _, err := ideas.Add(ctx, owner, IdeaInput{Title: "t", Description: "d"}); err != nil {
			t.Fatalf("Add idea error = %v", err)
		}
	}
	if _, err := schedules.Add(ctx, alice, "2026-06-01", "task"); err != nil {
		t.Fatalf("Add schedule error = %v", err)
	}
	return alice, bob
}

func TestAdminDashboard(t *testing.T) {
	store := newFakeStore()
	seedContent(t, store)
	svc := NewAdminService(store, store, store, testLogger())

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	want := model.Stats{TotalUsers: 2, TotalIdeas: 3, TotalSchedules: 1}
	if dash.Stats != want {
		t.Errorf("Stats = %+v, want %+v", dash.Stats, want)
	}
	if len(dash.Users) != 2 || len(dash.Ideas) != 3 || len(dash.Schedules) != 1 {
		t.Errorf("lists = %d/%d/%d", len(dash.Users), len(dash.Ideas), len(dash.Schedules))
	}
}

func TestAdminDeleteUser_Cascades(t *testing.T) {
	store := newFakeStore()
	alice, _ := seedContent(t, store)
	svc := NewAdminService(store, store, store, testLogger())
	ctx := context.Background()

	if err := svc.DeleteUser(ctx, alice); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := model.Stats{TotalUsers: 1, TotalIdeas: 1, TotalSchedules: 0}
	if stats != want {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}

	if err := svc.DeleteUser(ctx, alice); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteUser(again) error = %v, want ErrNotFound", err)
	}
}

func TestDashboard_OwnContentOnly(t *testing.T) {
	store := newFakeStore()
	alice, bob := seedContent(t, store)
	svc := NewDashboardService(store, store)

	dash, err := svc.Get(context.Background(), alice)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(dash.Ideas) != 2 || len(dash.Schedules) != 1 {
		t.Errorf("alice dashboard = %d ideas, %d schedules", len(dash.Ideas), len(dash.Schedules))
	}

	dash, _ = svc.Get(context.Background(), bob)
	if len(dash.Ideas) != 1 || len(dash.Schedules) != 0 {
		t.Errorf("bob dashboard = %d ideas, %d schedules", len(dash.Ideas), len(dash.Schedules))
	}
}

// =========================================================================
// Health
// =========================================================================

func TestHealthCheck(t *testing.T) {
	store := newFakeStore()
	seedContent(t, store)
	_ = store.CreateAdmin(context.Background(), &model.Admin{Username: "root", PasswordHash: "x"})

	svc := NewHealthService(store, store, store, testLogger())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	report := svc.Check(context.Background())

	if !report.Healthy() {
		t.Fatalf("Status = %q, want healthy", report.Status)
	}
	if report.Database != "connected" || report.UsersCount != 2 || report.AdminsCount != 1 {
		t.Errorf("report = %+v", report)
	}
	if !report.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", report.Timestamp, fixed)
	}
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	store := newFakeStore()
	store.failErr = errDatabaseDown
	svc := NewHealthService(store, store, store, testLogger())

	report := svc.Check(context.Background())

	if report.Healthy() {
		t.Error("Healthy() = true with database down")
	}
	if report.Database != "disconnected" {
		t.Errorf("Database = %q, want disconnected", report.Database)
	}
	if report.Error == "" {
		t.Error("Error is empty")
	}
}
