package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/creatorverse/internal/apperror"
)

func TestScheduleAdd(t *testing.T) {
	svc := NewScheduleService(newFakeStore(), testLogger())

	sched, err := svc.Add(context.Background(), "user-1", "2026-05-01", "Film intro")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if sched.ID == "" || sched.Date != "2026-05-01" || sched.Task != "Film intro" {
		t.Errorf("got %+v", sched)
	}

	if _, err := svc.Add(context.Background(), "user-1", "", "task"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("missing date error = %v, want ErrValidation", err)
	}
	_, err = svc.Add(context.Background(), "user-1", "2026-05-01", " ")
	if !errors.Is(err, apperror.ErrValidation) || err.Error() != "Task description is required" {
		t.Errorf("missing task error = %v", err)
	}
}

func TestScheduleList_OrderedByDate(t *testing.T) {
	svc := NewScheduleService(newFakeStore(), testLogger())
	ctx := context.Background()

	_, _ = svc.Add(ctx, "u", "2026-06-10", "later")
	_, _ = svc.Add(ctx, "u", "2026-06-01", "sooner")
	_, _ = svc.Add(ctx, "other", "2026-01-01", "not mine")

	got, err := svc.List(ctx, "u")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Task != "sooner" || got[1].Task != "later" {
		t.Errorf("order = [%s %s], want [sooner later]", got[0].Task, got[1].Task)
	}
}

func TestScheduleDelete_OwnerOnly(t *testing.T) {
	svc := NewScheduleService(newFakeStore(), testLogger())
	ctx := context.Background()
	sched, _ := svc.Add(ctx, "owner", "2026-06-01", "task")

	if err := svc.Delete(ctx, "intruder", sched.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Delete(non-owner) error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, "owner", sched.ID); err != nil {
		t.Fatalf("Delete(owner) error = %v", err)
	}
	if err := svc.Delete(ctx, "owner", "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}
