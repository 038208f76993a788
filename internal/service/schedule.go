package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/repository"
)

// ScheduleService manages a user's publishing calendar.
type ScheduleService struct {
	schedules repository.ScheduleRepository
	logger    *slog.Logger
}

func NewScheduleService(schedules repository.ScheduleRepository, logger *slog.Logger) *ScheduleService {
	return &ScheduleService{schedules: schedules, logger: logger}
}

// Add saves a calendar entry. date is stored as given.
func (s *ScheduleService) Add(ctx context.Context, userID, date, task string) (*model.Schedule, error) {
	date, err := required("date", date, "Date is required")
	if err != nil {
		return nil, err
	}
	task, err = required("task", task, "Task description is required")
	if err != nil {
		return nil, err
	}

	sched := &model.Schedule{Date: date, Task: task, UserID: userID}
	if err := s.schedules.CreateSchedule(ctx, sched); err != nil {
		return nil, fmt.Errorf("service/schedule: creating schedule: %w", err)
	}

	s.logger.Info("schedule created",
		slog.String("id", sched.ID),
		slog.String("userID", userID),
	)
	return sched, nil
}

// List returns userID's entries ordered by date.
func (s *ScheduleService) List(ctx context.Context, userID string) ([]model.Schedule, error) {
	schedules, err := s.schedules.ListSchedulesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/schedule: listing schedules: %w", err)
	}
	return schedules, nil
}

// Delete removes an entry owned by userID.
func (s *ScheduleService) Delete(ctx context.Context, userID, scheduleID string) error {
	sched, err := s.schedules.GetScheduleByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if sched.UserID != userID {
		return apperror.Forbidden("Unauthorized action")
	}

	if err := s.schedules.DeleteSchedule(ctx, scheduleID); err != nil {
		return fmt.Errorf("service/schedule: deleting schedule %s: %w", scheduleID, err)
	}
	return nil
}
