package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/repository"
)

// AdminDashboard is everything the admin overview shows.
type AdminDashboard struct {
	Stats     model.Stats      `json:"stats"`
	Users     []model.User     `json:"users"`
	Ideas     []model.Idea     `json:"ideas"`
	Schedules []model.Schedule `json:"schedules"`
}

// AdminService backs the admin-only endpoints.
type AdminService struct {
	users     repository.UserRepository
	ideas     repository.IdeaRepository
	schedules repository.ScheduleRepository
	logger    *slog.Logger
}

func NewAdminService(
	users repository.UserRepository,
	ideas repository.IdeaRepository,
	schedules repository.ScheduleRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		ideas:     ideas,
		schedules: schedules,
		logger:    logger,
	}
}

// Stats counts every user, idea and schedule.
func (s *AdminService) Stats(ctx context.Context) (model.Stats, error) {
	var (
		stats model.Stats
		err   error
	)
	if stats.TotalUsers, err = s.users.CountUsers(ctx); err != nil {
		return model.Stats{}, fmt.Errorf("service/admin: counting users: %w", err)
	}
	if stats.TotalIdeas, err = s.ideas.CountIdeas(ctx); err != nil {
		return model.Stats{}, fmt.Errorf("service/admin: counting ideas: %w", err)
	}
	if stats.TotalSchedules, err = s.schedules.CountSchedules(ctx); err != nil {
		return model.Stats{}, fmt.Errorf("service/admin: counting schedules: %w", err)
	}
	return stats, nil
}

// Dashboard returns the stats and the most recent rows of each table,
// capped at MaxListLimit apiece.
func (s *AdminService) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	opts := repository.ListOptions{Limit: MaxListLimit}

	users, err := s.users.ListUsers(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing users: %w", err)
	}
	ideas, err := s.ideas.ListIdeas(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing ideas: %w", err)
	}
	schedules, err := s.schedules.ListSchedules(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service/admin: listing schedules: %w", err)
	}

	return &AdminDashboard{
		Stats:     stats,
		Users:     users,
		Ideas:     ideas,
		Schedules: schedules,
	}, nil
}

// DeleteUser removes a user together with their ideas and schedules.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted by admin", slog.String("userID", id))
	return nil
}
