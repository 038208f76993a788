package service

import (
	"context"
	"fmt"

	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/repository"
)

// Dashboard is a creator's home view.
type Dashboard struct {
	Ideas     []model.Idea     `json:"ideas"`
	Schedules []model.Schedule `json:"schedules"`
}

type DashboardService struct {
	ideas     repository.IdeaRepository
	schedules repository.ScheduleRepository
}

func NewDashboardService(ideas repository.IdeaRepository, schedules repository.ScheduleRepository) *DashboardService {
	return &DashboardService{ideas: ideas, schedules: schedules}
}

func (s *DashboardService) Get(ctx context.Context, userID string) (*Dashboard, error) {
	ideas, err := s.ideas.ListIdeasByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/dashboard: listing ideas: %w", err)
	}
	schedules, err := s.schedules.ListSchedulesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/dashboard: listing schedules: %w", err)
	}
	return &Dashboard{Ideas: ideas, Schedules: schedules}, nil
}
