package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/creatorverse/internal/repository"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthReport is the body of GET /health.
type HealthReport struct {
	Status      string    `json:"status"`
	Database    string    `json:"database"`
	UsersCount  int       `json:"users_count"`
	AdminsCount int       `json:"admins_count"`
	Timestamp   time.Time `json:"timestamp"`
	Error       string    `json:"error,omitempty"`
}

// HealthService reports database reachability and row counts. It only reads.
type HealthService struct {
	db     repository.Pinger
	users  repository.UserRepository
	admins repository.AdminRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewHealthService(db repository.Pinger, users repository.UserRepository, admins repository.AdminRepository, logger *slog.Logger) *HealthService {
	return &HealthService{db: db, users: users, admins: admins, logger: logger, now: time.Now}
}

// Check never fails; problems are described in the report.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:    StatusHealthy,
		Database:  "connected",
		Timestamp: s.now().UTC(),
	}

	unhealthy := func(err error) HealthReport {
		report.Status = StatusUnhealthy
		report.Database = "disconnected"
		report.Error = "database check failed"
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		return report
	}

	if err := s.db.Ping(ctx); err != nil {
		return unhealthy(err)
	}

	var err error
	if report.UsersCount, err = s.users.CountUsers(ctx); err != nil {
		return unhealthy(err)
	}
	if report.AdminsCount, err = s.admins.CountAdmins(ctx); err != nil {
		return unhealthy(err)
	}
	return report
}

// Healthy reports whether r describes a working service.
func (r HealthReport) Healthy() bool {
	return r.Status == StatusHealthy
}
