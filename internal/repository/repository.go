// Package repository declares the persistence contracts the service layer
// depends on. The sqlite subpackage is the production implementation; the
// service tests use in-memory fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/creatorverse/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the credential store for creator accounts.
//
// CreateUser returns an apperror.ErrConflict error whose Field is
// "username" or "email" when either is already taken.
//
// ConsumeResetToken overwrites the password hash and clears both reset
// fields in a single statement, but only while the token digest matches and
// its expiry is not before now. If no row qualifies it returns an
// apperror.ErrInvalidOrExpired error, which is how the loser of two
// concurrent consumptions finds out.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string) (*model.User, error)
	SetResetToken(ctx context.Context, userID, tokenHash string, expiry time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
	CountAdmins(ctx context.Context) (int, error)
}

type IdeaRepository interface {
	CreateIdea(ctx context.Context, idea *model.Idea) error
	GetIdeaByID(ctx context.Context, id string) (*model.Idea, error)
	ListIdeasByUser(ctx context.Context, userID string) ([]model.Idea, error)
	ListIdeas(ctx context.Context, opts ListOptions) ([]model.Idea, error)
	DeleteIdea(ctx context.Context, id string) error
	CountIdeas(ctx context.Context) (int, error)
}

type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule *model.Schedule) error
	GetScheduleByID(ctx context.Context, id string) (*model.Schedule, error)
	ListSchedulesByUser(ctx context.Context, userID string) ([]model.Schedule, error)
	ListSchedules(ctx context.Context, opts ListOptions) ([]model.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	CountSchedules(ctx context.Context) (int, error)
}

// Pinger is satisfied by storage backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
