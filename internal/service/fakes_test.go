package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/auth"
	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testPasswords() *auth.PasswordService {
	return auth.NewPasswordServiceForTest(bcrypt.MinCost)
}

// fakeStore is an in-memory credential store plus idea and schedule tables.
// One mutex guards everything, which also makes ConsumeResetToken atomic.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int
	users     map[string]*model.User
	admins    map[string]*model.Admin
	ideas     map[string]*model.Idea
	schedules map[string]*model.Schedule

	// set to simulate a storage failure
	failErr error
}

var (
	_ repository.UserRepository     = (*fakeStore)(nil)
	_ repository.AdminRepository    = (*fakeStore)(nil)
	_ repository.IdeaRepository     = (*fakeStore)(nil)
	_ repository.ScheduleRepository = (*fakeStore)(nil)
	_ repository.Pinger             = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*model.User),
		admins:    make(map[string]*model.Admin),
		ideas:     make(map[string]*model.Idea),
		schedules: make(map[string]*model.Schedule),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%03d", prefix, f.nextID)
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.failErr
}

// ---- users ----

func (f *fakeStore) CreateUser(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return apperror.Duplicate("username", "Username already exists!")
		}
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Duplicate("email", "Email already registered!")
		}
	}
	u.ID = f.id("user")
	u.CreatedAt = time.Now().UTC()
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeStore) findUser(match func(*model.User) bool) (*model.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			copied := *u
			return &copied, true
		}
	}
	return nil, false
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := f.findUser(func(u *model.User) bool { return u.ID == id }); ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if u, ok := f.findUser(func(u *model.User) bool { return u.Username == username }); ok {
		return u, nil
	}
	return nil, apperror.NotFoundMessage("user not found")
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := f.findUser(func(u *model.User) bool { return u.Email == email }); ok {
		return u, nil
	}
	return nil, apperror.NotFoundMessage("No account found with that email address.")
}

func (f *fakeStore) GetUserByResetToken(ctx context.Context, tokenHash string) (*model.User, error) {
	if u, ok := f.findUser(func(u *model.User) bool {
		return u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash
	}); ok {
		return u, nil
	}
	return nil, apperror.NotFoundMessage("reset token not found")
}

func (f *fakeStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiry = &expiry
	return nil
}

func (f *fakeStore) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash {
			continue
		}
		if u.ResetTokenExpiry.Before(now) {
			break
		}
		u.PasswordHash = newPasswordHash
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
		return nil
	}
	return apperror.InvalidOrExpired("Invalid or expired reset token.")
}

func (f *fakeStore) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	for k, i := range f.ideas {
		if i.UserID == id {
			delete(f.ideas, k)
		}
	}
	for k, s := range f.schedules {
		if s.UserID == id {
			delete(f.schedules, k)
		}
	}
	return nil
}

func (f *fakeStore) CountUsers(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return 0, f.failErr
	}
	return len(f.users), nil
}

// ---- admins ----

func (f *fakeStore) CreateAdmin(ctx context.Context, a *model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.admins {
		if existing.Username == a.Username {
			return apperror.Duplicate("username", "Admin already exists!")
		}
	}
	a.ID = f.id("admin")
	a.CreatedAt = time.Now().UTC()
	copied := *a
	f.admins[a.ID] = &copied
	return nil
}

func (f *fakeStore) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperror.NotFoundMessage("admin not found")
}

func (f *fakeStore) CountAdmins(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return 0, f.failErr
	}
	return len(f.admins), nil
}

// ---- ideas ----

func (f *fakeStore) CreateIdea(ctx context.Context, i *model.Idea) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	i.ID = f.id("idea")
	i.CreatedAt = time.Now().UTC()
	copied := *i
	f.ideas[i.ID] = &copied
	return nil
}

func (f *fakeStore) GetIdeaByID(ctx context.Context, id string) (*model.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.ideas[id]
	if !ok {
		return nil, apperror.NotFound("idea", id)
	}
	copied := *i
	return &copied, nil
}

func (f *fakeStore) ListIdeasByUser(ctx context.Context, userID string) ([]model.Idea, error) {
	all, _ := f.ListIdeas(ctx, repository.ListOptions{})
	out := make([]model.Idea, 0, len(all))
	for _, i := range all {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeStore) ListIdeas(ctx context.Context, opts repository.ListOptions) ([]model.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Idea, 0, len(f.ideas))
	for _, i := range f.ideas {
		out = append(out, *i)
	}
	// IDs increase with creation, so descending ID is newest first.
	sort.Slice(out, func(a, b int) bool { return out[a].ID > out[b].ID })
	return out, nil
}

func (f *fakeStore) DeleteIdea(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ideas[id]; !ok {
		return apperror.NotFound("idea", id)
	}
	delete(f.ideas, id)
	return nil
}

func (f *fakeStore) CountIdeas(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ideas), nil
}

// ---- schedules ----

func (f *fakeStore) CreateSchedule(ctx context.Context, s *model.Schedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.id("sched")
	s.CreatedAt = time.Now().UTC()
	copied := *s
	f.schedules[s.ID] = &copied
	return nil
}

func (f *fakeStore) GetScheduleByID(ctx context.Context, id string) (*model.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.schedules[id]
	if !ok {
		return nil, apperror.NotFound("schedule", id)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) ListSchedulesByUser(ctx context.Context, userID string) ([]model.Schedule, error) {
	all, _ := f.ListSchedules(ctx, repository.ListOptions{})
	out := make([]model.Schedule, 0, len(all))
	for _, s := range all {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSchedules(ctx context.Context, opts repository.ListOptions) ([]model.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Schedule, 0, len(f.schedules))
	for _, s := range f.schedules {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Date != out[b].Date {
			return out[a].Date < out[b].Date
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (f *fakeStore) DeleteSchedule(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.schedules[id]; !ok {
		return apperror.NotFound("schedule", id)
	}
	delete(f.schedules, id)
	return nil
}

func (f *fakeStore) CountSchedules(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.schedules), nil
}

var errDatabaseDown = errors.New("database is down")
