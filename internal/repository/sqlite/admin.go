package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/repository"
)

var _ repository.AdminRepository = (*DB)(nil)

func (db *DB) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.ID = xid.New().String()
	admin.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO admins (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		admin.ID,
		admin.Username,
		admin.PasswordHash,
		admin.CreatedAt,
	)
	if isUniqueViolation(err, "admins", "username") {
		return apperror.Duplicate("username", "Admin already exists!")
	}
	if err != nil {
		return fmt.Errorf("sqlite: inserting admin %q: %w", admin.Username, err)
	}
	return nil
}

func (db *DB) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var a model.Admin
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`,
		username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage(fmt.Sprintf("admin %q not found", username))
		}
		return nil, fmt.Errorf("sqlite: getting admin by username: %w", err)
	}
	return &a, nil
}

func (db *DB) CountAdmins(ctx context.Context) (int, error) {
	return db.count(ctx, "admins")
}
