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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, created_at, reset_token_hash, reset_token_expires_at`

// CreateUser inserts a new user. Username and email uniqueness are checked
// inside the same transaction as the INSERT so the caller learns which field
// collided; the UNIQUE constraints catch anything that slips past.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	return db.withTx(ctx, func(ctx context.Context, tx dbtx) error {
		taken, err := exists(ctx, tx, `SELECT 1 FROM users WHERE username = ?`, user.Username)
		if err != nil {
			return fmt.Errorf("sqlite: checking username %q: %w", user.Username, err)
		}
		if taken {
			return apperror.Duplicate("username", "Username already exists!")
		}

		taken, err = exists(ctx, tx, `SELECT 1 FROM users WHERE email = ?`, user.Email)
		if err != nil {
			return fmt.Errorf("sqlite: checking email %q: %w", user.Email, err)
		}
		if taken {
			return apperror.Duplicate("email", "Email already registered!")
		}

		user.ID = xid.New().String()
		user.CreatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password_hash, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.CreatedAt,
		)
		switch {
		case isUniqueViolation(err, "users", "username"):
			return apperror.Duplicate("username", "Username already exists!")
		case isUniqueViolation(err, "users", "email"):
			return apperror.Duplicate("email", "Email already registered!")
		case err != nil:
			return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
		}
		return nil
	})
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage(fmt.Sprintf("user %q not found", username))
		}
		return nil, fmt.Errorf("sqlite: getting user by username: %w", err)
	}
	return u, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("No account found with that email address.")
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// GetUserByResetToken looks a user up by the digest of their pending reset
// token. Expiry is not checked here; callers must compare it themselves.
func (db *DB) GetUserByResetToken(ctx context.Context, tokenHash string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = ?`, tokenHash,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundMessage("reset token not found")
		}
		return nil, fmt.Errorf("sqlite: getting user by reset token: %w", err)
	}
	return u, nil
}

// SetResetToken records a pending reset. Issuing a new token replaces any
// earlier one, so only the most recent link works.
func (db *DB) SetResetToken(ctx context.Context, userID, tokenHash string, expiry time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET reset_token_hash = ?, reset_token_expires_at = ? WHERE id = ?`,
		tokenHash,
		expiry.UnixNano(),
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting reset token for user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}
	return nil
}

// ConsumeResetToken swaps in the new password hash and clears the token in
// one conditional UPDATE. The WHERE clause re-checks both the digest and the
// expiry, so a token that was consumed or expired between the caller's
// validation and this call matches zero rows.
func (db *DB) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = ?, reset_token_hash = NULL, reset_token_expires_at = NULL
		 WHERE reset_token_hash = ? AND reset_token_expires_at >= ?`,
		newPasswordHash,
		tokenHash,
		now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: consuming reset token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.InvalidOrExpired("Invalid or expired reset token.")
	}
	return nil
}

func (db *DB) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	limit, offset := listBounds(opts.Limit, opts.Offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// DeleteUser removes a user. Their ideas and schedules go with them through
// ON DELETE CASCADE.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func (db *DB) CountUsers(ctx context.Context) (int, error) {
	return db.count(ctx, "users")
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u         model.User
		tokenHash sql.NullString
		expiresAt sql.NullInt64
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&tokenHash,
		&expiresAt,
	); err != nil {
		return nil, err
	}

	if tokenHash.Valid && expiresAt.Valid {
		h := tokenHash.String
		exp := time.Unix(0, expiresAt.Int64).UTC()
		u.ResetTokenHash = &h
		u.ResetTokenExpiry = &exp
	}
	return &u, nil
}

func exists(ctx context.Context, q dbtx, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
