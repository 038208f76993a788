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

var _ repository.ScheduleRepository = (*DB)(nil)

const scheduleColumns = `id, date, task, created_at, user_id`

func (db *DB) CreateSchedule(ctx context.Context, schedule *model.Schedule) error {
	schedule.ID = xid.New().String()
	schedule.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO schedules (`+scheduleColumns+`) VALUES (?, ?, ?, ?, ?)`,
		schedule.ID,
		schedule.Date,
		schedule.Task,
		schedule.CreatedAt,
		schedule.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating schedule: %w", err)
	}
	return nil
}

func (db *DB) GetScheduleByID(ctx context.Context, id string) (*model.Schedule, error) {
	var s model.Schedule
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id,
	).Scan(&s.ID, &s.Date, &s.Task, &s.CreatedAt, &s.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("schedule", id)
		}
		return nil, fmt.Errorf("sqlite: getting schedule %s: %w", id, err)
	}
	return &s, nil
}

// ListSchedulesByUser returns userID's calendar ordered by the date string.
// Dates are opaque text, so the order is lexical.
func (db *DB) ListSchedulesByUser(ctx context.Context, userID string) ([]model.Schedule, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE user_id = ?
		 ORDER BY date ASC, rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing schedules for user %s: %w", userID, err)
	}
	return scanSchedules(rows)
}

func (db *DB) ListSchedules(ctx context.Context, opts repository.ListOptions) ([]model.Schedule, error) {
	limit, offset := listBounds(opts.Limit, opts.Offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 ORDER BY date ASC, rowid ASC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing schedules: %w", err)
	}
	return scanSchedules(rows)
}

func (db *DB) DeleteSchedule(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting schedule %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("schedule", id)
	}
	return nil
}

func (db *DB) CountSchedules(ctx context.Context) (int, error) {
	return db.count(ctx, "schedules")
}

func scanSchedules(rows *sql.Rows) ([]model.Schedule, error) {
	defer rows.Close()

	schedules := make([]model.Schedule, 0)
	for rows.Next() {
		var s model.Schedule
		if err := rows.Scan(&s.ID, &s.Date, &s.Task, &s.CreatedAt, &s.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning schedule row: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating schedules: %w", err)
	}
	return schedules, nil
}
