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

var _ repository.IdeaRepository = (*DB)(nil)

const ideaColumns = `id, title, description, category, created_at, user_id`

// CreateIdea inserts idea and fills in its ID and CreatedAt.
func (db *DB) CreateIdea(ctx context.Context, idea *model.Idea) error {
	idea.ID = xid.New().String()
	idea.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO ideas (`+ideaColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		idea.ID,
		idea.Title,
		idea.Description,
		idea.Category,
		idea.CreatedAt,
		idea.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating idea: %w", err)
	}
	return nil
}

func (db *DB) GetIdeaByID(ctx context.Context, id string) (*model.Idea, error) {
	var i model.Idea
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = ?`, id,
	).Scan(&i.ID, &i.Title, &i.Description, &i.Category, &i.CreatedAt, &i.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("idea", id)
		}
		return nil, fmt.Errorf("sqlite: getting idea %s: %w", id, err)
	}
	return &i, nil
}

// ListIdeasByUser returns every idea owned by userID, newest first.
func (db *DB) ListIdeasByUser(ctx context.Context, userID string) ([]model.Idea, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing ideas for user %s: %w", userID, err)
	}
	return scanIdeas(rows)
}

// ListIdeas pages through all ideas across users, newest first.
func (db *DB) ListIdeas(ctx context.Context, opts repository.ListOptions) ([]model.Idea, error) {
	limit, offset := listBounds(opts.Limit, opts.Offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing ideas: %w", err)
	}
	return scanIdeas(rows)
}

func (db *DB) DeleteIdea(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM ideas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting idea %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("idea", id)
	}
	return nil
}

func (db *DB) CountIdeas(ctx context.Context) (int, error) {
	return db.count(ctx, "ideas")
}

func scanIdeas(rows *sql.Rows) ([]model.Idea, error) {
	defer rows.Close()

	ideas := make([]model.Idea, 0)
	for rows.Next() {
		var i model.Idea
		if err := rows.Scan(&i.ID, &i.Title, &i.Description, &i.Category, &i.CreatedAt, &i.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning idea row: %w", err)
		}
		ideas = append(ideas, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ideas: %w", err)
	}
	return ideas, nil
}
