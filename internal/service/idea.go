package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/creatorverse/internal/apperror"
	"github.com/sakif/creatorverse/internal/ideagen"
	"github.com/sakif/creatorverse/internal/model"
	"github.com/sakif/creatorverse/internal/repository"
)

// IdeaGenerator produces five ideas for a topic. *ideagen.Gateway
// satisfies it.
type IdeaGenerator interface {
	Generate(ctx context.Context, topic string) ideagen.Result
}

// IdeaInput is the form for a new idea. An empty Category becomes
// model.DefaultCategory.
type IdeaInput struct {
	Title       string
	Description string
	Category    string
}

// IdeaService manages a user's saved ideas and the idea generator.
type IdeaService struct {
	ideas     repository.IdeaRepository
	generator IdeaGenerator
	logger    *slog.Logger
}

func NewIdeaService(ideas repository.IdeaRepository, generator IdeaGenerator, logger *slog.Logger) *IdeaService {
	return &IdeaService{
		ideas:     ideas,
		generator: generator,
		logger:    logger,
	}
}

// Add saves a new idea owned by userID.
func (s *IdeaService) Add(ctx context.Context, userID string, in IdeaInput) (*model.Idea, error) {
	title, err := required("title", in.Title, "Title is required")
	if err != nil {
		return nil, err
	}
	description, err := required("description", in.Description, "Description is required")
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	idea := &model.Idea{
		Title:       title,
		Description: description,
		Category:    category,
		UserID:      userID,
	}
	if err := s.ideas.CreateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("service/idea: creating idea: %w", err)
	}

	s.logger.Info("idea created",
		slog.String("id", idea.ID),
		slog.String("userID", userID),
	)
	return idea, nil
}

// List returns userID's ideas, newest first.
func (s *IdeaService) List(ctx context.Context, userID string) ([]model.Idea, error) {
	ideas, err := s.ideas.ListIdeasByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/idea: listing ideas: %w", err)
	}
	return ideas, nil
}

// Delete removes an idea. Only its owner may delete it; anyone else gets
// ErrForbidden, and an unknown id gets ErrNotFound.
func (s *IdeaService) Delete(ctx context.Context, userID, ideaID string) error {
	idea, err := s.ideas.GetIdeaByID(ctx, ideaID)
	if err != nil {
		return err
	}
	if idea.UserID != userID {
		s.logger.Warn("idea delete by non-owner",
			slog.String("id", ideaID),
			slog.String("userID", userID),
		)
		return apperror.Forbidden("Unauthorized action")
	}

	if err := s.ideas.DeleteIdea(ctx, ideaID); err != nil {
		return fmt.Errorf("service/idea: deleting idea %s: %w", ideaID, err)
	}
	return nil
}

// Generate returns five ideas for topic. Generator failures are absorbed
// by the generator itself; the only error is an empty topic.
func (s *IdeaService) Generate(ctx context.Context, topic string) (ideagen.Result, error) {
	topic, err := required("topic", topic, "Topic is required")
	if err != nil {
		return ideagen.Result{}, err
	}
	return s.generator.Generate(ctx, topic), nil
}
