package service

import (
	"context"

	"blogfeed/internal/models"
	"blogfeed/internal/observability"
	"blogfeed/internal/repository"
)

type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

// Follow makes actorID follow username. Repeating it, or following yourself, changes nothing.
func (s *FollowService) Follow(ctx context.Context, actorID uint, username string) (err error) {
	defer func() { observability.RecordMutation("follow.create", err) }()

	if actorID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == actorID {
		return nil
	}
	_, err = s.follows.GetOrCreate(ctx, actorID, author.ID)
	return err
}

// Unfollow removes the edge from actorID to username; NOT_FOUND when there is none.
func (s *FollowService) Unfollow(ctx context.Context, actorID uint, username string) (err error) {
	defer func() { observability.RecordMutation("follow.delete", err) }()

	if actorID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return models.NewNotFoundError("Follow", username)
		}
		return err
	}
	return s.follows.Delete(ctx, actorID, author.ID)
}
