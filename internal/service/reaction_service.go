package service

import (
	"fmt"

	"socialnet/internal/model"
	"socialnet/internal/repository"
)

type ReactionService interface {
	SetReaction(userID, postID, kind string) (*model.Reaction, error)
	DeleteReaction(userID, postID string) error
	GetReaction(userID, postID string) (*model.Reaction, error)
	GetReactionsForPost(postID string) ([]*model.Reaction, error)
	GetReactionCounts(postID string) (map[string]int64, error)
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
) ReactionService {
	return &reactionService{
		reactionRepo: reactionRepo,
		userRepo:     userRepo,
		postRepo:     postRepo,
	}
}

// SetReaction records the user's reaction to a post. An unrecognized kind
// leaves the ledger untouched. A second reaction from the same user to the
// same post overwrites the first; there is never more than one row per pair.
func (s *reactionService) SetReaction(userID, postID, kind string) (*model.Reaction, error) {
	if !model.ValidReaction(kind) {
		return nil, &ValidationError{Field: "reaction", Message: fmt.Sprintf("unrecognized reaction kind %q", kind)}
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}
	if _, err := s.postRepo.FindByID(postID); err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}

	reaction := &model.Reaction{
		UserID:   userID,
		PostID:   postID,
		Reaction: kind,
	}

	if err := s.reactionRepo.Upsert(reaction); err != nil {
		return nil, fmt.Errorf("failed to set reaction: %w", err)
	}

	return s.reactionRepo.FindByUserAndPost(userID, postID)
}

// DeleteReaction removes the user's reaction. Having nothing to delete is
// reported distinctly from success.
func (s *reactionService) DeleteReaction(userID, postID string) error {
	removed, err := s.reactionRepo.DeleteByUserAndPost(userID, postID)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	if !removed {
		return &NotFoundError{Resource: "reaction"}
	}
	return nil
}

// GetReaction returns the user's reaction to a post, if any
func (s *reactionService) GetReaction(userID, postID string) (*model.Reaction, error) {
	reaction, err := s.reactionRepo.FindByUserAndPost(userID, postID)
	if err != nil {
		return nil, &NotFoundError{Resource: "reaction"}
	}
	return reaction, nil
}

// GetReactionsForPost lists all reactions to a post
func (s *reactionService) GetReactionsForPost(postID string) ([]*model.Reaction, error) {
	if _, err := s.postRepo.FindByID(postID); err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}
	return s.reactionRepo.FindByPostID(postID)
}

// GetReactionCounts groups the post's reactions by kind at read time
func (s *reactionService) GetReactionCounts(postID string) (map[string]int64, error) {
	return s.reactionRepo.CountsByPostID(postID)
}
