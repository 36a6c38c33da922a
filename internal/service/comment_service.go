package service

import (
	"fmt"

	"socialnet/internal/logger"
	"socialnet/internal/model"
	"socialnet/internal/repository"

	"go.uber.org/zap"
)

type CommentService interface {
	CreateComment(userID string, req CreateCommentRequest) (*model.Comment, error)
	GetCommentByID(commentID string) (*model.Comment, error)
	GetCommentsForPost(postID string, includeDeleted bool) ([]*model.Comment, error)
	GetReplies(commentID string, limit, offset int) ([]*model.Comment, int64, error)
	GetUserComments(userID string, includeDeleted bool) ([]*model.Comment, error)
	EditComment(userID, commentID string, req EditCommentRequest) (*model.Comment, error)
	DeleteComment(userID, commentID string, soft bool) error
	RestoreComment(userID, commentID string) (*model.Comment, error)
	GetCommentCount(postID string) (int64, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
}

type CreateCommentRequest struct {
	PostID   string  `json:"post_id" binding:"required"`
	ParentID *string `json:"parent_id,omitempty"` // For replies
	Content  string  `json:"content" binding:"required"`
}

type EditCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		postRepo:    postRepo,
	}
}

// CreateComment creates a top-level comment or a reply
func (s *commentService) CreateComment(userID string, req CreateCommentRequest) (*model.Comment, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}

	if _, err := s.postRepo.FindByID(req.PostID); err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}

	// A reply must hang off a comment of the same post. The storage layer
	// does not enforce this, so it is checked here.
	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.commentRepo.FindByID(*req.ParentID)
		if err != nil {
			return nil, &NotFoundError{Resource: "parent comment"}
		}
		if parent.PostID != req.PostID {
			return nil, &ValidationError{Field: "parent_id", Message: "parent comment does not belong to this post"}
		}
	}

	comment := &model.Comment{
		PostID:   req.PostID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID)
}

// GetCommentByID gets a comment by ID
func (s *commentService) GetCommentByID(commentID string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, &NotFoundError{Resource: "comment"}
	}
	return comment, nil
}

// GetCommentsForPost returns the post's top-level comments, each carrying one
// level of non-deleted replies. Deleted comments are hidden unless asked for.
func (s *commentService) GetCommentsForPost(postID string, includeDeleted bool) ([]*model.Comment, error) {
	if _, err := s.postRepo.FindByID(postID); err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}
	return s.commentRepo.FindTopLevelByPostID(postID, includeDeleted)
}

// GetReplies returns replies of a comment for deeper thread levels
func (s *commentService) GetReplies(commentID string, limit, offset int) ([]*model.Comment, int64, error) {
	if _, err := s.commentRepo.FindByID(commentID); err != nil {
		return nil, 0, &NotFoundError{Resource: "comment"}
	}

	replies, err := s.commentRepo.FindRepliesByParentID(commentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get replies: %w", err)
	}

	total, err := s.commentRepo.CountRepliesByParentID(commentID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count replies: %w", err)
	}

	return replies, total, nil
}

// GetUserComments returns a user's comments
func (s *commentService) GetUserComments(userID string, includeDeleted bool) ([]*model.Comment, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}
	return s.commentRepo.FindByUserID(userID, includeDeleted)
}

// EditComment replaces the content and marks the comment edited. Only the
// author may edit; moderators can delete but not rewrite other people's words.
func (s *commentService) EditComment(userID, commentID string, req EditCommentRequest) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, &NotFoundError{Resource: "comment"}
	}

	if comment.UserID != userID {
		return nil, &AuthorizationError{Message: "you can only edit your own comments"}
	}

	comment.Content = req.Content
	comment.Edited = true

	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID)
}

// DeleteComment removes a comment. The soft path leaves a reversible
// tombstone so the reply thread stays intact; the hard path removes the row
// and its replies. Allowed for the author or a moderator.
func (s *commentService) DeleteComment(userID, commentID string, soft bool) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return &NotFoundError{Resource: "comment"}
	}

	if err := s.authorizeModeration(userID, comment); err != nil {
		return err
	}

	if soft {
		comment.SoftDelete(userID)
		if err := s.commentRepo.Update(comment); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		return nil
	}

	if err := s.commentRepo.HardDelete(commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	logger.Info("comment hard-deleted",
		zap.String("comment_id", commentID),
		zap.String("deleted_by", userID),
	)

	return nil
}

// RestoreComment clears the tombstone, making the comment visible again with
// its original content. Allowed for the author or a moderator.
func (s *commentService) RestoreComment(userID, commentID string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, &NotFoundError{Resource: "comment"}
	}

	if err := s.authorizeModeration(userID, comment); err != nil {
		return nil, err
	}

	if !comment.Deleted {
		return nil, fmt.Errorf("comment is not deleted: %w", ErrStateConflict)
	}

	comment.Restore()
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to restore comment: %w", err)
	}

	return comment, nil
}

// GetCommentCount counts non-deleted comments on a post
func (s *commentService) GetCommentCount(postID string) (int64, error) {
	return s.commentRepo.CountByPostID(postID)
}

// authorizeModeration is the single owner-or-moderator gate shared by delete
// and restore.
func (s *commentService) authorizeModeration(userID string, comment *model.Comment) error {
	if comment.UserID == userID {
		return nil
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return &NotFoundError{Resource: "user"}
	}
	if !user.CanModerate() {
		return &AuthorizationError{Message: "you do not have permission to moderate this comment"}
	}
	return nil
}
