package repository

import (
	"fmt"
	"time"

	"socialnet/internal/model"
	"socialnet/internal/util"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id string) (*model.Comment, error)
	FindTopLevelByPostID(postID string, includeDeleted bool) ([]*model.Comment, error)
	FindRepliesByParentID(parentID string, limit, offset int) ([]*model.Comment, error)
	FindByUserID(userID string, includeDeleted bool) ([]*model.Comment, error)
	Update(comment *model.Comment) error
	HardDelete(id string) error
	CountByPostID(postID string) (int64, error)
	CountRepliesByParentID(parentID string) (int64, error)
}

type commentRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	commentCountCachePrefix = "comment:count:"
	commentCacheExpiration  = 15 * time.Minute
)

func NewCommentRepository(db *gorm.DB, redis *util.RedisClient) CommentRepository {
	return &commentRepository{
		db:    db,
		redis: redis,
	}
}

// Create creates a new comment and invalidates the post's count cache
func (r *commentRepository) Create(comment *model.Comment) error {
	if err := r.db.Create(comment).Error; err != nil {
		return err
	}

	r.invalidateCountCache(comment.PostID)
	return nil
}

// FindByID finds a comment by ID, deleted or not
func (r *commentRepository) FindByID(id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").
		Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindTopLevelByPostID returns the parent-less comments of a post, each with
// one eagerly loaded level of non-deleted replies. Deeper reply levels are
// fetched per comment via FindRepliesByParentID.
func (r *commentRepository) FindTopLevelByPostID(postID string, includeDeleted bool) ([]*model.Comment, error) {
	query := r.db.Preload("User").
		Preload("Replies", "deleted = ?", false).
		Preload("Replies.User").
		Where("post_id = ? AND parent_id IS NULL", postID)

	if !includeDeleted {
		query = query.Where("deleted = ?", false)
	}

	var comments []*model.Comment
	err := query.Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// FindRepliesByParentID returns non-deleted replies to a comment
func (r *commentRepository) FindRepliesByParentID(parentID string, limit, offset int) ([]*model.Comment, error) {
	var replies []*model.Comment
	err := r.db.Preload("User").
		Where("parent_id = ? AND deleted = ?", parentID, false).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// FindByUserID returns a user's comments, newest first
func (r *commentRepository) FindByUserID(userID string, includeDeleted bool) ([]*model.Comment, error) {
	query := r.db.Preload("User").Where("user_id = ?", userID)
	if !includeDeleted {
		query = query.Where("deleted = ?", false)
	}

	var comments []*model.Comment
	err := query.Order("created_at DESC").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update updates a comment (edits and tombstone flips both land here)
func (r *commentRepository) Update(comment *model.Comment) error {
	if err := r.db.Save(comment).Error; err != nil {
		return err
	}

	r.invalidateCountCache(comment.PostID)
	return nil
}

// HardDelete removes a comment and its reply subtree in one transaction
func (r *commentRepository) HardDelete(id string) error {
	var comment model.Comment
	if err := r.db.Where("id = ?", id).First(&comment).Error; err != nil {
		return err
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return deleteSubtree(tx, id)
	})
	if err != nil {
		return err
	}

	r.invalidateCountCache(comment.PostID)
	return nil
}

// deleteSubtree removes replies depth-first, then the comment itself
func deleteSubtree(tx *gorm.DB, id string) error {
	var replyIDs []string
	if err := tx.Model(&model.Comment{}).Where("parent_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
		return err
	}
	for _, replyID := range replyIDs {
		if err := deleteSubtree(tx, replyID); err != nil {
			return err
		}
	}
	return tx.Delete(&model.Comment{}, "id = ?", id).Error
}

// CountByPostID counts non-deleted comments on a post
func (r *commentRepository) CountByPostID(postID string) (int64, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(commentCountCachePrefix + postID)
		if err == nil {
			var count int64
			if _, err := fmt.Sscanf(cached, "%d", &count); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("post_id = ? AND deleted = ?", postID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		r.redis.Set(commentCountCachePrefix+postID, fmt.Sprintf("%d", count), commentCacheExpiration)
	}

	return count, nil
}

// CountRepliesByParentID counts non-deleted replies to a comment
func (r *commentRepository) CountRepliesByParentID(parentID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("parent_id = ? AND deleted = ?", parentID, false).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) invalidateCountCache(postID string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(commentCountCachePrefix + postID)
}
