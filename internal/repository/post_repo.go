package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"socialnet/internal/model"
	"socialnet/internal/util"

	"gorm.io/gorm"
)

type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id string) (*model.Post, error)
	FindAll(limit, offset int) ([]*model.Post, error)
	FindByUserID(userID string, limit, offset int) ([]*model.Post, error)
	Search(query string, limit, offset int) ([]*model.Post, error)
	Update(post *model.Post) error
	Delete(id string) error
	CountByUserID(userID string) (int64, error)

	CreateAttachment(attachment *model.Attachment) error
	UpdateAttachment(attachment *model.Attachment) error
	DeleteAttachmentsByPostID(postID string) error
}

type postRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	postCachePrefix     = "post:"
	postCacheExpiration = 10 * time.Minute
)

func NewPostRepository(db *gorm.DB, redis *util.RedisClient) PostRepository {
	return &postRepository{
		db:    db,
		redis: redis,
	}
}

// Create creates a new post
func (r *postRepository) Create(post *model.Post) error {
	return r.db.Create(post).Error
}

// FindByID finds a post with its author and attachments
func (r *postRepository) FindByID(id string) (*model.Post, error) {
	if r.redis != nil {
		cached, err := r.getFromCache(postCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var post model.Post
	err := r.db.Preload("User").Preload("Attachments").
		Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&post); err == nil {
			r.redis.Set(postCachePrefix+post.ID, string(data), postCacheExpiration)
		}
	}

	return &post, nil
}

// FindAll returns posts newest first
func (r *postRepository) FindAll(limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.Preload("User").Preload("Attachments").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// FindByUserID returns a user's posts newest first
func (r *postRepository) FindByUserID(userID string, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.Preload("User").Preload("Attachments").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Search matches title and content by substring, case-insensitive
func (r *postRepository) Search(query string, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	pattern := "%" + query + "%"
	err := r.db.Preload("User").Preload("Attachments").
		Where("title ILIKE ? OR content ILIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update updates a post
func (r *postRepository) Update(post *model.Post) error {
	if err := r.db.Save(post).Error; err != nil {
		return err
	}

	r.invalidatePostCache(post.ID)
	return nil
}

// Delete removes a post with its attachments, comments and reactions
func (r *postRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	r.invalidatePostCache(id)
	return nil
}

// CountByUserID counts a user's posts
func (r *postRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Post{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CreateAttachment persists a single attachment row
func (r *postRepository) CreateAttachment(attachment *model.Attachment) error {
	if err := r.db.Create(attachment).Error; err != nil {
		return err
	}

	r.invalidatePostCache(attachment.PostID)
	return nil
}

// UpdateAttachment updates an attachment (thumbnail backfill)
func (r *postRepository) UpdateAttachment(attachment *model.Attachment) error {
	if err := r.db.Save(attachment).Error; err != nil {
		return err
	}

	r.invalidatePostCache(attachment.PostID)
	return nil
}

// DeleteAttachmentsByPostID drops the post's whole attachment set
func (r *postRepository) DeleteAttachmentsByPostID(postID string) error {
	if err := r.db.Where("post_id = ?", postID).Delete(&model.Attachment{}).Error; err != nil {
		return err
	}

	r.invalidatePostCache(postID)
	return nil
}

func (r *postRepository) getFromCache(key string) (*model.Post, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var post model.Post
	if err := json.Unmarshal([]byte(cached), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) invalidatePostCache(id string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(postCachePrefix + id)
}
