package repository

import (
	"time"

	"socialnet/internal/model"
	"socialnet/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReactionRepository interface {
	Upsert(reaction *model.Reaction) error
	FindByUserAndPost(userID, postID string) (*model.Reaction, error)
	FindByPostID(postID string) ([]*model.Reaction, error)
	DeleteByUserAndPost(userID, postID string) (bool, error)
	CountsByPostID(postID string) (map[string]int64, error)
}

type reactionRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	reactionCountsCachePrefix = "reaction:counts:"
	reactionCacheExpiration   = 10 * time.Minute
)

func NewReactionRepository(db *gorm.DB, redis *util.RedisClient) ReactionRepository {
	return &reactionRepository{
		db:    db,
		redis: redis,
	}
}

// Upsert creates the (user, post) reaction row or overwrites its kind. The
// conflict target is the composite unique index, so concurrent requests for
// the same pair can never produce two rows.
func (r *reactionRepository) Upsert(reaction *model.Reaction) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reaction", "updated_at"}),
	}).Create(reaction).Error
	if err != nil {
		return err
	}

	r.invalidateCountsCache(reaction.PostID)
	return nil
}

// FindByUserAndPost finds a user's reaction to a post, if any
func (r *reactionRepository) FindByUserAndPost(userID, postID string) (*model.Reaction, error) {
	var reaction model.Reaction
	err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// FindByPostID returns all reactions to a post, newest first
func (r *reactionRepository) FindByPostID(postID string) ([]*model.Reaction, error) {
	var reactions []*model.Reaction
	err := r.db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	return reactions, nil
}

// DeleteByUserAndPost removes the reaction row and reports whether one
// actually existed.
func (r *reactionRepository) DeleteByUserAndPost(userID, postID string) (bool, error) {
	result := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.Reaction{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	r.invalidateCountsCache(postID)
	return true, nil
}

// CountsByPostID groups the ledger rows by kind. Counts are derived, never
// stored, so they cannot drift from the ledger.
func (r *reactionRepository) CountsByPostID(postID string) (map[string]int64, error) {
	var rows []struct {
		Reaction string
		Count    int64
	}
	err := r.db.Model(&model.Reaction{}).
		Select("reaction, count(*) as count").
		Where("post_id = ?", postID).
		Group("reaction").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Reaction] = row.Count
	}
	return counts, nil
}

func (r *reactionRepository) invalidateCountsCache(postID string) {
	if r.redis == nil {
		return
	}
	r.redis.Delete(reactionCountsCachePrefix + postID)
}
