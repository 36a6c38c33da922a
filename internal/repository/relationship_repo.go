package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"socialnet/internal/model"
	"socialnet/internal/util"

	"gorm.io/gorm"
)

type RelationshipRepository interface {
	Create(relationship *model.Relationship) error
	FindByID(id string) (*model.Relationship, error)
	FindByPair(userID1, userID2 string) (*model.Relationship, error)
	FindByUserID(userID string) ([]*model.Relationship, error)
	FindPendingByReceiverID(receiverID string) ([]*model.Relationship, error)
	FindAcceptedByUserID(userID string) ([]*model.Relationship, error)
	ExistsAcceptedByPair(userID1, userID2 string) (bool, error)
	Update(relationship *model.Relationship) error
	Delete(id string) error
	CountPendingByReceiverID(receiverID string) (int64, error)
}

type relationshipRepository struct {
	db    *gorm.DB
	redis *util.RedisClient
}

const (
	relationshipCachePrefix         = "relationship:"
	relationshipByUserCachePrefix   = "relationship:user:"
	relationshipPendingCachePrefix  = "relationship:pending:"
	relationshipAcceptedCachePrefix = "relationship:accepted:"
	relationshipCountCachePrefix    = "relationship:count:"
	relationshipCacheExpiration     = 15 * time.Minute
)

func NewRelationshipRepository(db *gorm.DB, redis *util.RedisClient) RelationshipRepository {
	return &relationshipRepository{
		db:    db,
		redis: redis,
	}
}

// Create inserts a new relationship row. The unique index on pair_key rejects
// a second row for the same unordered pair regardless of direction; callers
// treat gorm.ErrDuplicatedKey as "somebody else won the race".
func (r *relationshipRepository) Create(relationship *model.Relationship) error {
	if err := r.db.Create(relationship).Error; err != nil {
		return err
	}

	r.invalidateForPair(relationship.SenderID, relationship.ReceiverID)
	return nil
}

// FindByID finds a relationship by ID
func (r *relationshipRepository) FindByID(id string) (*model.Relationship, error) {
	if r.redis != nil {
		cached, err := r.getFromCache(relationshipCachePrefix + id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var relationship model.Relationship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("id = ?", id).First(&relationship).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&relationship); err == nil {
			r.redis.Set(relationshipCachePrefix+relationship.ID, string(data), relationshipCacheExpiration)
		}
	}

	return &relationship, nil
}

// FindByPair finds the relationship between two users, whichever way it was
// sent. The canonical pair key makes one lookup cover both directions.
func (r *relationshipRepository) FindByPair(userID1, userID2 string) (*model.Relationship, error) {
	var relationship model.Relationship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("pair_key = ?", model.PairKey(userID1, userID2)).
		First(&relationship).Error
	if err != nil {
		return nil, err
	}
	return &relationship, nil
}

// FindByUserID finds all relationships involving a user
func (r *relationshipRepository) FindByUserID(userID string) ([]*model.Relationship, error) {
	if r.redis != nil {
		cached, err := r.getListFromCache(relationshipByUserCachePrefix + userID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var relationships []*model.Relationship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&relationships).Error
	if err != nil {
		return nil, err
	}

	r.cacheList(relationshipByUserCachePrefix+userID, relationships)
	return relationships, nil
}

// FindPendingByReceiverID finds pending requests addressed to a user.
// Requests the user sent are not part of this query.
func (r *relationshipRepository) FindPendingByReceiverID(receiverID string) ([]*model.Relationship, error) {
	if r.redis != nil {
		cached, err := r.getListFromCache(relationshipPendingCachePrefix + receiverID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var relationships []*model.Relationship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("receiver_id = ? AND status = ?", receiverID, model.RelationshipStatusPending).
		Order("created_at DESC").
		Find(&relationships).Error
	if err != nil {
		return nil, err
	}

	r.cacheList(relationshipPendingCachePrefix+receiverID, relationships)
	return relationships, nil
}

// FindAcceptedByUserID finds accepted relationships for a user in either role
func (r *relationshipRepository) FindAcceptedByUserID(userID string) ([]*model.Relationship, error) {
	if r.redis != nil {
		cached, err := r.getListFromCache(relationshipAcceptedCachePrefix + userID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var relationships []*model.Relationship
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?",
			userID, userID, model.RelationshipStatusAccepted).
		Order("updated_at DESC").
		Find(&relationships).Error
	if err != nil {
		return nil, err
	}

	r.cacheList(relationshipAcceptedCachePrefix+userID, relationships)
	return relationships, nil
}

// ExistsAcceptedByPair checks for an accepted relationship in either direction
func (r *relationshipRepository) ExistsAcceptedByPair(userID1, userID2 string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Relationship{}).
		Where("pair_key = ? AND status = ?", model.PairKey(userID1, userID2), model.RelationshipStatusAccepted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a relationship
func (r *relationshipRepository) Update(relationship *model.Relationship) error {
	if err := r.db.Save(relationship).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(relationshipCachePrefix + relationship.ID)
	}
	r.invalidateForPair(relationship.SenderID, relationship.ReceiverID)
	return nil
}

// Delete removes the relationship row entirely (reject and unfriend paths)
func (r *relationshipRepository) Delete(id string) error {
	var relationship model.Relationship
	if err := r.db.Where("id = ?", id).First(&relationship).Error; err != nil {
		return err
	}

	if err := r.db.Delete(&relationship).Error; err != nil {
		return err
	}

	if r.redis != nil {
		r.redis.Delete(relationshipCachePrefix + id)
	}
	r.invalidateForPair(relationship.SenderID, relationship.ReceiverID)
	return nil
}

// CountPendingByReceiverID counts pending requests addressed to a user
func (r *relationshipRepository) CountPendingByReceiverID(receiverID string) (int64, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(relationshipCountCachePrefix + receiverID)
		if err == nil {
			var count int64
			if _, err := fmt.Sscanf(cached, "%d", &count); err == nil {
				return count, nil
			}
		}
	}

	var count int64
	err := r.db.Model(&model.Relationship{}).
		Where("receiver_id = ? AND status = ?", receiverID, model.RelationshipStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	if r.redis != nil {
		r.redis.Set(relationshipCountCachePrefix+receiverID, fmt.Sprintf("%d", count), relationshipCacheExpiration)
	}

	return count, nil
}

// Cache helpers

func (r *relationshipRepository) cacheList(key string, relationships []*model.Relationship) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(relationships)
	if err != nil {
		return
	}
	r.redis.Set(key, string(data), relationshipCacheExpiration)
}

func (r *relationshipRepository) getFromCache(key string) (*model.Relationship, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var relationship model.Relationship
	if err := json.Unmarshal([]byte(cached), &relationship); err != nil {
		return nil, err
	}
	return &relationship, nil
}

func (r *relationshipRepository) getListFromCache(key string) ([]*model.Relationship, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis not available")
	}

	cached, err := r.redis.Get(key)
	if err != nil {
		return nil, err
	}

	var relationships []*model.Relationship
	if err := json.Unmarshal([]byte(cached), &relationships); err != nil {
		return nil, err
	}
	return relationships, nil
}

// invalidateForPair drops every per-user derived list for both participants
func (r *relationshipRepository) invalidateForPair(senderID, receiverID string) {
	if r.redis == nil {
		return
	}
	for _, userID := range []string{senderID, receiverID} {
		r.redis.Delete(relationshipByUserCachePrefix + userID)
		r.redis.Delete(relationshipPendingCachePrefix + userID)
		r.redis.Delete(relationshipAcceptedCachePrefix + userID)
		r.redis.Delete(relationshipCountCachePrefix + userID)
	}
}
