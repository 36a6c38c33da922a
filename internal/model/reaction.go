package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reaction struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index:idx_reactions_user_post,unique;references:posts(id)" json:"post_id"`
	UserID    string    `gorm:"type:uuid;not null;index:idx_reactions_user_post,unique;references:users(id)" json:"user_id"`
	Reaction  string    `gorm:"type:varchar(20);not null" json:"reaction"` // like, love, dislike, hate
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Reaction) TableName() string {
	return "reactions"
}

// Reaction kind constants
const (
	ReactionLike    = "like"
	ReactionLove    = "love"
	ReactionDislike = "dislike"
	ReactionHate    = "hate"
)

// ValidReaction reports whether the kind is one of the recognized reactions.
func ValidReaction(kind string) bool {
	switch kind {
	case ReactionLike, ReactionLove, ReactionDislike, ReactionHate:
		return true
	}
	return false
}
