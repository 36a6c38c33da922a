package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// editedGracePeriod is how long after creation an edit still counts as an
// initial correction rather than a real edit.
const editedGracePeriod = 60 * time.Second

type Comment struct {
	ID          string     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PostID      string     `gorm:"type:uuid;not null;index:idx_comments_post_parent;references:posts(id)" json:"post_id"`
	UserID      string     `gorm:"type:uuid;not null;index;references:users(id)" json:"user_id"`
	ParentID    *string    `gorm:"type:uuid;index:idx_comments_post_parent;references:comments(id)" json:"parent_id,omitempty"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Edited      bool       `gorm:"default:false;not null" json:"edited"`
	Deleted     bool       `gorm:"default:false;not null;index" json:"deleted"`
	DeletedByID *string    `gorm:"type:uuid" json:"deleted_by,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User    User      `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Parent  *Comment  `gorm:"foreignKey:ParentID;references:ID" json:"-"`
	Replies []Comment `gorm:"foreignKey:ParentID;references:ID" json:"replies,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Comment) TableName() string {
	return "comments"
}

// IsEdited reports whether the comment should be shown as edited. Edits made
// within the grace period after creation are treated as typo fixes.
func (c *Comment) IsEdited() bool {
	return c.Edited && c.UpdatedAt.Sub(c.CreatedAt) > editedGracePeriod
}

// SoftDelete marks the comment as deleted without removing the row, keeping
// the reply thread intact.
func (c *Comment) SoftDelete(deletedBy string) {
	now := time.Now()
	c.Deleted = true
	c.DeletedByID = &deletedBy
	c.DeletedAt = &now
}

// Restore clears the soft-delete tombstone.
func (c *Comment) Restore() {
	c.Deleted = false
	c.DeletedByID = nil
	c.DeletedAt = nil
}

// MarshalJSON adds the derived is_edited field
func (c *Comment) MarshalJSON() ([]byte, error) {
	type Alias Comment
	return json.Marshal(&struct {
		*Alias
		IsEdited bool `json:"is_edited"`
	}{
		Alias:    (*Alias)(c),
		IsEdited: c.IsEdited(),
	})
}
