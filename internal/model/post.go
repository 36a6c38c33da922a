package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index;references:users(id)" json:"user_id"`
	Title     string    `gorm:"type:varchar(50);not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User        User         `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:PostID;references:ID" json:"attachments,omitempty"`

	// Derived on read, never stored
	ReactionCounts map[string]int64 `gorm:"-" json:"reaction_counts,omitempty"`
	CommentCount   int64            `gorm:"-" json:"comment_count"`
}

// BeforeCreate hook to generate UUID
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Post) TableName() string {
	return "posts"
}

type Attachment struct {
	ID           string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PostID       string    `gorm:"type:uuid;not null;index;references:posts(id)" json:"post_id"`
	FileURL      string    `gorm:"type:text;not null" json:"file_url"`
	FileType     string    `gorm:"type:varchar(10);not null" json:"file_type"` // image, video, other
	ThumbnailURL *string   `gorm:"type:text" json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// BeforeCreate hook to generate UUID
func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Attachment) TableName() string {
	return "attachments"
}

// Attachment file type constants
const (
	FileTypeImage = "image"
	FileTypeVideo = "video"
	FileTypeOther = "other"
)
