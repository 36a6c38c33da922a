package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID         string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;uniqueIndex;references:users(id)" json:"user_id"`
	Bio        *string   `gorm:"type:text" json:"bio,omitempty"`
	Website    *string   `gorm:"type:varchar(500)" json:"website,omitempty"`
	Location   *string   `gorm:"type:varchar(255)" json:"location,omitempty"`
	PictureURL *string   `gorm:"type:text" json:"picture_url,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationship
	User User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Profile) TableName() string {
	return "profiles"
}
