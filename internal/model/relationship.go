package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Relationship struct {
	ID         string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SenderID   string    `gorm:"type:uuid;not null;index" json:"sender_id"`
	ReceiverID string    `gorm:"type:uuid;not null;index" json:"receiver_id"`
	PairKey    string    `gorm:"type:varchar(80);not null;uniqueIndex" json:"-"`
	Status     string    `gorm:"type:varchar(20);default:'pending';not null" json:"status"` // pending, accepted, blocked
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Sender   User `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`
	Receiver User `gorm:"foreignKey:ReceiverID;references:ID" json:"receiver,omitempty"`
}

// BeforeCreate hook to generate UUID and the canonical pair key
func (r *Relationship) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.PairKey == "" {
		r.PairKey = PairKey(r.SenderID, r.ReceiverID)
	}
	return nil
}

// TableName specifies the table name
func (Relationship) TableName() string {
	return "relationships"
}

// Relationship status constants
const (
	RelationshipStatusPending  = "pending"
	RelationshipStatusAccepted = "accepted"
	RelationshipStatusBlocked  = "blocked"
)

// PairKey returns the same value regardless of direction, so the unique index
// on it guarantees at most one row per unordered user pair.
func PairKey(userID1, userID2 string) string {
	if userID1 < userID2 {
		return userID1 + ":" + userID2
	}
	return userID2 + ":" + userID1
}

// Involves reports whether the user is a participant of the relationship.
func (r *Relationship) Involves(userID string) bool {
	return r.SenderID == userID || r.ReceiverID == userID
}

// CounterpartID returns the other participant's ID.
func (r *Relationship) CounterpartID(userID string) string {
	if r.SenderID == userID {
		return r.ReceiverID
	}
	return r.SenderID
}
