package model

import (
	"time"
)

// SubscriptionModel is the GORM-specific struct for the 'subscriptions' table.
// Rows are never updated; a subscription is only created or deleted.
type SubscriptionModel struct {
	ID        string    `gorm:"type:text;primaryKey"`
	Endpoint  string    `gorm:"type:text;not null"`
	P256dh    string    `gorm:"type:text;not null"`
	Auth      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`

	Messages []QueuedMessageModel `gorm:"foreignKey:SubscriptionID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
