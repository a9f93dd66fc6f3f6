package model

import (
	"time"

	"gorm.io/datatypes"
)

// QueuedMessageModel is the GORM-specific struct for the 'queued_messages' table.
// The composite index serves both the per-subscription drain and its ordering.
type QueuedMessageModel struct {
	ID             int64          `gorm:"primaryKey;autoIncrement"`
	SubscriptionID string         `gorm:"type:text;not null;index:idx_queued_messages_subscription_created,priority:1"`
	Payload        datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt      time.Time      `gorm:"not null;index;index:idx_queued_messages_subscription_created,priority:2"`
}

// TableName explicitly sets the table name for GORM.
func (QueuedMessageModel) TableName() string {
	return "queued_messages"
}
