package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/mentora-inc/mentora/internal/shared/constants"
)

// SubscriptionEventModel is the persistence model for the append-only
// subscription audit log. Rows are only ever inserted.
type SubscriptionEventModel struct {
	ID             uint   `gorm:"primarykey"`
	SID            string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: evt_xxx"`
	SubscriptionID uint   `gorm:"not null;index:idx_subscription_created,priority:1"`
	EventType      string `gorm:"not null;size:30"`
	Payload        datatypes.JSON
	CreatedAt      time.Time `gorm:"not null;index:idx_subscription_created,priority:2"`
}

func (SubscriptionEventModel) TableName() string {
	return constants.TableSubscriptionEvents
}
