package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/shared/constants"
)

// SubscriptionModel is the persistence model for teacher subscriptions.
// The unique index on TeacherID enforces one subscription per teacher at
// the storage level; concurrent upserts fall back to an update when the
// insert loses the race.
type SubscriptionModel struct {
	ID                   uint      `gorm:"primarykey"`
	SID                  string    `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: sub_xxx"`
	TeacherID            uint      `gorm:"uniqueIndex;not null"`
	PlanID               uint      `gorm:"not null;index:idx_plan_subscription"`
	Status               string    `gorm:"not null;size:20;index:idx_status"`
	BillingPeriod        string    `gorm:"not null;size:10"`
	Amount               string    `gorm:"not null;type:decimal(10,2)"`
	Currency             string    `gorm:"not null;size:3"`
	CurrentPeriodStart   time.Time `gorm:"not null"`
	CurrentPeriodEnd     time.Time `gorm:"not null;index:idx_period_end"`
	TrialEnd             *time.Time
	StudentLimitSnapshot int  `gorm:"not null"`
	CancelAtPeriodEnd    bool `gorm:"not null;default:false"`
	AutoRenew            bool `gorm:"not null;default:true"`
	Version              int  `gorm:"not null;default:1"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
