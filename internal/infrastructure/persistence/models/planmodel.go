package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/shared/constants"
)

// PlanModel is the persistence model for subscription plans.
// This is the anti-corruption layer between domain and database.
type PlanModel struct {
	ID           uint   `gorm:"primarykey"`
	SID          string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: plan_xxx"`
	Code         string `gorm:"uniqueIndex;not null;size:50"`
	Name         string `gorm:"not null;size:100"`
	StudentLimit int    `gorm:"not null"`
	PriceMonthly string `gorm:"not null;type:decimal(10,2)"`
	PriceYearly  string `gorm:"not null;type:decimal(10,2)"`
	Currency     string `gorm:"not null;size:3;default:TRY"`
	IsActive     bool   `gorm:"not null;default:true;index:idx_plan_active"`
	TrialDays    int    `gorm:"not null;default:0"`
	Features     datatypes.JSON
	Version      int `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (PlanModel) TableName() string {
	return constants.TablePlans
}

func (p *PlanModel) BeforeCreate(tx *gorm.DB) error {
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}
