package migration

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/id"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type seedPlan struct {
	code         string
	name         string
	studentLimit int
	priceMonthly string
	priceYearly  string
	trialDays    int
}

var defaultPlans = []seedPlan{
	{code: "STARTER_10", name: "Starter", studentLimit: 10, priceMonthly: "299.00", priceYearly: "2990.00", trialDays: 7},
	{code: "PRO_20", name: "Pro", studentLimit: 20, priceMonthly: "499.00", priceYearly: "4990.00", trialDays: 7},
	{code: "PREMIUM_30", name: "Premium", studentLimit: 30, priceMonthly: "699.00", priceYearly: "6990.00", trialDays: 7},
}

// SeedPlans inserts the default plan catalog. Idempotent: plans whose code
// already exists are left untouched, so operator edits survive restarts.
func SeedPlans(db *gorm.DB) error {
	now := time.Now().UTC()

	for _, p := range defaultPlans {
		var count int64
		if err := db.Model(&models.PlanModel{}).Where("code = ?", p.code).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check plan %s: %w", p.code, err)
		}
		if count > 0 {
			continue
		}

		sid, err := id.NewPlanID()
		if err != nil {
			return fmt.Errorf("failed to generate plan id: %w", err)
		}
		model := &models.PlanModel{
			SID:          sid,
			Code:         p.code,
			Name:         p.name,
			StudentLimit: p.studentLimit,
			PriceMonthly: p.priceMonthly,
			PriceYearly:  p.priceYearly,
			Currency:     "TRY",
			IsActive:     true,
			TrialDays:    p.trialDays,
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.Create(model).Error; err != nil {
			return fmt.Errorf("failed to seed plan %s: %w", p.code, err)
		}
		logger.Info("seeded plan", "code", p.code, "student_limit", p.studentLimit)
	}

	return nil
}
