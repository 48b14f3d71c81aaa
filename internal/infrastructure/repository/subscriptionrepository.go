package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/mappers"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/db"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(gdb *gorm.DB, logger logger.Interface) billing.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     gdb,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *billing.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "error", err, "teacher_id", model.TeacherID)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := sub.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created", "id", model.ID, "teacher_id", model.TeacherID, "plan_id", model.PlanID)
	return nil
}

// Update writes the full row guarded by the version column. The entity has
// already bumped its version; the WHERE clause matches the previous one, so
// a zero rows-affected result means a concurrent writer won.
func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *billing.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		r.logger.Errorw("failed to map subscription entity to model", "id", sub.ID(), "error", err)
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(model).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"teacher_id":             model.TeacherID,
			"plan_id":                model.PlanID,
			"status":                 model.Status,
			"billing_period":         model.BillingPeriod,
			"amount":                 model.Amount,
			"currency":               model.Currency,
			"current_period_start":   model.CurrentPeriodStart,
			"current_period_end":     model.CurrentPeriodEnd,
			"trial_end":              model.TrialEnd,
			"student_limit_snapshot": model.StudentLimitSnapshot,
			"cancel_at_period_end":   model.CancelAtPeriodEnd,
			"auto_renew":             model.AutoRenew,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return billing.ErrConcurrencyConflict
	}

	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetBySID(ctx context.Context, sid string) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetByTeacherID(ctx context.Context, teacherID uint) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).Where("teacher_id = ?", teacherID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by teacher ID", "teacher_id", teacherID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) List(ctx context.Context, filter billing.SubscriptionFilter) ([]*billing.Subscription, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{})

	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.PlanID != nil {
		query = query.Where("plan_id = ?", *filter.PlanID)
	}
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.BillingPeriod != nil {
		query = query.Where("billing_period = ?", filter.BillingPeriod.String())
	}
	if filter.Expiring != nil {
		query = query.Where("status IN ? AND current_period_end BETWEEN ? AND ?",
			[]string{vo.StatusTrialing.String(), vo.StatusActive.String()},
			filter.Expiring.From, filter.Expiring.Until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count subscriptions", "error", err)
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var modelList []*models.SubscriptionModel
	if err := query.Order("created_at DESC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "error", err)
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to map subscriptions: %w", err)
	}
	return entities, total, nil
}

func (r *SubscriptionRepositoryImpl) FindTrialEnded(ctx context.Context, now time.Time) ([]*billing.Subscription, error) {
	var modelList []*models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND trial_end IS NOT NULL AND trial_end < ?", vo.StatusTrialing.String(), now).
		Order("trial_end ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to find ended trials", "error", err)
		return nil, fmt.Errorf("failed to find ended trials: %w", err)
	}
	return r.mapper.ToEntities(modelList)
}

func (r *SubscriptionRepositoryImpl) FindPeriodEnded(ctx context.Context, now time.Time) ([]*billing.Subscription, error) {
	var modelList []*models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND current_period_end < ?", vo.StatusActive.String(), now).
		Order("current_period_end ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to find ended periods", "error", err)
		return nil, fmt.Errorf("failed to find ended periods: %w", err)
	}
	return r.mapper.ToEntities(modelList)
}
