package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/mappers"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/db"
	"github.com/mentora-inc/mentora/internal/shared/logger"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PlanMapper
	logger logger.Interface
}

func NewPlanRepository(gdb *gorm.DB, logger logger.Interface) billing.PlanRepository {
	return &PlanRepositoryImpl{
		db:     gdb,
		mapper: mappers.NewPlanMapper(),
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *billing.Plan) error {
	model, err := r.mapper.ToModel(plan)
	if err != nil {
		r.logger.Errorw("failed to map plan entity to model", "error", err)
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create plan in database", "error", err, "code", model.Code)
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if err := plan.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set plan ID: %w", err)
	}

	r.logger.Infow("plan created", "id", model.ID, "code", model.Code)
	return nil
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *billing.Plan) error {
	model, err := r.mapper.ToModel(plan)
	if err != nil {
		r.logger.Errorw("failed to map plan entity to model", "id", plan.ID(), "error", err)
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(model).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"student_limit": model.StudentLimit,
			"price_monthly": model.PriceMonthly,
			"price_yearly":  model.PriceYearly,
			"currency":      model.Currency,
			"is_active":     model.IsActive,
			"trial_days":    model.TrialDays,
			"features":      model.Features,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update plan", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}

	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*billing.Plan, error) {
	var model models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *PlanRepositoryImpl) GetBySID(ctx context.Context, sid string) (*billing.Plan, error) {
	var model models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *PlanRepositoryImpl) GetByCode(ctx context.Context, code string) (*billing.Plan, error) {
	var model models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Where("code = ?", code).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan by code", "code", code, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *PlanRepositoryImpl) List(ctx context.Context, filter billing.PlanFilter) ([]*billing.Plan, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count plans", "error", err)
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var modelList []*models.PlanModel
	if err := query.Order("student_limit ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list plans", "error", err)
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	entities, err := r.mapper.ToEntities(modelList)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to map plans: %w", err)
	}
	return entities, total, nil
}
