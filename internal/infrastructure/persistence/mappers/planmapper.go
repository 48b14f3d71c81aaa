package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/mapper"
)

type PlanMapper interface {
	ToEntity(model *models.PlanModel) (*billing.Plan, error)
	ToModel(entity *billing.Plan) (*models.PlanModel, error)
	ToEntities(models []*models.PlanModel) ([]*billing.Plan, error)
}

type PlanMapperImpl struct{}

func NewPlanMapper() PlanMapper {
	return &PlanMapperImpl{}
}

func (m *PlanMapperImpl) ToEntity(model *models.PlanModel) (*billing.Plan, error) {
	if model == nil {
		return nil, nil
	}

	priceMonthly, err := decimal.NewFromString(model.PriceMonthly)
	if err != nil {
		return nil, fmt.Errorf("invalid monthly price %q: %w", model.PriceMonthly, err)
	}
	priceYearly, err := decimal.NewFromString(model.PriceYearly)
	if err != nil {
		return nil, fmt.Errorf("invalid yearly price %q: %w", model.PriceYearly, err)
	}

	var features map[string]interface{}
	if model.Features != nil {
		if err := json.Unmarshal(model.Features, &features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
	}

	entity, err := billing.ReconstructPlan(
		model.ID,
		model.SID,
		model.Code,
		model.Name,
		model.StudentLimit,
		priceMonthly,
		priceYearly,
		model.Currency,
		model.IsActive,
		model.TrialDays,
		features,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct plan entity: %w", err)
	}
	return entity, nil
}

func (m *PlanMapperImpl) ToModel(entity *billing.Plan) (*models.PlanModel, error) {
	if entity == nil {
		return nil, nil
	}

	var featuresJSON datatypes.JSON
	if features := entity.Features(); len(features) > 0 {
		data, err := json.Marshal(features)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal features: %w", err)
		}
		featuresJSON = data
	}

	return &models.PlanModel{
		ID:           entity.ID(),
		SID:          entity.SID(),
		Code:         entity.Code(),
		Name:         entity.Name(),
		StudentLimit: entity.StudentLimit(),
		PriceMonthly: entity.PriceMonthly().StringFixed(2),
		PriceYearly:  entity.PriceYearly().StringFixed(2),
		Currency:     entity.Currency(),
		IsActive:     entity.IsActive(),
		TrialDays:    entity.TrialDays(),
		Features:     featuresJSON,
		Version:      entity.Version(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}, nil
}

func (m *PlanMapperImpl) ToEntities(modelList []*models.PlanModel) ([]*billing.Plan, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.PlanModel) uint { return model.ID })
}
