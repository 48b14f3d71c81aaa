package mappers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/mapper"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*billing.Subscription, error)
	ToModel(entity *billing.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*billing.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*billing.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status, err := vo.ParseSubscriptionStatus(model.Status)
	if err != nil {
		return nil, err
	}
	period, err := vo.ParseBillingPeriod(model.BillingPeriod)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(model.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", model.Amount, err)
	}

	entity, err := billing.ReconstructSubscription(
		model.ID,
		model.SID,
		model.TeacherID,
		model.PlanID,
		status,
		period,
		amount,
		model.Currency,
		model.CurrentPeriodStart,
		model.CurrentPeriodEnd,
		model.TrialEnd,
		model.StudentLimitSnapshot,
		model.CancelAtPeriodEnd,
		model.AutoRenew,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}
	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *billing.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.SubscriptionModel{
		ID:                   entity.ID(),
		SID:                  entity.SID(),
		TeacherID:            entity.TeacherID(),
		PlanID:               entity.PlanID(),
		Status:               entity.Status().String(),
		BillingPeriod:        entity.BillingPeriod().String(),
		Amount:               entity.Amount().StringFixed(2),
		Currency:             entity.Currency(),
		CurrentPeriodStart:   entity.CurrentPeriodStart(),
		CurrentPeriodEnd:     entity.CurrentPeriodEnd(),
		TrialEnd:             entity.TrialEnd(),
		StudentLimitSnapshot: entity.StudentLimitSnapshot(),
		CancelAtPeriodEnd:    entity.CancelAtPeriodEnd(),
		AutoRenew:            entity.AutoRenew(),
		Version:              entity.Version(),
		CreatedAt:            entity.CreatedAt(),
		UpdatedAt:            entity.UpdatedAt(),
	}, nil
}

func (m *SubscriptionMapperImpl) ToEntities(modelList []*models.SubscriptionModel) ([]*billing.Subscription, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.SubscriptionModel) uint { return model.ID })
}
