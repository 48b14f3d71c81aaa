package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/mentora-inc/mentora/internal/domain/billing"
	vo "github.com/mentora-inc/mentora/internal/domain/billing/valueobjects"
	"github.com/mentora-inc/mentora/internal/infrastructure/persistence/models"
	"github.com/mentora-inc/mentora/internal/shared/mapper"
)

type SubscriptionEventMapper interface {
	ToEntity(model *models.SubscriptionEventModel) (*billing.SubscriptionEvent, error)
	ToModel(entity *billing.SubscriptionEvent) (*models.SubscriptionEventModel, error)
	ToEntities(models []*models.SubscriptionEventModel) ([]*billing.SubscriptionEvent, error)
}

type SubscriptionEventMapperImpl struct{}

func NewSubscriptionEventMapper() SubscriptionEventMapper {
	return &SubscriptionEventMapperImpl{}
}

func (m *SubscriptionEventMapperImpl) ToEntity(model *models.SubscriptionEventModel) (*billing.SubscriptionEvent, error) {
	if model == nil {
		return nil, nil
	}

	eventType, err := vo.ParseEventType(model.EventType)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if model.Payload != nil {
		if err := json.Unmarshal(model.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	entity, err := billing.ReconstructSubscriptionEvent(
		model.ID,
		model.SID,
		model.SubscriptionID,
		eventType,
		payload,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct event entity: %w", err)
	}
	return entity, nil
}

func (m *SubscriptionEventMapperImpl) ToModel(entity *billing.SubscriptionEvent) (*models.SubscriptionEventModel, error) {
	if entity == nil {
		return nil, nil
	}

	var payloadJSON datatypes.JSON
	if payload := entity.Payload(); len(payload) > 0 {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		payloadJSON = data
	}

	return &models.SubscriptionEventModel{
		ID:             entity.ID(),
		SID:            entity.SID(),
		SubscriptionID: entity.SubscriptionID(),
		EventType:      entity.EventType().String(),
		Payload:        payloadJSON,
		CreatedAt:      entity.CreatedAt(),
	}, nil
}

func (m *SubscriptionEventMapperImpl) ToEntities(modelList []*models.SubscriptionEventModel) ([]*billing.SubscriptionEvent, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.SubscriptionEventModel) uint { return model.ID })
}
