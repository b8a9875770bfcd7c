package service

import (
	"context"

	"access_service/internal/apperr"
	"access_service/internal/models"
	"access_service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ComponentService struct {
	componentRepo *repository.ComponentRepository
	sidebarRepo   *repository.SidebarRepository
}

func NewComponentService(repos *repository.Repositories) *ComponentService {
	return &ComponentService{
		componentRepo: repos.ComponentRepository,
		sidebarRepo:   repos.SidebarRepository,
	}
}

func (s *ComponentService) CreateComponent(ctx context.Context, name, description string, usageLocation, createdBy bson.ObjectID) (*models.DynamicComponent, error) {
	if name == "" {
		return nil, apperr.Validation("componentName", "component name is required")
	}

	if !usageLocation.IsZero() {
		if _, err := s.sidebarRepo.FindActiveByID(ctx, usageLocation); err != nil {
			return nil, err
		}
	}

	component := &models.DynamicComponent{
		ComponentName: name,
		Description:   description,
		Status:        models.ComponentStatusActive,
		UsageLocation: usageLocation,
		CreatedBy:     createdBy,
	}
	return s.componentRepo.Create(ctx, component)
}

func (s *ComponentService) UpdateComponent(ctx context.Context, id bson.ObjectID, description string, usageLocation, updatedBy bson.ObjectID) (*models.DynamicComponent, error) {
	component, err := s.componentRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if description != "" {
		component.Description = description
	}
	if !usageLocation.IsZero() {
		if _, err := s.sidebarRepo.FindActiveByID(ctx, usageLocation); err != nil {
			return nil, err
		}
		component.UsageLocation = usageLocation
	}
	component.UpdatedBy = updatedBy

	if err := s.componentRepo.Update(ctx, component); err != nil {
		return nil, err
	}
	return component, nil
}

func (s *ComponentService) SetStatus(ctx context.Context, id bson.ObjectID, status string, updatedBy bson.ObjectID) (*models.DynamicComponent, error) {
	switch status {
	case models.ComponentStatusActive, models.ComponentStatusInactive, models.ComponentStatusArchived:
	default:
		return nil, apperr.Validation("status", "status must be one of active, inactive, archived")
	}

	component, err := s.componentRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	component.Status = status
	component.UpdatedBy = updatedBy
	if err := s.componentRepo.Update(ctx, component); err != nil {
		return nil, err
	}
	return component, nil
}

func (s *ComponentService) DeleteComponent(ctx context.Context, id, deletedBy bson.ObjectID) error {
	return s.componentRepo.SoftDelete(ctx, id, deletedBy)
}

// RestoreComponent brings a soft-deleted component back; the repository
// refuses when an active component has since taken the same name.
func (s *ComponentService) RestoreComponent(ctx context.Context, id, restoredBy bson.ObjectID) (*models.DynamicComponent, error) {
	return s.componentRepo.Restore(ctx, id, restoredBy)
}

func (s *ComponentService) GetComponentByID(ctx context.Context, id bson.ObjectID) (*models.DynamicComponent, error) {
	return s.componentRepo.FindActiveByID(ctx, id)
}

func (s *ComponentService) GetAllComponents(ctx context.Context) ([]*models.DynamicComponent, error) {
	return s.componentRepo.FindAllActive(ctx)
}

func (s *ComponentService) GetComponentsByModule(ctx context.Context, moduleID bson.ObjectID) ([]*models.DynamicComponent, error) {
	return s.componentRepo.FindByUsageLocation(ctx, moduleID)
}
