package service

import (
	"context"

	"access_service/internal/apperr"
	"access_service/internal/models"
	"access_service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type SidebarService struct {
	sidebarRepo   *repository.SidebarRepository
	componentRepo *repository.ComponentRepository
}

func NewSidebarService(repos *repository.Repositories) *SidebarService {
	return &SidebarService{
		sidebarRepo:   repos.SidebarRepository,
		componentRepo: repos.ComponentRepository,
	}
}

func (s *SidebarService) CreateModule(ctx context.Context, module *models.SidebarModule) (*models.SidebarModule, error) {
	if module.Name == "" {
		return nil, apperr.Validation("name", "module name is required")
	}
	if module.SidebarName == "" {
		return nil, apperr.Validation("sidebarName", "sidebar group name is required")
	}
	return s.sidebarRepo.Create(ctx, module)
}

func (s *SidebarService) UpdateModule(ctx context.Context, id bson.ObjectID, update *models.SidebarModule) (*models.SidebarModule, error) {
	module, err := s.sidebarRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		module.Name = update.Name
	}
	if update.SidebarName != "" {
		module.SidebarName = update.SidebarName
	}
	if update.Href != "" {
		module.Href = update.Href
	}
	if update.Icon != "" {
		module.Icon = update.Icon
	}
	if update.Children != nil {
		module.Children = update.Children
	}
	if update.Order != 0 {
		module.Order = update.Order
	}

	if err := s.sidebarRepo.Update(ctx, module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *SidebarService) DeleteModule(ctx context.Context, id bson.ObjectID) error {
	return s.sidebarRepo.SoftDelete(ctx, id)
}

func (s *SidebarService) GetModuleByID(ctx context.Context, id bson.ObjectID) (*models.SidebarModule, error) {
	return s.sidebarRepo.FindActiveByID(ctx, id)
}

func (s *SidebarService) GetAllModules(ctx context.Context) ([]*models.SidebarModule, error) {
	return s.sidebarRepo.FindAllActive(ctx)
}
