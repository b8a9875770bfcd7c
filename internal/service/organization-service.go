package service

import (
	"context"

	"access_service/internal/apperr"
	"access_service/internal/models"
	"access_service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type OrganizationService struct {
	orgRepo *repository.OrganizationRepository
}

func NewOrganizationService(repos *repository.Repositories) *OrganizationService {
	return &OrganizationService{
		orgRepo: repos.OrganizationRepository,
	}
}

func (s *OrganizationService) CreateOrganization(ctx context.Context, organizationID, theme string) (*models.Organization, error) {
	if organizationID == "" {
		return nil, apperr.Validation("organizationId", "organization id is required")
	}

	org := &models.Organization{
		OrganizationID: organizationID,
		Theme:          theme,
	}
	return s.orgRepo.Create(ctx, org)
}

func (s *OrganizationService) UpdateTheme(ctx context.Context, id bson.ObjectID, theme string) (*models.Organization, error) {
	org, err := s.orgRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	org.Theme = theme
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *OrganizationService) DeleteOrganization(ctx context.Context, id bson.ObjectID) error {
	return s.orgRepo.SoftDelete(ctx, id)
}

func (s *OrganizationService) GetOrganizationByID(ctx context.Context, id bson.ObjectID) (*models.Organization, error) {
	return s.orgRepo.FindActiveByID(ctx, id)
}

func (s *OrganizationService) GetAllOrganizations(ctx context.Context) ([]*models.Organization, error) {
	return s.orgRepo.FindAll(ctx)
}
