package service

import (
	"context"

	"access_service/internal/apperr"
	"access_service/internal/models"
	"access_service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type RoleService struct {
	roleRepo *repository.RoleRepository
}

func NewRoleService(repos *repository.Repositories) *RoleService {
	return &RoleService{
		roleRepo: repos.RoleRepository,
	}
}

func (s *RoleService) CreateRole(ctx context.Context, name string, createdBy bson.ObjectID) (*models.Role, error) {
	if name == "" {
		return nil, apperr.Validation("roleName", "role name is required")
	}

	role := &models.Role{
		RoleName:  name,
		CreatedBy: createdBy,
	}
	return s.roleRepo.Create(ctx, role)
}

func (s *RoleService) RenameRole(ctx context.Context, id bson.ObjectID, name string) (*models.Role, error) {
	if name == "" {
		return nil, apperr.Validation("roleName", "role name is required")
	}

	role, err := s.roleRepo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role.RoleName != name {
		existing, err := s.roleRepo.FindActiveByName(ctx, name, role.CreatedBy)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != role.ID {
			return nil, apperr.Conflict("another role already uses that name")
		}
	}

	role.RoleName = name
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) DeleteRole(ctx context.Context, id bson.ObjectID) error {
	return s.roleRepo.SoftDelete(ctx, id)
}

func (s *RoleService) RestoreRole(ctx context.Context, id bson.ObjectID) (*models.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := s.roleRepo.FindActiveByName(ctx, role.RoleName, role.CreatedBy)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperr.Conflict("an active role already uses that name")
	}

	if err := s.roleRepo.Restore(ctx, id); err != nil {
		return nil, err
	}
	role.IsDeleted = false
	return role, nil
}

func (s *RoleService) GetRoleByID(ctx context.Context, id bson.ObjectID) (*models.Role, error) {
	return s.roleRepo.FindActiveByID(ctx, id)
}

func (s *RoleService) GetRolesByCreator(ctx context.Context, createdBy bson.ObjectID) ([]*models.Role, error) {
	return s.roleRepo.FindByCreator(ctx, createdBy)
}
