package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"access_service/internal/apperr"
	"access_service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type RoleRepository struct {
	collection *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		collection: db.Collection("Role"),
	}
}

func (r *RoleRepository) Create(ctx context.Context, role *models.Role) (*models.Role, error) {
	existing, err := r.FindActiveByName(ctx, role.RoleName, role.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("error checking existing role: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict(fmt.Sprintf("role with name '%s' already exists", role.RoleName))
	}

	if role.ID.IsZero() {
		role.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if role.CreatedAt == 0 {
		role.CreatedAt = currentTime
	}
	role.UpdatedAt = currentTime

	_, err = r.collection.InsertOne(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to insert role: %w", err)
	}

	return role, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *models.Role) error {
	role.UpdatedAt = int(time.Now().Unix())

	filter := bson.M{"_id": role.ID}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": role})
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

func (r *RoleRepository) SoftDelete(ctx context.Context, id bson.ObjectID) error {
	filter := bson.M{"_id": id, "isDeleted": false}
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": int(time.Now().Unix())}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("role", id.Hex())
	}
	return nil
}

func (r *RoleRepository) Restore(ctx context.Context, id bson.ObjectID) error {
	filter := bson.M{"_id": id, "isDeleted": true}
	update := bson.M{"$set": bson.M{"isDeleted": false, "updatedAt": int(time.Now().Unix())}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to restore role: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("deleted role", id.Hex())
	}
	return nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Role, error) {
	var role models.Role
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("role", id.Hex())
		}
		return nil, err
	}
	return &role, nil
}

// FindActiveByID resolves a role that is still usable for permission writes.
func (r *RoleRepository) FindActiveByID(ctx context.Context, id bson.ObjectID) (*models.Role, error) {
	var role models.Role
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("role", id.Hex())
		}
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) FindActiveByName(ctx context.Context, name string, createdBy bson.ObjectID) (*models.Role, error) {
	filter := bson.M{"roleName": name, "isDeleted": false}
	if !createdBy.IsZero() {
		filter["createdBy"] = createdBy
	}

	var role models.Role
	err := r.collection.FindOne(ctx, filter).Decode(&role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// FindByCreator lists the non-deleted roles owned by one admin, the
// multi-tenant scoping used by the permission-editor catalog.
func (r *RoleRepository) FindByCreator(ctx context.Context, createdBy bson.ObjectID) ([]*models.Role, error) {
	filter := bson.M{"isDeleted": false}
	if !createdBy.IsZero() {
		filter["createdBy"] = createdBy
	}

	opts := options.Find().SetSort(bson.M{"roleName": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []*models.Role
	if err = cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}
