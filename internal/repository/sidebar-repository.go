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

type SidebarRepository struct {
	collection *mongo.Collection
}

func NewSidebarRepository(db *mongo.Database) *SidebarRepository {
	return &SidebarRepository{
		collection: db.Collection("SidebarModule"),
	}
}

func (r *SidebarRepository) Create(ctx context.Context, module *models.SidebarModule) (*models.SidebarModule, error) {
	if module.ID.IsZero() {
		module.ID = bson.NewObjectID()
	}
	if module.Children == nil {
		module.Children = []models.SidebarChild{}
	}

	currentTime := int(time.Now().Unix())
	if module.CreatedAt == 0 {
		module.CreatedAt = currentTime
	}
	module.UpdatedAt = currentTime

	_, err := r.collection.InsertOne(ctx, module)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sidebar module: %w", err)
	}
	return module, nil
}

func (r *SidebarRepository) Update(ctx context.Context, module *models.SidebarModule) error {
	module.UpdatedAt = int(time.Now().Unix())

	filter := bson.M{"_id": module.ID}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": module})
	if err != nil {
		return fmt.Errorf("failed to update sidebar module: %w", err)
	}
	return nil
}

func (r *SidebarRepository) SoftDelete(ctx context.Context, id bson.ObjectID) error {
	filter := bson.M{"_id": id, "isDeleted": false}
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": int(time.Now().Unix())}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete sidebar module: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("sidebar module", id.Hex())
	}
	return nil
}

func (r *SidebarRepository) FindActiveByID(ctx context.Context, id bson.ObjectID) (*models.SidebarModule, error) {
	var module models.SidebarModule
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&module)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("sidebar module", id.Hex())
		}
		return nil, err
	}
	return &module, nil
}

// FindAllActive returns the live module catalog in ascending menu order.
func (r *SidebarRepository) FindAllActive(ctx context.Context) ([]*models.SidebarModule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"isDeleted": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var modules []*models.SidebarModule
	if err = cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *SidebarRepository) FindActiveByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.SidebarModule, error) {
	if len(ids) == 0 {
		return []*models.SidebarModule{}, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}, "isDeleted": false}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var modules []*models.SidebarModule
	if err = cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}
