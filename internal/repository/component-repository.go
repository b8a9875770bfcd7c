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

type ComponentRepository struct {
	collection *mongo.Collection
}

func NewComponentRepository(db *mongo.Database) *ComponentRepository {
	return &ComponentRepository{
		collection: db.Collection("DynamicComponent"),
	}
}

func (r *ComponentRepository) Create(ctx context.Context, component *models.DynamicComponent) (*models.DynamicComponent, error) {
	existing, err := r.FindActiveByName(ctx, component.ComponentName)
	if err != nil {
		return nil, fmt.Errorf("error checking existing component: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict(fmt.Sprintf("component '%s' already exists", component.ComponentName))
	}

	if component.ID.IsZero() {
		component.ID = bson.NewObjectID()
	}
	if component.Status == "" {
		component.Status = models.ComponentStatusActive
	}

	currentTime := int(time.Now().Unix())
	if component.CreatedAt == 0 {
		component.CreatedAt = currentTime
	}
	component.UpdatedAt = currentTime

	_, err = r.collection.InsertOne(ctx, component)
	if err != nil {
		return nil, fmt.Errorf("failed to insert component: %w", err)
	}
	return component, nil
}

func (r *ComponentRepository) Update(ctx context.Context, component *models.DynamicComponent) error {
	component.UpdatedAt = int(time.Now().Unix())

	filter := bson.M{"_id": component.ID}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": component})
	if err != nil {
		return fmt.Errorf("failed to update component: %w", err)
	}
	return nil
}

func (r *ComponentRepository) SoftDelete(ctx context.Context, id, deletedBy bson.ObjectID) error {
	currentTime := int(time.Now().Unix())
	filter := bson.M{"_id": id, "isDeleted": false}
	update := bson.M{"$set": bson.M{
		"isDeleted": true,
		"deletedBy": deletedBy,
		"deletedAt": currentTime,
		"updatedAt": currentTime,
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("component", id.Hex())
	}
	return nil
}

// Restore reactivates a soft-deleted component. It refuses when an active
// component has since taken the same name, so restoring can never produce
// two live components with one name.
func (r *ComponentRepository) Restore(ctx context.Context, id, restoredBy bson.ObjectID) (*models.DynamicComponent, error) {
	var deleted models.DynamicComponent
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "isDeleted": true}).Decode(&deleted)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("deleted component", id.Hex())
		}
		return nil, err
	}

	active, err := r.FindActiveByName(ctx, deleted.ComponentName)
	if err != nil {
		return nil, fmt.Errorf("error checking active component: %w", err)
	}
	if active != nil {
		return nil, apperr.Conflict(fmt.Sprintf("an active component named '%s' already exists", deleted.ComponentName))
	}

	currentTime := int(time.Now().Unix())
	update := bson.M{"$set": bson.M{
		"isDeleted":  false,
		"restoredBy": restoredBy,
		"restoredAt": currentTime,
		"updatedAt":  currentTime,
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to restore component: %w", err)
	}

	deleted.IsDeleted = false
	deleted.RestoredBy = restoredBy
	deleted.RestoredAt = currentTime
	deleted.UpdatedAt = currentTime
	return &deleted, nil
}

func (r *ComponentRepository) FindActiveByID(ctx context.Context, id bson.ObjectID) (*models.DynamicComponent, error) {
	var component models.DynamicComponent
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&component)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("component", id.Hex())
		}
		return nil, err
	}
	return &component, nil
}

func (r *ComponentRepository) FindActiveByName(ctx context.Context, name string) (*models.DynamicComponent, error) {
	filter := bson.M{"componentName": name, "isDeleted": false}

	var component models.DynamicComponent
	err := r.collection.FindOne(ctx, filter).Decode(&component)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &component, nil
}

// FindAllActive returns every live component; the resolver indexes them by
// usage location when expanding a permission matrix.
func (r *ComponentRepository) FindAllActive(ctx context.Context) ([]*models.DynamicComponent, error) {
	opts := options.Find().SetSort(bson.M{"componentName": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"isDeleted": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var components []*models.DynamicComponent
	if err = cursor.All(ctx, &components); err != nil {
		return nil, err
	}
	return components, nil
}

func (r *ComponentRepository) FindByUsageLocation(ctx context.Context, moduleID bson.ObjectID) ([]*models.DynamicComponent, error) {
	filter := bson.M{"usageLocation": moduleID, "isDeleted": false}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var components []*models.DynamicComponent
	if err = cursor.All(ctx, &components); err != nil {
		return nil, err
	}
	return components, nil
}
