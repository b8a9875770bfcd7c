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

type OrganizationRepository struct {
	collection *mongo.Collection
}

func NewOrganizationRepository(db *mongo.Database) *OrganizationRepository {
	return &OrganizationRepository{
		collection: db.Collection("Organization"),
	}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	existing, err := r.FindByOrganizationID(ctx, org.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("error checking existing organization: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict(fmt.Sprintf("organization '%s' already exists", org.OrganizationID))
	}

	if org.ID.IsZero() {
		org.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if org.CreatedAt == 0 {
		org.CreatedAt = currentTime
	}
	org.UpdatedAt = currentTime

	_, err = r.collection.InsertOne(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("failed to insert organization: %w", err)
	}
	return org, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = int(time.Now().Unix())

	filter := bson.M{"_id": org.ID}
	_, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": org})
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) SoftDelete(ctx context.Context, id bson.ObjectID) error {
	filter := bson.M{"_id": id, "isDeleted": false}
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": int(time.Now().Unix())}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("organization", id.Hex())
	}
	return nil
}

func (r *OrganizationRepository) FindActiveByID(ctx context.Context, id bson.ObjectID) (*models.Organization, error) {
	var org models.Organization
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("organization", id.Hex())
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) FindByOrganizationID(ctx context.Context, organizationID string) (*models.Organization, error) {
	filter := bson.M{"organizationId": organizationID, "isDeleted": false}

	var org models.Organization
	err := r.collection.FindOne(ctx, filter).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) FindActiveByIDs(ctx context.Context, ids []bson.ObjectID) ([]*models.Organization, error) {
	if len(ids) == 0 {
		return []*models.Organization{}, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}, "isDeleted": false}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orgs []*models.Organization
	if err = cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *OrganizationRepository) FindAll(ctx context.Context) ([]*models.Organization, error) {
	opts := options.Find().SetSort(bson.M{"organizationId": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"isDeleted": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orgs []*models.Organization
	if err = cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}
