package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"access_service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AccessRepository owns the AccessRecord collection. Uniqueness of records
// is enforced by lookup-then-upsert in the writer service, not by an index,
// and concurrent editors are last-write-wins at the document level.
type AccessRepository struct {
	collection *mongo.Collection
}

func NewAccessRepository(db *mongo.Database) *AccessRepository {
	return &AccessRepository{
		collection: db.Collection("AccessRecord"),
	}
}

// rbacUserFilter matches role-level records whether userId was stored as
// null or omitted entirely.
func rbacUserFilter() bson.M {
	return bson.M{"userId": nil}
}

// FindUserRecord returns the ABAC override for a user, ignoring
// organization entirely: a user-level record always wins the fallback chain.
func (r *AccessRepository) FindUserRecord(ctx context.Context, userID bson.ObjectID) (*models.AccessRecord, error) {
	filter := bson.M{"userId": userID, "isDeleted": false}
	return r.findOne(ctx, filter)
}

// FindRoleRecord returns the role-level record scoped to one organization.
func (r *AccessRepository) FindRoleRecord(ctx context.Context, roleID, orgID bson.ObjectID) (*models.AccessRecord, error) {
	filter := rbacUserFilter()
	filter["roleId"] = roleID
	filter["organizationId"] = orgID
	filter["isDeleted"] = false
	return r.findOne(ctx, filter)
}

// FindRoleRecordAnyOrg returns the role-level record regardless of
// organization. Used both as the privileged-role lookup and as the
// defensive last step of the resolution fallback chain.
func (r *AccessRepository) FindRoleRecordAnyOrg(ctx context.Context, roleID bson.ObjectID) (*models.AccessRecord, error) {
	filter := rbacUserFilter()
	filter["roleId"] = roleID
	filter["isDeleted"] = false
	return r.findOne(ctx, filter)
}

// FindAbacRecord returns the per-user override for a role within one
// organization.
func (r *AccessRepository) FindAbacRecord(ctx context.Context, roleID, userID, orgID bson.ObjectID) (*models.AccessRecord, error) {
	filter := bson.M{
		"roleId":         roleID,
		"userId":         userID,
		"organizationId": orgID,
		"isDeleted":      false,
	}
	return r.findOne(ctx, filter)
}

// FindAbacRecordAnyOrg is the privileged-role variant of FindAbacRecord:
// one record per (role, user) regardless of organization.
func (r *AccessRepository) FindAbacRecordAnyOrg(ctx context.Context, roleID, userID bson.ObjectID) (*models.AccessRecord, error) {
	filter := bson.M{
		"roleId":    roleID,
		"userId":    userID,
		"isDeleted": false,
	}
	return r.findOne(ctx, filter)
}

func (r *AccessRepository) findOne(ctx context.Context, filter bson.M) (*models.AccessRecord, error) {
	var record models.AccessRecord
	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding access record: %w", err)
	}
	return &record, nil
}

func (r *AccessRepository) Insert(ctx context.Context, record *models.AccessRecord) (*models.AccessRecord, error) {
	if record.ID.IsZero() {
		record.ID = bson.NewObjectID()
	}

	currentTime := int(time.Now().Unix())
	if record.CreatedAt == 0 {
		record.CreatedAt = currentTime
	}
	record.UpdatedAt = currentTime
	if record.Permissions == nil {
		record.Permissions = []models.ModulePermission{}
	}

	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to insert access record: %w", err)
	}
	return record, nil
}

func (r *AccessRepository) Update(ctx context.Context, record *models.AccessRecord) error {
	record.UpdatedAt = int(time.Now().Unix())

	filter := bson.M{"_id": record.ID}
	update := bson.M{"$set": bson.M{
		"organizationId": record.OrganizationIDs,
		"permissions":    record.Permissions,
		"matrixType":     record.MatrixType,
		"updatedAt":      record.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update access record: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("access record %s no longer exists", record.ID.Hex())
	}
	return nil
}

func (r *AccessRepository) SoftDelete(ctx context.Context, id bson.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": int(time.Now().Unix())}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete access record: %w", err)
	}
	return nil
}

func (r *AccessRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "roleId", Value: 1}, {Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "organizationId", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create access record indexes: %w", err)
	}
	return nil
}
