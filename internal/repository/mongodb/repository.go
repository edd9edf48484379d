package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agrovista/fermops/internal/domain/models"
)

// Repository defines the read-only access to a tenant's operational rows.
// The rows are owned and mutated by the data-entry side of the product;
// this core only snapshots them. Tenant isolation is enforced upstream, the
// tenant_id filter here is a query scope, not a security boundary.
type Repository interface {
	LoadSnapshot(ctx context.Context, tenantID string) (models.Snapshot, error)
}

const (
	harvestsCollection   = "harvests"
	salesCollection      = "sales"
	expensesCollection   = "expenses"
	activitiesCollection = "activities"
	parcelsCollection    = "parcels"
)

// MongoDBRepository implements Repository on MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository connects and pings MongoDB.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{client: client, dbName: dbName}, nil
}

// LoadSnapshot materializes the five per-tenant collections for one engine
// invocation.
func (r *MongoDBRepository) LoadSnapshot(ctx context.Context, tenantID string) (models.Snapshot, error) {
	var snap models.Snapshot

	if err := r.loadAll(ctx, harvestsCollection, tenantID, &snap.Harvests); err != nil {
		return models.Snapshot{}, err
	}
	if err := r.loadAll(ctx, salesCollection, tenantID, &snap.Sales); err != nil {
		return models.Snapshot{}, err
	}
	if err := r.loadAll(ctx, expensesCollection, tenantID, &snap.Expenses); err != nil {
		return models.Snapshot{}, err
	}
	if err := r.loadAll(ctx, activitiesCollection, tenantID, &snap.Activities); err != nil {
		return models.Snapshot{}, err
	}
	if err := r.loadAll(ctx, parcelsCollection, tenantID, &snap.Parcels); err != nil {
		return models.Snapshot{}, err
	}

	return snap, nil
}

func (r *MongoDBRepository) loadAll(ctx context.Context, collName, tenantID string, out interface{}) error {
	collection := r.client.Database(r.dbName).Collection(collName)

	cursor, err := collection.Find(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collName, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s rows: %w", collName, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
