package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// Collection names for the record sets.
const (
	AssetsCollection           = "assets"
	FailuresCollection         = "failures"
	WorkOrdersCollection       = "work_orders"
	MaintenanceCostsCollection = "maintenance_costs"
	UsersCollection            = "users"
)

// RecordStore persists complete datasets, one collection per record kind.
type RecordStore struct {
	Assets           RecordCollection
	Failures         RecordCollection
	WorkOrders       RecordCollection
	MaintenanceCosts RecordCollection
}

// NewRecordStore binds a record store to the collections of database.
func NewRecordStore(database *mongo.Database) *RecordStore {
	return &RecordStore{
		Assets:           &MongoCollection{Collection: database.Collection(AssetsCollection)},
		Failures:         &MongoCollection{Collection: database.Collection(FailuresCollection)},
		WorkOrders:       &MongoCollection{Collection: database.Collection(WorkOrdersCollection)},
		MaintenanceCosts: &MongoCollection{Collection: database.Collection(MaintenanceCostsCollection)},
	}
}

// ReplaceDataset clears every collection and writes ds in its place.
func (s *RecordStore) ReplaceDataset(ctx context.Context, ds models.Dataset) error {
	steps := []struct {
		name string
		coll RecordCollection
		docs []interface{}
	}{
		{AssetsCollection, s.Assets, toDocs(ds.Assets)},
		{FailuresCollection, s.Failures, toDocs(ds.Failures)},
		{WorkOrdersCollection, s.WorkOrders, toDocs(ds.WorkOrders)},
		{MaintenanceCostsCollection, s.MaintenanceCosts, toDocs(ds.MaintenanceCosts)},
	}
	for _, step := range steps {
		if err := step.coll.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear %s: %w", step.name, err)
		}
		if err := step.coll.InsertMany(ctx, step.docs); err != nil {
			return fmt.Errorf("insert %s: %w", step.name, err)
		}
	}
	return nil
}

// LoadDataset reads the four collections concurrently.
func (s *RecordStore) LoadDataset(ctx context.Context) (models.Dataset, error) {
	ds := models.Dataset{
		Assets:           []models.Asset{},
		Failures:         []models.Failure{},
		WorkOrders:       []models.WorkOrder{},
		MaintenanceCosts: []models.MaintenanceCost{},
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loadAll(ctx, AssetsCollection, s.Assets, &ds.Assets) })
	g.Go(func() error { return loadAll(ctx, FailuresCollection, s.Failures, &ds.Failures) })
	g.Go(func() error { return loadAll(ctx, WorkOrdersCollection, s.WorkOrders, &ds.WorkOrders) })
	g.Go(func() error { return loadAll(ctx, MaintenanceCostsCollection, s.MaintenanceCosts, &ds.MaintenanceCosts) })
	if err := g.Wait(); err != nil {
		return models.Dataset{}, err
	}
	return ds, nil
}

func loadAll(ctx context.Context, name string, coll RecordCollection, out interface{}) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("find %s: %w", name, err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func toDocs[T any](records []T) []interface{} {
	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}
	return docs
}
