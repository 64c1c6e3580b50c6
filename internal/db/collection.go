package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordCollection defines the operations needed to persist one kind of record.
type RecordCollection interface {
	InsertMany(ctx context.Context, docs []interface{}) error
	DeleteAll(ctx context.Context) error
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (RecordCursor, error)
}

// RecordCursor defines the interface for record cursor operations.
type RecordCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
