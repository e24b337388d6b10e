package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"order-service/apperrors"
)

// Connect opens a Mongo client and pings the deployment.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(dbName), nil
}

// TxnRunner runs a function inside one all-or-nothing transaction. The
// context passed to fn carries the session; repositories pick it up
// transparently.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MongoTxnRunner struct {
	client *mongo.Client
}

func NewMongoTxnRunner(client *mongo.Client) *MongoTxnRunner {
	return &MongoTxnRunner{client: client}
}

// WithTransaction executes fn inside a causally-consistent multi-document
// transaction. The driver retries transient conflicts itself; a conflict
// that survives the retry window surfaces as ConcurrentModification so the
// caller can retry the whole request.
func (r *MongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return apperrors.Internal("Failed to start database session", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	if err == nil {
		return nil
	}

	if mongo.IsTimeout(err) {
		return apperrors.Concurrent("Transaction timed out resolving a write conflict, retry the request", err)
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.Code == 112) {
		return apperrors.Concurrent("Concurrent modification detected, retry the request", err)
	}
	return err
}
