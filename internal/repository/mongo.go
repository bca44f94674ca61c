package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moneytag/moneytag/internal/config"
	"github.com/moneytag/moneytag/internal/model"
)

const recordsCollection = "records"

// MongoURI builds the connection string. It contains the secret and must not be logged.
func MongoURI(cfg config.Mongo) string {
	u := url.URL{
		Scheme:   cfg.Scheme,
		User:     url.UserPassword(cfg.User, cfg.Secret),
		Host:     cfg.Host,
		Path:     "/",
		RawQuery: cfg.Options,
	}
	return u.String()
}

// Connect opens a client and pings the target database, so wrong credentials fail here and not on first use
func Connect(ctx context.Context, cfg config.Mongo) (*mongo.Client, error) {
	logrus.Infof("establishing database connection to %s", cfg.Host)
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(MongoURI(cfg)))
	if err != nil {
		return nil, fmt.Errorf("%w: mongo couldn't Connect: %w", ErrConnection, err)
	}

	logrus.Info("created database client, sending ping to ensure the database is available")
	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	err = cli.Database(cfg.Database).RunCommand(pingCtx, bson.D{{Key: "ping", Value: 1}}).Err()
	if err != nil {
		if dErr := cli.Disconnect(context.Background()); dErr != nil {
			logrus.Errorf("mongo couldn't Disconnect after failed ping: %v", dErr)
		}
		return nil, fmt.Errorf("%w: mongo ping of database %s failed: %w", ErrConnection, cfg.Database, err)
	}
	logrus.Info("ping was successful, database is available")
	return cli, nil
}

type Mongo struct {
	col *mongo.Collection
}

func NewMongo(cli *mongo.Client, database string) *Mongo {
	return &Mongo{
		col: cli.Database(database).Collection(recordsCollection),
	}
}

func (m *Mongo) AddRecord(ctx context.Context, record *model.Record) error {
	_, err := m.col.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("%w: mongo couldn't InsertOne in AddRecord method: %w", ErrWrite, err)
	}
	return nil
}

// AddRecords is not atomic, on failure the documents inserted before the error stay committed
func (m *Mongo) AddRecords(ctx context.Context, records []*model.Record) error {
	records = nonNil(records)
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	_, err := m.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("%w: mongo couldn't InsertMany in AddRecords method: %w", ErrWrite, err)
	}
	return nil
}

// Records returns the records of the owner in the order the store yields them
func (m *Mongo) Records(ctx context.Context, owner string) ([]*model.Record, error) {
	cursor, err := m.col.Find(ctx, bson.D{{Key: "owner", Value: owner}})
	if err != nil {
		return nil, fmt.Errorf("%w: mongo couldn't Find in Records method: %w", ErrRead, err)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logrus.Errorf("mongo couldn't close cursor in Records method: %v", err)
		}
	}(cursor, ctx)

	records := make([]*model.Record, 0)
	for cursor.Next(ctx) {
		var record model.Record
		if err = cursor.Decode(&record); err != nil {
			return nil, fmt.Errorf("%w: mongo couldn't Decode in Records method: %w", ErrRead, err)
		}
		records = append(records, &record)
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: cursor err in Records method: %w", ErrRead, err)
	}
	return records, nil
}
