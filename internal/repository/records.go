package repository

import (
	"context"
	"errors"

	"github.com/moneytag/moneytag/internal/model"
)

var (
	ErrConnection = errors.New("database connection error")
	ErrWrite      = errors.New("database write error")
	ErrRead       = errors.New("database read error")
)

type Recorder interface {
	AddRecord(ctx context.Context, record *model.Record) error
	AddRecords(ctx context.Context, records []*model.Record) error
}

type Getter interface {
	Records(ctx context.Context, owner string) ([]*model.Record, error)
}

//go:generate mockery --name=Records

// Records is the whole persistence surface, implemented by Mongo, Postgres and LocalStorage
type Records interface {
	Recorder
	Getter
}

// nonNil drops nil entries so bulk inserts never dereference them
func nonNil(records []*model.Record) []*model.Record {
	result := make([]*model.Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			result = append(result, r)
		}
	}
	return result
}
