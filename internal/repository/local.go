package repository

import (
	"context"
	"sync"

	"github.com/moneytag/moneytag/internal/model"
)

// LocalStorage keeps records in process memory, in insertion order
type LocalStorage struct {
	mu      sync.RWMutex
	records []model.Record
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		records: make([]model.Record, 0),
	}
}

func (l *LocalStorage) AddRecord(_ context.Context, record *model.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, clone(record))
	return nil
}

func (l *LocalStorage) AddRecords(_ context.Context, records []*model.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range nonNil(records) {
		l.records = append(l.records, clone(r))
	}
	return nil
}

func (l *LocalStorage) Records(_ context.Context, owner string) ([]*model.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]*model.Record, 0)
	for i := range l.records {
		if l.records[i].Owner != owner {
			continue
		}
		r := clone(&l.records[i])
		result = append(result, &r)
	}
	return result, nil
}

func clone(record *model.Record) model.Record {
	r := *record
	if record.Tags != nil {
		r.Tags = append(make([]string, 0, len(record.Tags)), record.Tags...)
	}
	return r
}
