package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/moneytag/moneytag/internal/model"
	"github.com/moneytag/moneytag/internal/repository"
)

var ErrInvalidRecord = errors.New("invalid record")

type Recorder struct {
	repo     repository.Records
	validate *validator.Validate
}

func NewRecorder(repo repository.Records) *Recorder {
	validate := validator.New()
	// registration only fails on an empty tag or a nil func
	_ = validate.RegisterValidation("finite", isFinite)
	return &Recorder{
		repo:     repo,
		validate: validate,
	}
}

// isFinite rejects NaN and infinities, decimal totals can't hold them
func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (r *Recorder) Add(ctx context.Context, record *model.Record) error {
	if err := r.validate.Struct(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return r.repo.AddRecord(ctx, record)
}

// AddMany validates every record before the first write
func (r *Recorder) AddMany(ctx context.Context, records []*model.Record) error {
	for _, record := range records {
		if err := r.validate.Struct(record); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
	}
	return r.repo.AddRecords(ctx, records)
}

func (r *Recorder) Records(ctx context.Context, owner string) ([]*model.Record, error) {
	return r.repo.Records(ctx, owner)
}
