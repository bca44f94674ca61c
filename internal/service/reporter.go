package service

import (
	"context"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/moneytag/moneytag/internal/model"
	"github.com/moneytag/moneytag/internal/repository"
)

type TagTotal struct {
	Tag    string
	Amount decimal.Decimal
}

type Summary struct {
	Count   int
	Skipped int // records whose amount is NaN or infinite, left out of the totals
	Total   decimal.Decimal
	Tags  []TagTotal // sorted by tag
}

type Reporter struct {
	getter repository.Getter
}

func NewReporter(getter repository.Getter) *Reporter {
	return &Reporter{
		getter: getter,
	}
}

func (r *Reporter) Summary(ctx context.Context, owner string) (*Summary, error) {
	records, err := r.getter.Records(ctx, owner)
	if err != nil {
		return nil, err
	}
	return Summarize(records), nil
}

// Summarize adds every record to the total and to each distinct tag it carries.
// Records with a non-finite amount are only counted in Skipped.
func Summarize(records []*model.Record) *Summary {
	summary := &Summary{
		Count: len(records),
		Total: decimal.Zero,
		Tags:  make([]TagTotal, 0),
	}
	byTag := make(map[string]decimal.Decimal)
	for _, record := range records {
		if math.IsNaN(record.Amount) || math.IsInf(record.Amount, 0) {
			logrus.Warnf("summary skipped record %q of %s: amount %v is not finite", record.Title, record.Owner, record.Amount)
			summary.Skipped++
			continue
		}
		amount := decimal.NewFromFloat(record.Amount)
		summary.Total = summary.Total.Add(amount)

		seen := make(map[string]struct{}, len(record.Tags))
		for _, tag := range record.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			byTag[tag] = byTag[tag].Add(amount)
		}
	}

	for tag, amount := range byTag {
		summary.Tags = append(summary.Tags, TagTotal{Tag: tag, Amount: amount})
	}
	sort.Slice(summary.Tags, func(i, j int) bool {
		return summary.Tags[i].Tag < summary.Tags[j].Tag
	})
	return summary
}
