package service

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/moneytag/moneytag/internal/model"
)

// one or more spaces, commas or semicolons; segments are kept untrimmed and empty ones are not dropped
var tagDelimiters = regexp.MustCompile(`[ ,;]+`)

var errNotFinite = errors.New("amount must be a finite number")

type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid value of field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ParseTags splits the free text tag field. An empty field gives one empty tag.
func ParseTags(tag string) []string {
	return tagDelimiters.Split(tag, -1)
}

// Decode builds a record of the owner from raw input fields
func Decode(owner, title, amount, tag string) (*model.Record, error) {
	sum, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return nil, &DecodeError{Field: "amount", Err: err}
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, &DecodeError{Field: "amount", Err: errNotFinite}
	}
	return &model.Record{
		Owner:  owner,
		Title:  title,
		Amount: sum,
		Tags:   ParseTags(tag),
	}, nil
}
