package rating

import (
	"fmt"
	"maps"
	"slices"

	"waterline/internal/pkg/errs"
)

// Category is one of the fixed aspects a requester may score.
type Category string

const (
	WaterQuality   Category = "waterQuality"
	DeliverySpeed  Category = "deliverySpeed"
	ServiceQuality Category = "serviceQuality"
	Communication  Category = "communication"
	PricingValue   Category = "pricing"
)

// AllCategories in display order.
var AllCategories = []Category{WaterQuality, DeliverySpeed, ServiceQuality, Communication, PricingValue}

func (c Category) Validate() error {
	if !slices.Contains(AllCategories, c) {
		return errs.NewValueIsInvalidErrorWithCause("category", fmt.Errorf("%q is not a rating category", string(c)))
	}
	return nil
}

// Categories holds the optional per-category scores of one rating.
// A category that was not scored is absent.
type Categories map[Category]int

// NewCategories validates names and scores. A nil or empty input is valid.
func NewCategories(scores map[string]int) (Categories, error) {
	out := make(Categories, len(scores))
	for _, name := range slices.Sorted(maps.Keys(scores)) {
		c := Category(name)
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if err := validateScore(string(c), scores[name]); err != nil {
			return nil, err
		}
		out[c] = scores[name]
	}
	return out, nil
}

// Clone returns an independent copy.
func (c Categories) Clone() Categories {
	return maps.Clone(c)
}

func validateScore(param string, score int) error {
	if score < MinScore || score > MaxScore {
		return errs.NewValueIsOutOfRangeError(param, score, MinScore, MaxScore)
	}
	return nil
}
