package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"phone-scrubber/models"
)

var validate = validator.New()

// NewCondition builds a validated condition.
func NewCondition(category string, threshold int) (models.Condition, error) {
	c := models.Condition{Category: strings.TrimSpace(category), Threshold: threshold}
	if err := validate.Struct(c); err != nil {
		return models.Condition{}, &ConditionError{
			Category:  category,
			Threshold: strconv.Itoa(threshold),
			Err:       err,
		}
	}
	return c, nil
}

// ParseThreshold builds a condition from a textual threshold such as "3"
// or "3.0". A non-zero fractional part is rejected.
func ParseThreshold(category, threshold string) (models.Condition, error) {
	text := strings.TrimSpace(threshold)
	if _, frac, ok := strings.Cut(text, "."); ok && strings.Trim(frac, "0") != "" {
		return models.Condition{}, &ConditionError{
			Category:  category,
			Threshold: threshold,
			Err:       errors.New("threshold must be a whole number"),
		}
	}
	n, err := strconv.Atoi(NumberToText(text))
	if err != nil {
		return models.Condition{}, &ConditionError{Category: category, Threshold: threshold, Err: err}
	}
	return NewCondition(category, n)
}

// ParseCondition parses "category:threshold" (or "category=threshold").
func ParseCondition(raw string) (models.Condition, error) {
	sep := strings.LastIndexAny(raw, ":=")
	if sep < 0 {
		return models.Condition{}, &ConditionError{
			Category: raw,
			Err:      errors.New(`expected "category:threshold"`),
		}
	}
	return ParseThreshold(raw[:sep], raw[sep+1:])
}

// ParseConditions parses every condition, stopping at the first malformed one.
func ParseConditions(raws []string) ([]models.Condition, error) {
	out := make([]models.Condition, 0, len(raws))
	for _, s := range raws {
		c, err := ParseCondition(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ValidateConditions checks conditions built without NewCondition.
func ValidateConditions(conds []models.Condition) error {
	for _, c := range conds {
		if _, err := NewCondition(c.Category, c.Threshold); err != nil {
			return err
		}
	}
	return nil
}

// TitleCase normalizes a category for comparison.
func TitleCase(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// EvaluateConditions returns the union of phones matched by any condition.
// Each condition sees the full occurrence table, so condition order does
// not change the result. Unknown categories match nothing.
func EvaluateConditions(agg *models.AggregatedList, conds []models.Condition) (models.RemovalSet, error) {
	if err := ValidateConditions(conds); err != nil {
		return models.RemovalSet{}, err
	}

	caser := cases.Title(language.Und)
	titles := make([]string, len(agg.Table.Rows))
	for i, row := range agg.Table.Rows {
		titles[i] = caser.String(strings.TrimSpace(row[agg.CategoryIndex]))
	}

	var matched []string
	for _, c := range conds {
		want := caser.String(strings.TrimSpace(c.Category))
		for i, row := range agg.Table.Rows {
			if titles[i] == want && agg.Occurrences[i] >= c.Threshold {
				matched = append(matched, row[agg.PhoneIndex])
			}
		}
	}

	return models.NewRemovalSet(matched), nil
}
