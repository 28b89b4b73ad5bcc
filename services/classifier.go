package services

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPhoneHints are the substrings that mark a column as phone-like.
var DefaultPhoneHints = []string{"mobile", "phone", "number", "tel", "contact", "ph"}

// ColumnClassifier decides whether a column name holds phone numbers.
type ColumnClassifier interface {
	IsPhoneColumn(name string) bool
}

// ColumnClassifierFunc adapts a plain function to ColumnClassifier.
type ColumnClassifierFunc func(name string) bool

func (f ColumnClassifierFunc) IsPhoneColumn(name string) bool { return f(name) }

// SubstringClassifier matches lowercased column names against hint
// substrings. It favors recall: "Ticket Number" is phone-like too.
type SubstringClassifier struct {
	hints []string
}

// NewSubstringClassifier uses DefaultPhoneHints when no hints are given.
func NewSubstringClassifier(hints ...string) *SubstringClassifier {
	if len(hints) == 0 {
		hints = DefaultPhoneHints
	}
	lowered := make([]string, 0, len(hints))
	for _, h := range hints {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			lowered = append(lowered, h)
		}
	}
	return &SubstringClassifier{hints: lowered}
}

func (c *SubstringClassifier) IsPhoneColumn(name string) bool {
	n := strings.ToLower(name)
	for _, h := range c.hints {
		if strings.Contains(n, h) {
			return true
		}
	}
	return false
}

// RegexClassifier matches column names against a case-insensitive pattern.
type RegexClassifier struct {
	re *regexp.Regexp
}

func NewRegexClassifier(pattern string) (*RegexClassifier, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("classifier: compile %q: %w", pattern, err)
	}
	return &RegexClassifier{re: re}, nil
}

func (c *RegexClassifier) IsPhoneColumn(name string) bool {
	return c.re.MatchString(name)
}

// PhoneColumns returns the indexes of phone-like columns, in column order.
func PhoneColumns(c ColumnClassifier, columns []string) []int {
	var idx []int
	for i, name := range columns {
		if c.IsPhoneColumn(name) {
			idx = append(idx, i)
		}
	}
	return idx
}
