// Package orders turns the flat order list into date buckets for display.
package orders

import (
	"slices"
	"strings"
	"time"

	"github.com/ObjCodingDevMart/storefront/internal/domain"
)

// LabelLayout is the bucket label format. Year first in fixed width so
// labels sort chronologically as plain strings.
const LabelLayout = "2006.01.02"

var (
	dateTimeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
	}
	dateLayout = time.DateOnly
)

// DateLabel derives the bucket label of a createdAt value. Date-times keep
// their own offset. Unparseable values are returned unchanged, so they never
// share a bucket with a parsed value of the same day.
func DateLabel(createdAt string) string {
	raw := strings.TrimSpace(createdAt)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(LabelLayout)
		}
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.Format(LabelLayout)
	}
	return createdAt
}

// Group buckets records by DateLabel, newest label first. Records keep their
// input order inside a bucket.
func Group(records []domain.OrderRecord) []domain.OrderGroup {
	groups := []domain.OrderGroup{}
	index := make(map[string]int)

	for _, r := range records {
		label := DateLabel(r.CreatedAt)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, domain.OrderGroup{DateLabel: label})
		}
		groups[i].Orders = append(groups[i].Orders, r)
	}

	slices.SortFunc(groups, func(a, b domain.OrderGroup) int {
		return strings.Compare(b.DateLabel, a.DateLabel)
	})
	return groups
}
