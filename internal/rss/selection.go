package rss

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"autoshow/internal/services"
)

// Order values accepted by Filters.Order.
const (
	OrderNewest = "newest"
	OrderOldest = "oldest"
)

var dateFlag = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Filters are the item-selection flags for an RSS run. Nil pointers and empty
// strings mean the flag was not given.
type Filters struct {
	Items    []string
	Last     *int
	Skip     *int
	Order    string
	Dates    []string
	LastDays *int
}

// Validate rejects invalid values and conflicting combinations. It runs
// before any filtering so a bad flag fails the whole run.
func (f Filters) Validate() error {
	if f.Last != nil {
		if *f.Last < 1 {
			return invalid("last must be a positive integer, got %d", *f.Last)
		}
		if f.Skip != nil || f.Order != "" {
			return invalid("last cannot be combined with skip or order")
		}
	}
	if f.Skip != nil && *f.Skip < 0 {
		return invalid("skip must be a non-negative integer, got %d", *f.Skip)
	}
	if f.Order != "" && f.Order != OrderNewest && f.Order != OrderOldest {
		return invalid("order must be %q or %q, got %q", OrderNewest, OrderOldest, f.Order)
	}
	if f.LastDays != nil {
		if *f.LastDays < 1 {
			return invalid("last-days must be a positive integer, got %d", *f.LastDays)
		}
		if f.Last != nil || f.Skip != nil || f.Order != "" || len(f.Dates) > 0 {
			return invalid("last-days cannot be combined with last, skip, order, or date")
		}
	}
	if len(f.Dates) > 0 {
		for _, d := range f.Dates {
			if !dateFlag.MatchString(d) {
				return invalid("date %q must be formatted YYYY-MM-DD", d)
			}
		}
		if f.Last != nil || f.Skip != nil || f.Order != "" {
			return invalid("date cannot be combined with last, skip, or order")
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return services.Wrap(services.ErrValidation, "rss", "validate filters", fmt.Sprintf(format, args...), nil)
}

// Select resolves validated filters against items in feed order. The first
// matching rule wins: explicit item URLs, then last-days, then dates, then
// last, then order with skip. The result may be empty.
func Select(items []Item, f Filters, now time.Time) []Item {
	switch {
	case len(f.Items) > 0:
		return keep(items, func(it Item) bool { return slices.Contains(f.Items, it.ShowLink) })
	case f.LastDays != nil:
		cutoff := now.AddDate(0, 0, -*f.LastDays).Format(DateLayout)
		return keep(items, func(it Item) bool { return it.PublishDate >= cutoff })
	case len(f.Dates) > 0:
		return keep(items, func(it Item) bool { return slices.Contains(f.Dates, it.PublishDate) })
	case f.Last != nil:
		n := min(*f.Last, len(items))
		return slices.Clone(items[:n])
	}

	out := slices.Clone(items)
	if f.Order == OrderOldest {
		slices.Reverse(out)
	}
	skip := 0
	if f.Skip != nil {
		skip = min(*f.Skip, len(out))
	}
	return out[skip:]
}

func keep(items []Item, match func(Item) bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}
