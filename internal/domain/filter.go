package domain

import "strings"

// Feature tags that map onto yacht fields instead of the amenities list.
const (
	FeatureCaptainIncluded = "Captain Included"
	FeatureInstantBook     = "Instant Book"
)

type PriceRange struct {
	Min, Max Money // inclusive
}

// Criteria is a search filter. Zero values impose no constraint.
type Criteria struct {
	LocationText    string
	MinGuests       int
	Price           *PriceRange
	Categories      []Category
	Features        []string
	InstantBookOnly bool
}

func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.LocationText) == "" && c.MinGuests <= 0 && c.Price == nil &&
		len(c.Categories) == 0 && len(c.Features) == 0 && !c.InstantBookOnly
}

// FilterYachts returns the yachts matching every criterion, in input order.
func FilterYachts(yachts []Yacht, c Criteria) []Yacht {
	out := make([]Yacht, 0, len(yachts))
	loc := strings.ToLower(strings.TrimSpace(c.LocationText))
	for _, y := range yachts {
		if loc != "" && !matchesLocation(y.Location, loc) {
			continue
		}
		if c.MinGuests > 0 && y.Capacity < c.MinGuests {
			continue
		}
		if c.Price != nil && (y.PricePerDay < c.Price.Min || y.PricePerDay > c.Price.Max) {
			continue
		}
		if len(c.Categories) > 0 && !containsCategory(c.Categories, y.Category) {
			continue
		}
		if !hasFeatures(y, c.Features) {
			continue
		}
		if c.InstantBookOnly && !y.InstantBook {
			continue
		}
		out = append(out, y)
	}
	return out
}

func matchesLocation(l Location, needle string) bool {
	for _, f := range []string{l.City, l.Region, l.Country} {
		if f != "" && strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func containsCategory(set []Category, c Category) bool {
	for _, k := range set {
		if k == c {
			return true
		}
	}
	return false
}

func hasFeatures(y Yacht, features []string) bool {
	for _, f := range features {
		switch f {
		case FeatureCaptainIncluded:
			if y.Crew.Mode != CrewIncluded {
				return false
			}
		case FeatureInstantBook:
			if !y.InstantBook {
				return false
			}
		default:
			if !y.HasAmenity(f) {
				return false
			}
		}
	}
	return true
}
