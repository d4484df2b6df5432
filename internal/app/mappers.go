package app

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"sailhaven/internal/domain"
)

/********** alias registries (single source of truth) **********/

var yachtAliases = map[string][]string{
	"source_id":   {"id", "yacht_id", "listing_id", "uuid"},
	"name":        {"name", "title", "yacht_name", "listing.name"},
	"description": {"description", "summary", "details.description"},
	"category":    {"type", "category", "yacht_type", "details.type"},
	"city":        {"location.city", "city", "address.city", "port.city"},
	"region":      {"location.state", "location.region", "state", "region", "address.state"},
	"country":     {"location.country", "country", "address.country", "country_code"},
	"owner":       {"owner.id", "owner_id", "host.id", "host_id"},
}

var (
	capacityPaths = []string{"capacity", "guests", "max_guests", "specs.capacity"}
	lengthPaths   = []string{"length", "length_ft", "specs.length_ft", "specs.length"}
	cabinsPaths   = []string{"cabins", "specs.cabins", "bedrooms"}
	yearPaths     = []string{"year", "year_built", "specs.year"}
	pricePaths    = []string{"pricePerDay", "price_per_day", "price.day", "rates.daily"}
	centsPaths    = []string{"price_per_day_cents", "price.day_cents"}
	ratingPaths   = []string{"rating", "reviews.average", "score"}
	reviewsPaths  = []string{"reviewCount", "review_count", "reviews_count", "reviews.count"}
	latPaths      = []string{"location.coordinates.lat", "location.lat", "lat", "latitude"}
	lngPaths      = []string{"location.coordinates.lng", "location.lng", "lng", "lon", "longitude"}
	crewFeePaths  = []string{"captain.pricePerDay", "captain.price_per_day", "crew.fee_per_day"}
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, key string) string {
	for _, p := range yachtAliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			s = strings.TrimPrefix(s, "$")
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func intFlexible(m map[string]any, paths ...string) int {
	if f := getFloatFlexible(m, paths...); f != nil {
		return int(*f)
	}
	return 0
}

func boolFlexible(m map[string]any, paths ...string) bool {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b
			}
		}
	}
	return false
}

// firstSliceStrings: accept []any with either strings or {url/src/name}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					for _, f := range []string{"url", "src", "name"} {
						if u, ok := t[f].(string); ok && u != "" {
							out = append(out, u)
							break
						}
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

/********** yacht mapper **********/

// catalogYachtID derives a stable id so re-imports update the same row.
func catalogYachtID(sourceID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("catalog:"+sourceID)).String()
}

func mapCrew(p map[string]any) domain.CrewPolicy {
	if boolFlexible(p, "captain.included", "crew.included") {
		return domain.CrewPolicy{Mode: domain.CrewIncluded}
	}
	if boolFlexible(p, "captain.optional", "crew.optional") {
		fee := domain.Money(0)
		if f := getFloatFlexible(p, crewFeePaths...); f != nil {
			fee = toCents(*f)
		}
		return domain.CrewPolicy{Mode: domain.CrewOptional, FeePerDay: fee}
	}
	return domain.CrewPolicy{Mode: domain.CrewUnavailable}
}

func toCents(f float64) domain.Money { return domain.Money(math.Round(f * 100)) }

// mapYacht normalizes a loosely typed partner payload into the canonical
// yacht shape. ownerFallback is used when the payload names no owner.
func mapYacht(p map[string]any, ownerFallback string) (domain.Yacht, error) {
	src := firstAlias(p, "source_id")
	if src == "" {
		return domain.Yacht{}, domain.Invalid("catalog yacht has no id")
	}

	cat, ok := domain.ParseCategory(firstAlias(p, "category"))
	if !ok {
		return domain.Yacht{}, domain.Invalid("catalog yacht %s has unknown type %q", src, firstAlias(p, "category"))
	}

	y := domain.Yacht{
		ID:          catalogYachtID(src),
		Name:        firstAlias(p, "name"),
		Description: firstAlias(p, "description"),
		Category:    cat,
		Capacity:    intFlexible(p, capacityPaths...),
		Cabins:      intFlexible(p, cabinsPaths...),
		Year:        intFlexible(p, yearPaths...),
		ReviewCount: intFlexible(p, reviewsPaths...),
		InstantBook: boolFlexible(p, "instantBook", "instant_book", "booking.instant"),
		Location: domain.Location{
			City:    firstAlias(p, "city"),
			Region:  firstAlias(p, "region"),
			Country: firstAlias(p, "country"),
			Lat:     getFloatFlexible(p, latPaths...),
			Lng:     getFloatFlexible(p, lngPaths...),
		},
		Amenities: firstSliceStrings(p, "amenities", "features", "facilities"),
		Images:    firstSliceStrings(p, "images", "photos", "gallery"),
		Crew:      mapCrew(p),
		OwnerID:   firstAlias(p, "owner"),
	}
	if f := getFloatFlexible(p, lengthPaths...); f != nil {
		y.LengthFt = *f
	}
	if f := getFloatFlexible(p, ratingPaths...); f != nil {
		y.Rating = *f
	}
	if f := getFloatFlexible(p, centsPaths...); f != nil {
		y.PricePerDay = domain.Money(*f)
	} else if f := getFloatFlexible(p, pricePaths...); f != nil {
		y.PricePerDay = toCents(*f)
	}
	if y.OwnerID == "" {
		y.OwnerID = ownerFallback
	}

	y.Normalize()
	if err := y.Validate(); err != nil {
		return domain.Yacht{}, err
	}
	return y, nil
}
