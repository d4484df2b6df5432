package domain

import (
	"strings"
	"time"
)

// Money is an amount in cents.
type Money int64

type Category string

const (
	CategoryMotorYacht   Category = "Motor Yacht"
	CategorySailingYacht Category = "Sailing Yacht"
	CategoryCatamaran    Category = "Catamaran"
	CategorySuperyacht   Category = "Superyacht"
)

var Categories = []Category{CategoryMotorYacht, CategorySailingYacht, CategoryCatamaran, CategorySuperyacht}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCategory matches case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, k := range Categories {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}

type CrewMode string

const (
	CrewIncluded    CrewMode = "included"
	CrewOptional    CrewMode = "optional"
	CrewUnavailable CrewMode = "unavailable"
)

type CrewPolicy struct {
	Mode      CrewMode `json:"mode"`
	FeePerDay Money    `json:"fee_per_day_cents,omitempty"` // only for CrewOptional
}

type Location struct {
	City    string   `json:"city"`
	Region  string   `json:"region"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

func (l Location) String() string {
	var parts []string
	for _, p := range []string{l.City, l.Region, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Yacht struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    Category   `json:"category"`
	Capacity    int        `json:"capacity"`
	LengthFt    float64    `json:"length_ft"`
	Cabins      int        `json:"cabins"`
	PricePerDay Money      `json:"price_per_day_cents"`
	Location    Location   `json:"location"`
	Amenities   []string   `json:"amenities"`
	Images      []string   `json:"images"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	InstantBook bool       `json:"instant_book"`
	Crew        CrewPolicy `json:"crew"`
	Year        int        `json:"year,omitempty"`
	OwnerID     string     `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Normalize trims free text, drops blank tags and fills empty collections so
// that downstream code can rely on the canonical shape.
func (y *Yacht) Normalize() {
	y.Name = strings.TrimSpace(y.Name)
	y.Description = strings.TrimSpace(y.Description)
	y.Location.City = strings.TrimSpace(y.Location.City)
	y.Location.Region = strings.TrimSpace(y.Location.Region)
	y.Location.Country = strings.TrimSpace(y.Location.Country)
	y.Amenities = compactStrings(y.Amenities)
	y.Images = compactStrings(y.Images)
	if y.Crew.Mode == "" {
		y.Crew.Mode = CrewUnavailable
	}
	if y.Crew.Mode != CrewOptional {
		y.Crew.FeePerDay = 0
	}
	if y.Rating < 0 {
		y.Rating = 0
	}
	if y.Rating > 5 {
		y.Rating = 5
	}
	if y.ReviewCount < 0 {
		y.ReviewCount = 0
	}
}

// Validate checks a normalized yacht.
func (y Yacht) Validate() error {
	switch {
	case y.Name == "":
		return Invalid("name is required")
	case !y.Category.Valid():
		return Invalid("unknown category %q", y.Category)
	case y.Capacity <= 0:
		return Invalid("capacity must be positive")
	case y.LengthFt <= 0:
		return Invalid("length must be positive")
	case y.Cabins < 0:
		return Invalid("cabins must not be negative")
	case y.PricePerDay <= 0:
		return Invalid("price per day must be positive")
	case y.Year != 0 && (y.Year < 1900 || y.Year > time.Now().Year()+1):
		return Invalid("year %d out of range", y.Year)
	}
	switch y.Crew.Mode {
	case CrewIncluded, CrewUnavailable:
	case CrewOptional:
		if y.Crew.FeePerDay < 0 {
			return Invalid("crew fee must not be negative")
		}
	default:
		return Invalid("unknown crew policy %q", y.Crew.Mode)
	}
	return nil
}

func (y Yacht) HasAmenity(tag string) bool {
	for _, a := range y.Amenities {
		if a == tag {
			return true
		}
	}
	return false
}

// ListingRequest is the pre-registration form an owner fills before listing.
type ListingRequest struct {
	ID        string    `json:"id"`
	OwnerID   *string   `json:"owner_id,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	YachtType string    `json:"yacht_type,omitempty"`
	LengthFt  string    `json:"yacht_length,omitempty"`
	Location  string    `json:"location,omitempty"`
	Comments  string    `json:"comments,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (r ListingRequest) Validate() error {
	required := [][2]string{
		{"first_name", r.FirstName}, {"last_name", r.LastName}, {"email", r.Email}, {"phone", r.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f[1]) == "" {
			return Invalid("%s is required", f[0])
		}
	}
	if !strings.Contains(r.Email, "@") {
		return Invalid("email %q is not valid", r.Email)
	}
	return nil
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
