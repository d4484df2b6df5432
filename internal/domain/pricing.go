package domain

// ServiceFeePercent applies to the rental subtotal only; the crew fee is not
// subject to it.
const ServiceFeePercent = 10

type Quote struct {
	Days       int   `json:"days"`
	Subtotal   Money `json:"subtotal_cents"`
	CrewTotal  Money `json:"crew_total_cents"`
	ServiceFee Money `json:"service_fee_cents"`
	Total      Money `json:"total_cents"`
}

// ComputeTotal derives the price breakdown for a rental. It is pure and safe
// to call repeatedly for previews.
func ComputeTotal(pricePerDay Money, dayCount int, crewIncluded bool, crewFeePerDay Money) (Quote, error) {
	if dayCount <= 0 {
		return Quote{}, ErrInvalidRange
	}
	if pricePerDay <= 0 {
		return Quote{}, Invalid("price per day must be positive")
	}
	if crewFeePerDay < 0 {
		return Quote{}, Invalid("crew fee must not be negative")
	}

	q := Quote{Days: dayCount}
	q.Subtotal = pricePerDay * Money(dayCount)
	if crewIncluded {
		q.CrewTotal = crewFeePerDay * Money(dayCount)
	}
	q.ServiceFee = percentOf(q.Subtotal, ServiceFeePercent)
	q.Total = q.Subtotal + q.CrewTotal + q.ServiceFee
	return q, nil
}

// percentOf rounds half up to the nearest cent.
func percentOf(m Money, pct int64) Money {
	return Money((int64(m)*pct + 50) / 100)
}

// CrewTerms resolves what a renter's crew request means under a yacht's
// crew policy: the effective crew flag and the fee charged per day.
func CrewTerms(p CrewPolicy, requested bool) (bool, Money, error) {
	switch p.Mode {
	case CrewIncluded:
		return true, 0, nil
	case CrewOptional:
		if !requested {
			return false, 0, nil
		}
		return true, p.FeePerDay, nil
	default:
		if requested {
			return false, 0, Invalid("this yacht has no captain available")
		}
		return false, 0, nil
	}
}

// QuoteFor applies CrewTerms and ComputeTotal for a yacht.
func QuoteFor(y Yacht, days int, crewRequested bool) (Quote, bool, error) {
	crew, fee, err := CrewTerms(y.Crew, crewRequested)
	if err != nil {
		return Quote{}, false, err
	}
	q, err := ComputeTotal(y.PricePerDay, days, crew, fee)
	return q, crew, err
}
