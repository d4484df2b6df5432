package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sailhaven/internal/domain"
)

func dollars(d int64) domain.Money { return domain.Money(d * 100) }

func TestComputeTotal_NoCrew(t *testing.T) {
	q, err := domain.ComputeTotal(dollars(100), 3, false, 0)
	require.NoError(t, err)
	assert.Equal(t, dollars(300), q.Subtotal)
	assert.Equal(t, domain.Money(0), q.CrewTotal)
	assert.Equal(t, dollars(30), q.ServiceFee)
	assert.Equal(t, dollars(330), q.Total)
}

func TestComputeTotal_WithCrew(t *testing.T) {
	q, err := domain.ComputeTotal(dollars(200), 2, true, dollars(50))
	require.NoError(t, err)
	assert.Equal(t, domain.Quote{
		Days:       2,
		Subtotal:   dollars(400),
		CrewTotal:  dollars(100),
		ServiceFee: dollars(40),
		Total:      dollars(540),
	}, q)
}

func TestComputeTotal_CrewFeeIgnoredWhenNotIncluded(t *testing.T) {
	q, err := domain.ComputeTotal(dollars(200), 2, false, dollars(50))
	require.NoError(t, err)
	assert.Zero(t, q.CrewTotal)
	assert.Equal(t, dollars(440), q.Total)
}

func TestComputeTotal_InvalidRange(t *testing.T) {
	for _, days := range []int{0, -1} {
		_, err := domain.ComputeTotal(dollars(100), days, false, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestComputeTotal_LinearInDays(t *testing.T) {
	for _, price := range []domain.Money{1, 99, 12345, dollars(750)} {
		one, err := domain.ComputeTotal(price*10, 1, true, 0)
		require.NoError(t, err)
		for days := 1; days <= 30; days++ {
			q, err := domain.ComputeTotal(price*10, days, true, 0)
			require.NoError(t, err)
			assert.Equal(t, one.Subtotal*domain.Money(days), q.Subtotal)
			assert.GreaterOrEqual(t, q.Total, q.Subtotal)
		}
	}
}

func TestComputeTotal_Idempotent(t *testing.T) {
	a, _ := domain.ComputeTotal(dollars(123), 4, true, dollars(20))
	b, _ := domain.ComputeTotal(dollars(123), 4, true, dollars(20))
	assert.Equal(t, a, b)
}

func TestComputeTotal_ServiceFeeRoundsHalfUp(t *testing.T) {
	q, err := domain.ComputeTotal(105, 1, false, 0) // $1.05 -> fee 10.5 cents
	require.NoError(t, err)
	assert.Equal(t, domain.Money(11), q.ServiceFee)
}

func TestCrewTerms(t *testing.T) {
	tests := []struct {
		name      string
		policy    domain.CrewPolicy
		requested bool
		wantCrew  bool
		wantFee   domain.Money
		wantErr   bool
	}{
		{"included ignores request", domain.CrewPolicy{Mode: domain.CrewIncluded}, false, true, 0, false},
		{"optional requested", domain.CrewPolicy{Mode: domain.CrewOptional, FeePerDay: dollars(50)}, true, true, dollars(50), false},
		{"optional declined", domain.CrewPolicy{Mode: domain.CrewOptional, FeePerDay: dollars(50)}, false, false, 0, false},
		{"unavailable requested", domain.CrewPolicy{Mode: domain.CrewUnavailable}, true, false, 0, true},
		{"unavailable declined", domain.CrewPolicy{Mode: domain.CrewUnavailable}, false, false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crew, fee, err := domain.CrewTerms(tt.policy, tt.requested)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCrew, crew)
			assert.Equal(t, tt.wantFee, fee)
		})
	}
}
