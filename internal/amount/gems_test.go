package amount

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGems(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		tenths    int64
		expectErr bool
	}{
		{"whole", "25", 250, false},
		{"one_place", "2.5", 25, false},
		{"zero", "0", 0, false},
		{"two_places", "2.25", 0, true},
		{"negative", "-1", 0, true},
		{"not_a_number", "lots", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := ParseGems(tc.input)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.tenths, g.Tenths())
		})
	}
}

func TestGems_AddSubRoundTrip(t *testing.T) {
	values := []int64{0, 1, 9, 10, 255, 1000000}
	for _, a := range values {
		for _, b := range values {
			ga, err := NewGems(a)
			require.NoError(t, err)
			gb, err := NewGems(b)
			require.NoError(t, err)

			sum, err := ga.Add(gb)
			require.NoError(t, err)
			back, err := sum.Sub(gb)
			require.NoError(t, err)
			assert.Equal(t, ga, back)
		}
	}
}

func TestGems_RepeatedTenthsDoNotDrift(t *testing.T) {
	tenth, err := ParseGems("0.1")
	require.NoError(t, err)

	total := Gems{}
	for i := 0; i < 1000; i++ {
		total, err = total.Add(tenth)
		require.NoError(t, err)
	}
	assert.Equal(t, "100", total.String())
}

func TestGems_SubInsufficient(t *testing.T) {
	a, _ := WholeGems(1)
	b, _ := WholeGems(2)
	_, err := a.Sub(b)
	assert.ErrorIs(t, err, ErrInsufficientAmount)
}

func TestGems_Mul(t *testing.T) {
	reward, err := WholeGems(25)
	require.NoError(t, err)

	total, err := reward.Mul(50)
	require.NoError(t, err)
	assert.Equal(t, "1250", total.String())

	_, err = reward.Mul(-2)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWholeGems_Negative(t *testing.T) {
	_, err := WholeGems(-3)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGems_JSON(t *testing.T) {
	g, err := ParseGems("2.5")
	require.NoError(t, err)

	b, err := json.Marshal(struct {
		Pool Gems `json:"pool"`
	}{Pool: g})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pool":2.5}`, string(b))

	var out struct {
		Pool Gems `json:"pool"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"pool":"100"}`), &out))
	assert.Equal(t, int64(1000), out.Pool.Tenths())

	err = json.Unmarshal([]byte(`{"pool":1.25}`), &out)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestKeysAndPoints(t *testing.T) {
	_, err := NewKeys(-1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = NewPoints(-1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	k1, _ := NewKeys(3)
	k2, _ := NewKeys(2)
	sum, err := k1.Add(k2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum.Count())
	_, err = k2.Sub(k1)
	assert.ErrorIs(t, err, ErrInsufficientAmount)

	p1, _ := NewPoints(10)
	p2, _ := NewPoints(4)
	diff, err := p1.Sub(p2)
	require.NoError(t, err)
	assert.Equal(t, int64(6), diff.Count())
	assert.Equal(t, 1, p1.Cmp(p2))

	var k Keys
	assert.ErrorIs(t, json.Unmarshal([]byte(`-4`), &k), ErrInvalidAmount)
}

func TestRate(t *testing.T) {
	_, err := NewRate(0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	rate, err := NewRate(1) // 1 gem = 1 cent
	require.NoError(t, err)

	budget, _ := USD(1250)
	assert.Equal(t, "1250", rate.GemsFor(budget).String())
	assert.True(t, rate.GemsFor(Money{}).IsZero())

	cost, err := rate.CostOf(rate.GemsFor(budget))
	require.NoError(t, err)
	assert.Equal(t, int64(1250), cost.Cents())

	pricey, err := NewRate(3)
	require.NoError(t, err)
	ten, _ := USD(10)
	// 10 cents / 3 cents per gem = 3.33.. gems, floored to 3.3
	assert.Equal(t, int64(33), pricey.GemsFor(ten).Tenths())
	// 3.3 gems * 3 cents = 9.9 cents, rounded up
	cost, err = pricey.CostOf(pricey.GemsFor(ten))
	require.NoError(t, err)
	assert.Equal(t, int64(10), cost.Cents())
}
