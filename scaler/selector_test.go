package scaler

import "testing"

func TestSelectTier_HysteresisCutovers(t *testing.T) {
	// Thresholds 5/10 with hysteresis 2 give shared cutover points at
	// 3 and 8 req/s for switches in both directions.
	thresholds := Thresholds{Lower: 5, Upper: 10, Hysteresis: 2}
	tiers := []Tier{
		{Name: "small"},
		{Name: "medium"},
		{Name: "large"},
	}

	cases := []struct {
		rate float64
		want string
	}{
		{0, "small"},
		{3.0, "small"},
		{3.1, "medium"},
		{8.0, "medium"},
		{8.1, "large"},
		{100, "large"},
	}
	for _, tc := range cases {
		if got := SelectTier(tc.rate, thresholds, tiers); got != tc.want {
			t.Errorf("SelectTier(%v): got %s, want %s", tc.rate, got, tc.want)
		}
	}
}
