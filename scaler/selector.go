package scaler

// SelectTier maps an arrival rate to the name of the tier that should be
// serving, given tiers in ascending capacity order. Pure function, no
// side effects.
//
// The hysteresis margin is subtracted from both thresholds, so each
// boundary has a single shared guard band: upward and downward switches
// share the cutover points lower-H and upper-H. There are no separate
// rising/falling thresholds.
func SelectTier(rate float64, t Thresholds, tiers []Tier) string {
	switch {
	case rate <= t.Lower-t.Hysteresis:
		return tiers[0].Name
	case rate <= t.Upper-t.Hysteresis:
		return tiers[1].Name
	default:
		return tiers[2].Name
	}
}
