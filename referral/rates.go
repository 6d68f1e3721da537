package referral

// Commission rates per ancestor level, in basis points of the trigger
// amount. Level 1 is the direct referrer. Basis points keep the per-level
// amounts exact integer paise.

const MAX_REFERRAL_LEVELS = 7

var levelRatesBP = [MAX_REFERRAL_LEVELS]int64{1000, 500, 300, 200, 100, 50, 50}

// RateBP returns the rate for a level in basis points, 0 outside 1..7.
func RateBP(level int) int64 {
	if level < 1 || level > MAX_REFERRAL_LEVELS {
		return 0
	}
	return levelRatesBP[level-1]
}

// Rate returns the level rate as a fraction, for the commission_rate column.
func Rate(level int) float64 {
	return float64(RateBP(level)) / 10000
}

// CommissionAmount computes the paise owed to the ancestor at the given
// level for a trigger of baseAmount paise. Truncates, never rounds up.
func CommissionAmount(baseAmount int64, level int) int64 {
	return baseAmount * RateBP(level) / 10000
}
