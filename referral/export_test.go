package referral

// SetCodeGenerator swaps the referral code source. Test hook only.
func (e *Engine) SetCodeGenerator(gen func() (string, error)) {
	e.genCode = gen
}
