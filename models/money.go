package models

// Money is an amount in whole currency units (INR rupees). Quotes are
// rounded to whole units at computation time; no fractional subunits are
// stored anywhere in the system.
type Money int64

// Subunits returns the amount in the smallest currency denomination
// (paise), as expected by the payment provider.
func (m Money) Subunits() int64 {
	return int64(m) * 100
}
