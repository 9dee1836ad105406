// Package finance provides the amortized-payment math used by intake
// estimates, underwriting and sanction letter generation.
package finance

import (
	"fmt"
	"math"
)

// Payment computes the monthly installment for an amortized loan using the
// standard formula P*r*(1+r)^n / ((1+r)^n - 1) with r = annualRatePercent/1200.
// A zero rate degrades to straight-line principal/term. The result is rounded
// to currency-minor-unit precision (2 decimals).
func Payment(principal, annualRatePercent float64, termMonths int) (float64, error) {
	if termMonths <= 0 {
		return 0, fmt.Errorf("term must be a positive number of months, got %d", termMonths)
	}
	if annualRatePercent == 0 {
		return round2(principal / float64(termMonths)), nil
	}
	r := annualRatePercent / 1200
	factor := math.Pow(1+r, float64(termMonths))
	payment := principal * r * factor / (factor - 1)
	return round2(payment), nil
}

// MaxPrincipal is the algebraic inverse of Payment: the largest principal
// whose installment at the given rate and term does not exceed targetPayment.
// Rounded to the nearest whole currency unit.
func MaxPrincipal(targetPayment, annualRatePercent float64, termMonths int) (float64, error) {
	if termMonths <= 0 {
		return 0, fmt.Errorf("term must be a positive number of months, got %d", termMonths)
	}
	if annualRatePercent == 0 {
		return math.Round(targetPayment * float64(termMonths)), nil
	}
	r := annualRatePercent / 1200
	factor := math.Pow(1+r, float64(termMonths))
	principal := targetPayment * (factor - 1) / (r * factor)
	return math.Round(principal), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
