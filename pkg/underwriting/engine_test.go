package underwriting

import (
	"math"
	"testing"

	"loan-origination-be/pkg/finance"
)

func baseFacts() Facts {
	return Facts{
		CreditScore:       750,
		RequestedAmount:   300000,
		PreapprovedLimit:  500000,
		MonthlySalary:     85000,
		TenureMonths:      24,
		AnnualRatePercent: 10.5,
	}
}

func TestEvaluateWithinPreapprovedLimit(t *testing.T) {
	d, err := Evaluate(baseFacts())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if d.Outcome != OutcomeApproved {
		t.Fatalf("Outcome = %q, want %q", d.Outcome, OutcomeApproved)
	}
	if d.Reason != ReasonWithinPreapprovedLimit {
		t.Errorf("Reason = %q, want %q", d.Reason, ReasonWithinPreapprovedLimit)
	}
	if d.ApprovedAmount != 300000 {
		t.Errorf("ApprovedAmount = %v, want 300000", d.ApprovedAmount)
	}
	if d.Payment <= 0 {
		t.Errorf("Payment = %v, want > 0", d.Payment)
	}
}

func TestEvaluateLowCreditScoreShortCircuits(t *testing.T) {
	// Rule 1 wins regardless of how favourable the amount is.
	for _, amount := range []float64{10000, 500000, 1000000, 9000000} {
		f := baseFacts()
		f.CreditScore = 650
		f.RequestedAmount = amount

		d, err := Evaluate(f)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if d.Outcome != OutcomeRejected || d.Reason != ReasonLowCreditScore {
			t.Errorf("amount %v: got (%q, %q), want rejection for low credit score", amount, d.Outcome, d.Reason)
		}
		if d.ApprovedAmount != 0 {
			t.Errorf("amount %v: ApprovedAmount = %v, want 0", amount, d.ApprovedAmount)
		}
	}
}

func TestEvaluateBetweenOneAndTwoTimesLimit(t *testing.T) {
	f := baseFacts()
	f.RequestedAmount = 900000

	d, err := Evaluate(f)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if d.Outcome != OutcomePendingIncomeProof {
		t.Errorf("Outcome = %q, want %q", d.Outcome, OutcomePendingIncomeProof)
	}
	if d.Reason != ReasonNeedsIncomeProof {
		t.Errorf("Reason = %q, want %q", d.Reason, ReasonNeedsIncomeProof)
	}
}

func TestEvaluateAboveTwiceLimit(t *testing.T) {
	f := baseFacts()
	f.RequestedAmount = 1000001

	d, err := Evaluate(f)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if d.Outcome != OutcomeRejected || d.Reason != ReasonExceedsMaximumLimit {
		t.Errorf("got (%q, %q), want rejection for exceeding maximum limit", d.Outcome, d.Reason)
	}
	if d.MaxEligible != 1000000 {
		t.Errorf("MaxEligible = %v, want 1000000 (2x limit)", d.MaxEligible)
	}
}

func TestEvaluateBoundaries(t *testing.T) {
	// Exactly at the limit approves; exactly at twice the limit defers.
	f := baseFacts()
	f.RequestedAmount = 500000
	d, err := Evaluate(f)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if d.Outcome != OutcomeApproved {
		t.Errorf("at limit: Outcome = %q, want %q", d.Outcome, OutcomeApproved)
	}

	f.RequestedAmount = 1000000
	d, err = Evaluate(f)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if d.Outcome != OutcomePendingIncomeProof {
		t.Errorf("at 2x limit: Outcome = %q, want %q", d.Outcome, OutcomePendingIncomeProof)
	}
}

func TestEvaluateIsTotal(t *testing.T) {
	// Every combination lands on exactly one of the defined outcomes.
	scores := []int{0, 650, 699, 700, 800}
	amounts := []float64{10000, 500000, 750000, 1000000, 1500000}
	limits := []float64{0, 250000, 500000}

	for _, score := range scores {
		for _, amount := range amounts {
			for _, limit := range limits {
				f := baseFacts()
				f.CreditScore = score
				f.RequestedAmount = amount
				f.PreapprovedLimit = limit

				d, err := Evaluate(f)
				if err != nil {
					t.Fatalf("Evaluate(%+v) error = %v", f, err)
				}
				switch d.Outcome {
				case OutcomeApproved, OutcomeRejected, OutcomePendingIncomeProof:
				default:
					t.Errorf("Evaluate(%+v) outcome = %q, not a defined outcome", f, d.Outcome)
				}
				if (d.ApprovedAmount != 0) != (d.Outcome == OutcomeApproved) {
					t.Errorf("Evaluate(%+v): ApprovedAmount %v inconsistent with outcome %q",
						f, d.ApprovedAmount, d.Outcome)
				}
			}
		}
	}
}

func TestIncomeProofApproves(t *testing.T) {
	f := baseFacts()
	f.RequestedAmount = 600000
	f.TenureMonths = 60
	f.MonthlySalary = 85000

	d, err := EvaluateIncomeProof(f)
	if err != nil {
		t.Fatalf("EvaluateIncomeProof() error = %v", err)
	}
	if d.Outcome != OutcomeApproved || d.Reason != ReasonSalaryVerified {
		t.Errorf("got (%q, %q), want salary-verified approval", d.Outcome, d.Reason)
	}
	if d.Payment > 0.5*f.MonthlySalary {
		t.Errorf("approved with payment %v above half salary %v", d.Payment, f.MonthlySalary)
	}
	if d.ApprovedAmount != 600000 {
		t.Errorf("ApprovedAmount = %v, want 600000", d.ApprovedAmount)
	}
}

func TestIncomeProofRejectsHighRatio(t *testing.T) {
	f := baseFacts()
	f.RequestedAmount = 900000
	f.TenureMonths = 24
	f.MonthlySalary = 40000

	d, err := EvaluateIncomeProof(f)
	if err != nil {
		t.Fatalf("EvaluateIncomeProof() error = %v", err)
	}
	if d.Outcome != OutcomeRejected || d.Reason != ReasonHighEMIRatio {
		t.Errorf("got (%q, %q), want high-EMI-ratio rejection", d.Outcome, d.Reason)
	}

	// The reported maximum must be reproducible from the calculator at the
	// half-salary payment cap.
	wantMax, err := finance.MaxPrincipal(20000, f.AnnualRatePercent, f.TenureMonths)
	if err != nil {
		t.Fatalf("MaxPrincipal() error = %v", err)
	}
	if math.Abs(d.MaxEligible-wantMax) > 1 {
		t.Errorf("MaxEligible = %v, want %v", d.MaxEligible, wantMax)
	}
}

func TestIncomeProofZeroSalaryAlwaysRejects(t *testing.T) {
	for _, salary := range []float64{0, -1000} {
		f := baseFacts()
		f.RequestedAmount = 10000
		f.MonthlySalary = salary

		d, err := EvaluateIncomeProof(f)
		if err != nil {
			t.Fatalf("EvaluateIncomeProof() error = %v", err)
		}
		if d.Outcome != OutcomeRejected || d.Reason != ReasonHighEMIRatio {
			t.Errorf("salary %v: got (%q, %q), want rejection", salary, d.Outcome, d.Reason)
		}
	}
}
