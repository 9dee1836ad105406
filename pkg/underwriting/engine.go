// Package underwriting decides loan applications. Both entry points are
// pure functions over a frozen Facts snapshot: rules are applied in strict
// priority order and the first match wins.
package underwriting

import (
	"fmt"

	"loan-origination-be/pkg/finance"
)

// Decision outcomes.
const (
	OutcomeApproved           = "APPROVED"
	OutcomeRejected           = "REJECTED"
	OutcomePendingIncomeProof = "PENDING_INCOME_PROOF"
)

// Reason codes attached to every decision.
const (
	ReasonLowCreditScore         = "low_credit_score"
	ReasonWithinPreapprovedLimit = "within_preapproved_limit"
	ReasonNeedsIncomeProof       = "exceeds_preapproved_needs_verification"
	ReasonExceedsMaximumLimit    = "exceeds_maximum_limit"
	ReasonSalaryVerified         = "salary_verified"
	ReasonHighEMIRatio           = "high_emi_ratio"
)

// MinCreditScore is the floor below which every application is rejected.
const MinCreditScore = 700

// maxPaymentToSalary caps the installment at half the declared monthly salary.
const maxPaymentToSalary = 0.5

// Facts is the frozen snapshot a decision is computed from.
type Facts struct {
	CreditScore       int
	RequestedAmount   float64
	PreapprovedLimit  float64
	MonthlySalary     float64
	TenureMonths      int
	AnnualRatePercent float64
}

// Decision is the evaluator's verdict plus the numeric context callers need
// to explain it. ApprovedAmount is set only when Outcome is approved;
// MaxEligible is set on limit-related rejections.
type Decision struct {
	Outcome        string
	Reason         string
	Message        string
	Payment        float64
	ApprovedAmount float64
	MaxEligible    float64
}

// Evaluate runs the first-pass underwriting rules:
//  1. credit score below the floor rejects outright;
//  2. amounts within the pre-approved limit are approved;
//  3. amounts up to twice the limit are deferred pending income proof;
//  4. anything larger is rejected with the maximum eligible amount.
func Evaluate(f Facts) (Decision, error) {
	payment, err := finance.Payment(f.RequestedAmount, f.AnnualRatePercent, f.TenureMonths)
	if err != nil {
		return Decision{}, err
	}

	if f.CreditScore < MinCreditScore {
		return Decision{
			Outcome: OutcomeRejected,
			Reason:  ReasonLowCreditScore,
			Payment: payment,
			Message: fmt.Sprintf("Loan Application Status: NOT APPROVED\n\n"+
				"Unfortunately, we cannot approve your loan at this time.\n"+
				"Reason: Your credit score (%d) does not meet our minimum requirement of %d.\n\n"+
				"Please try again after improving your credit score. Thank you for considering us!",
				f.CreditScore, MinCreditScore),
		}, nil
	}

	if f.RequestedAmount <= f.PreapprovedLimit {
		return Decision{
			Outcome:        OutcomeApproved,
			Reason:         ReasonWithinPreapprovedLimit,
			Payment:        payment,
			ApprovedAmount: f.RequestedAmount,
			Message: fmt.Sprintf("Congratulations! Your Loan is APPROVED!\n\n"+
				"Loan Details:\n"+
				"- Loan Amount: ₹%.0f\n"+
				"- Tenure: %d months\n"+
				"- Interest Rate: %.2f%% p.a.\n"+
				"- Monthly EMI: ₹%.0f\n\n"+
				"Your loan is within your pre-approved limit of ₹%.0f.\n"+
				"I'm generating your sanction letter now...",
				f.RequestedAmount, f.TenureMonths, f.AnnualRatePercent, payment, f.PreapprovedLimit),
		}, nil
	}

	if f.RequestedAmount <= 2*f.PreapprovedLimit {
		return Decision{
			Outcome: OutcomePendingIncomeProof,
			Reason:  ReasonNeedsIncomeProof,
			Payment: payment,
			Message: fmt.Sprintf("Additional Verification Required\n\n"+
				"Your requested loan amount (₹%.0f) exceeds your pre-approved limit of ₹%.0f.\n\n"+
				"To proceed, I'll need to verify your income. Please upload your latest salary slip.\n\n"+
				"Click the 'Upload Salary Slip' button below to continue.",
				f.RequestedAmount, f.PreapprovedLimit),
		}, nil
	}

	maxEligible := 2 * f.PreapprovedLimit
	return Decision{
		Outcome:     OutcomeRejected,
		Reason:      ReasonExceedsMaximumLimit,
		Payment:     payment,
		MaxEligible: maxEligible,
		Message: fmt.Sprintf("Loan Application Status: NOT APPROVED\n\n"+
			"Your requested loan amount (₹%.0f) exceeds the maximum eligible amount.\n"+
			"Maximum eligible: ₹%.0f (2x your pre-approved limit)\n\n"+
			"Would you like to apply for a lower amount? Please start a new application with an amount up to ₹%.0f.",
			f.RequestedAmount, maxEligible, maxEligible),
	}, nil
}

// EvaluateIncomeProof runs after a salary slip has been received. It
// approves when the installment stays within half the declared salary and
// otherwise rejects, reporting the maximum principal the income supports. A
// non-positive salary can never satisfy the ratio and always rejects.
func EvaluateIncomeProof(f Facts) (Decision, error) {
	payment, err := finance.Payment(f.RequestedAmount, f.AnnualRatePercent, f.TenureMonths)
	if err != nil {
		return Decision{}, err
	}

	ratio := 100.0
	if f.MonthlySalary > 0 {
		ratio = payment / f.MonthlySalary * 100
	}

	if f.MonthlySalary > 0 && payment <= maxPaymentToSalary*f.MonthlySalary {
		return Decision{
			Outcome:        OutcomeApproved,
			Reason:         ReasonSalaryVerified,
			Payment:        payment,
			ApprovedAmount: f.RequestedAmount,
			Message: fmt.Sprintf("Congratulations! Your Loan is APPROVED!\n\n"+
				"Loan Details:\n"+
				"- Loan Amount: ₹%.0f\n"+
				"- Tenure: %d months\n"+
				"- Interest Rate: %.2f%% p.a.\n"+
				"- Monthly EMI: ₹%.0f\n\n"+
				"Your salary verification was successful.\n"+
				"EMI to Income Ratio: %.1f%% (within 50%% limit)\n\n"+
				"I'm generating your sanction letter now...",
				f.RequestedAmount, f.TenureMonths, f.AnnualRatePercent, payment, ratio),
		}, nil
	}

	maxPayment := maxPaymentToSalary * f.MonthlySalary
	if maxPayment < 0 {
		maxPayment = 0
	}
	maxLoan, err := finance.MaxPrincipal(maxPayment, f.AnnualRatePercent, f.TenureMonths)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Outcome:     OutcomeRejected,
		Reason:      ReasonHighEMIRatio,
		Payment:     payment,
		MaxEligible: maxLoan,
		Message: fmt.Sprintf("Loan Application Status: NOT APPROVED\n\n"+
			"Your EMI (₹%.0f) exceeds 50%% of your monthly salary (₹%.0f).\n"+
			"EMI to Income Ratio: %.1f%%\n\n"+
			"Maximum loan amount you can avail with your income: ₹%.0f\n\n"+
			"Would you like to apply for a lower amount? Please start a new application.",
			payment, f.MonthlySalary, ratio, maxLoan),
	}, nil
}
