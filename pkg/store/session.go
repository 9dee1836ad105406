package store

import "time"

// Conversation stages owned by the orchestrator. Exactly one stage is active
// per session; the matching sub-state field below is only meaningful while
// its stage is active.
const (
	StageGreeting     = "GREETING"
	StageIntake       = "INTAKE"
	StageVerification = "VERIFICATION"
	StageUnderwriting = "UNDERWRITING"
	StageIssuance     = "ISSUANCE"
	StageCompleted    = "COMPLETED"
	StageEnded        = "ENDED"
)

// Underwriting sub-states. AwaitingSlip means the turn-level decision was
// pending income proof and the session is parked until an upload event.
const (
	UnderwritingPending      = "PENDING"
	UnderwritingAwaitingSlip = "AWAITING_SALARY_SLIP"
	UnderwritingApproved     = "APPROVED"
	UnderwritingRejected     = "REJECTED"
)

// CustomerProfile is the CRM snapshot bound to a session after a successful
// identity match. It is never partially populated: either the whole record
// is bound or the pointer stays nil.
type CustomerProfile struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	City             string  `json:"city"`
	Phone            string  `json:"phone"`
	Email            string  `json:"email"`
	CreditScore      int     `json:"credit_score"`
	PreapprovedLimit float64 `json:"preapproved_limit"`
	Salary           float64 `json:"salary"`
}

// Offer is a pre-negotiated rate for a known customer, immutable once bound.
type Offer struct {
	CustomerID   string  `json:"customer_id"`
	InterestRate float64 `json:"interest_rate"`
}

// LoanDetails holds the parameters collected during intake. InterestRate
// starts at the configured default and may be overridden by a bound offer.
type LoanDetails struct {
	Amount       float64 `json:"amount"`
	TenureMonths int     `json:"tenure_months"`
	InterestRate float64 `json:"interest_rate"`
	Payment      float64 `json:"payment"`
}

// DecisionRecord is the committed underwriting outcome. ApprovedAmount is
// set if and only if Outcome is approved.
type DecisionRecord struct {
	Outcome        string  `json:"outcome"`
	Reason         string  `json:"reason"`
	ApprovedAmount float64 `json:"approved_amount"`
}

// DocumentReference identifies an issued sanction letter.
type DocumentReference struct {
	Filename    string `json:"filename"`
	ReferenceNo string `json:"reference_no"`
}

// Session is the canonical per-conversation record. It is mutated only by
// the orchestrator and the stage machines it invokes, under the session
// repository's per-key lock.
type Session struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`

	// Per-stage sub-states.
	IntakeState       string `json:"intake_state"`
	VerificationState string `json:"verification_state"`
	UnderwritingState string `json:"underwriting_state"`

	Loan     LoanDetails      `json:"loan"`
	Verified bool             `json:"verified"`
	Customer *CustomerProfile `json:"customer,omitempty"`
	Offer    *Offer           `json:"offer,omitempty"`

	Decision *DecisionRecord    `json:"decision,omitempty"`
	Document *DocumentReference `json:"document,omitempty"`

	SalarySlipUploaded bool   `json:"salary_slip_uploaded"`
	SalarySlipPath     string `json:"salary_slip_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
