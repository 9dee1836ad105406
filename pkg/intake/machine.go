// Package intake collects the loan amount and tenure and asks the user to
// confirm the resulting offer summary before verification begins.
package intake

import (
	"fmt"
	"strconv"
	"strings"

	"loan-origination-be/internal/pkg/logger"
	"loan-origination-be/pkg/finance"
	"loan-origination-be/pkg/store"
)

// Intake sub-states.
const (
	StateAskAmount = "ASK_AMOUNT"
	StateAskTenure = "ASK_TENURE"
	StateConfirm   = "CONFIRM"
	StateComplete  = "COMPLETE"
	StateCancelled = "CANCELLED"
)

// Domain bounds for collected parameters.
const (
	MinAmount       = 10000
	MaxAmount       = 5000000
	MinTenureMonths = 12
	MaxTenureMonths = 72
)

// Outcome tells the orchestrator what to do after a turn.
type Outcome int

const (
	// OutcomeContinue keeps the conversation inside the intake stage.
	OutcomeContinue Outcome = iota
	// OutcomeProceed hands control to verification.
	OutcomeProceed
	// OutcomeCancelled terminates the session at the user's request.
	OutcomeCancelled
)

// Result is the outcome of one intake turn.
type Result struct {
	Message string
	Outcome Outcome
}

var (
	affirmatives = map[string]bool{"yes": true, "y": true, "proceed": true, "ok": true, "sure": true, "yeah": true}
	negatives    = map[string]bool{"no": true, "n": true, "cancel": true, "stop": true}
)

// Machine is the intake stage state machine. It owns the session's
// IntakeState sub-state and the collected loan amount/tenure.
type Machine struct {
	logger logger.ILogger
}

func NewMachine(log logger.ILogger) *Machine {
	return &Machine{logger: log}
}

// OpeningPrompt is emitted by the orchestrator when the stage activates.
func (m *Machine) OpeningPrompt() string {
	return "Welcome to our Personal Loan service!\n\n" +
		"I'm here to help you get the best loan offer tailored to your needs.\n\n" +
		"To get started, please tell me how much loan amount you're looking for? (₹10,000 - ₹50,00,000)"
}

// Process advances the machine by one user turn. Invalid input re-prompts
// and keeps the current sub-state; there is no attempt limit.
func (m *Machine) Process(sess *store.Session, input string) Result {
	switch sess.IntakeState {
	case "", StateAskAmount:
		return m.processAmount(sess, input)
	case StateAskTenure:
		return m.processTenure(sess, input)
	case StateConfirm:
		return m.processConfirm(sess, input)
	default:
		// Terminal sub-states never receive turns; the orchestrator has
		// already moved on. Treat as a re-prompt to be safe.
		return Result{Message: "Please respond with 'Yes' to proceed or 'No' to cancel.", Outcome: OutcomeContinue}
	}
}

func (m *Machine) processAmount(sess *store.Session, input string) Result {
	amount, ok := ParseAmount(input)
	if !ok {
		return Result{
			Message: "I couldn't understand that amount. Please enter a valid number (e.g., 300000 or 3,00,000).",
			Outcome: OutcomeContinue,
		}
	}
	if amount < MinAmount {
		return Result{Message: "The minimum loan amount is ₹10,000. Please enter a valid amount.", Outcome: OutcomeContinue}
	}
	if amount > MaxAmount {
		return Result{Message: "The maximum loan amount is ₹50,00,000. Please enter a valid amount.", Outcome: OutcomeContinue}
	}

	sess.Loan.Amount = amount
	sess.IntakeState = StateAskTenure
	m.logger.Info("INTAKE", "Loan amount captured", map[string]interface{}{"session_id": sess.ID, "amount": amount})

	return Result{
		Message: fmt.Sprintf("Great! You've requested a loan of ₹%.0f. Now, please tell me your preferred loan tenure in months (12 to 72 months).", amount),
		Outcome: OutcomeContinue,
	}
}

func (m *Machine) processTenure(sess *store.Session, input string) Result {
	tenure, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return Result{Message: "Please enter a valid number of months (e.g., 24 or 36).", Outcome: OutcomeContinue}
	}
	if tenure < MinTenureMonths {
		return Result{Message: "Minimum tenure is 12 months. Please enter a valid tenure.", Outcome: OutcomeContinue}
	}
	if tenure > MaxTenureMonths {
		return Result{Message: "Maximum tenure is 72 months. Please enter a valid tenure.", Outcome: OutcomeContinue}
	}

	sess.Loan.TenureMonths = tenure
	payment, err := finance.Payment(sess.Loan.Amount, sess.Loan.InterestRate, tenure)
	if err != nil {
		// Tenure was just range-checked, so this cannot happen.
		return Result{Message: "Please enter a valid number of months (e.g., 24 or 36).", Outcome: OutcomeContinue}
	}
	sess.Loan.Payment = payment
	sess.IntakeState = StateConfirm
	m.logger.Info("INTAKE", "Tenure captured", map[string]interface{}{
		"session_id": sess.ID, "tenure_months": tenure, "estimated_payment": payment,
	})

	return Result{
		Message: fmt.Sprintf("Excellent choice! Here's your loan summary:\n\n"+
			"Loan Amount: ₹%.0f\n"+
			"Tenure: %d months\n"+
			"Interest Rate: %.2f%% p.a.\n"+
			"Estimated EMI: ₹%.0f/month\n\n"+
			"This looks like a great deal! Shall I proceed with the verification? (Yes/No)",
			sess.Loan.Amount, tenure, sess.Loan.InterestRate, payment),
		Outcome: OutcomeContinue,
	}
}

func (m *Machine) processConfirm(sess *store.Session, input string) Result {
	answer := strings.ToLower(strings.TrimSpace(input))
	switch {
	case affirmatives[answer]:
		sess.IntakeState = StateComplete
		m.logger.Info("INTAKE", "User confirmed, proceeding to verification", map[string]interface{}{"session_id": sess.ID})
		return Result{
			Message: "Perfect! Let me verify your details from our records...",
			Outcome: OutcomeProceed,
		}
	case negatives[answer]:
		sess.IntakeState = StateCancelled
		m.logger.Info("INTAKE", "User cancelled the application", map[string]interface{}{"session_id": sess.ID})
		return Result{
			Message: "No problem! If you change your mind, feel free to start again. Have a great day!",
			Outcome: OutcomeCancelled,
		}
	default:
		return Result{Message: "Please respond with 'Yes' to proceed or 'No' to cancel.", Outcome: OutcomeContinue}
	}
}

// ParseAmount parses free-text currency input, tolerating thousands
// separators, a rupee symbol or "Rs" prefix, and surrounding whitespace.
// The boolean reports whether a usable number was found.
func ParseAmount(input string) (float64, bool) {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimSpace(s)

	lower := strings.ToLower(s)
	for _, prefix := range []string{"rs.", "rs", "inr"} {
		if strings.HasPrefix(lower, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
