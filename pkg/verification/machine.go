// Package verification matches the requester against CRM records by phone
// number and asks for identity confirmation before underwriting may run.
package verification

import (
	"context"
	"fmt"
	"strings"

	"loan-origination-be/internal/pkg/logger"
	"loan-origination-be/pkg/store"
)

// Verification sub-states.
const (
	StateAskPhone        = "ASK_PHONE"
	StateConfirmIdentity = "CONFIRM_IDENTITY"
	StateNotFound        = "NOT_FOUND"
	StateComplete        = "COMPLETE"
	StateEnded           = "ENDED"
)

// Outcome tells the orchestrator what to do after a turn.
type Outcome int

const (
	// OutcomeContinue keeps the conversation inside the verification stage.
	OutcomeContinue Outcome = iota
	// OutcomeProceed hands control to underwriting.
	OutcomeProceed
	// OutcomeEnded terminates the session.
	OutcomeEnded
)

// Result is the outcome of one verification turn.
type Result struct {
	Message string
	Outcome Outcome
}

// Directory is the read-only CRM lookup collaborator. A nil record with a
// nil error means not-found; errors are infrastructure failures.
type Directory interface {
	FindCustomerByPhone(ctx context.Context, phone string) (*store.CustomerProfile, error)
	FindOfferByCustomerID(ctx context.Context, customerID string) (*store.Offer, error)
}

var (
	affirmatives = map[string]bool{"yes": true, "y": true, "correct": true, "right": true, "ok": true}
	negatives    = map[string]bool{"no": true, "n": true, "wrong": true, "incorrect": true}
)

// Machine is the verification stage state machine.
type Machine struct {
	directory Directory
	logger    logger.ILogger
}

func NewMachine(directory Directory, log logger.ILogger) *Machine {
	return &Machine{directory: directory, logger: log}
}

// OpeningPrompt is emitted by the orchestrator when the stage activates.
func (m *Machine) OpeningPrompt() string {
	return "To verify your identity, please enter your registered 10-digit phone number."
}

// Process advances the machine by one user turn. A returned error means a
// collaborator call failed; in that case the session has not been mutated
// and the same turn can be retried safely.
func (m *Machine) Process(ctx context.Context, sess *store.Session, input string) (Result, error) {
	switch sess.VerificationState {
	case "", StateAskPhone:
		return m.processPhone(ctx, sess, input)
	case StateConfirmIdentity:
		return m.processConfirmIdentity(sess, input), nil
	case StateNotFound:
		return m.processNotFound(sess, input), nil
	default:
		return Result{Message: m.OpeningPrompt(), Outcome: OutcomeContinue}, nil
	}
}

func (m *Machine) processPhone(ctx context.Context, sess *store.Session, input string) (Result, error) {
	phone, ok := NormalizePhone(input)
	if !ok {
		return Result{Message: "Please enter a valid 10-digit phone number.", Outcome: OutcomeContinue}, nil
	}

	customer, err := m.directory.FindCustomerByPhone(ctx, phone)
	if err != nil {
		return Result{}, fmt.Errorf("customer lookup failed: %w", err)
	}
	if customer == nil {
		sess.VerificationState = StateNotFound
		m.logger.Info("VERIFICATION", "Customer not found", map[string]interface{}{"session_id": sess.ID})
		return Result{
			Message: "Sorry, I couldn't find your profile in our system.\n" +
				"Please check your phone number or contact our branch for assistance.\n\n" +
				"Would you like to try again with a different number? (Yes/No)",
			Outcome: OutcomeContinue,
		}, nil
	}

	// The offer lookup runs before anything is bound so a failure leaves
	// the session untouched.
	offer, err := m.directory.FindOfferByCustomerID(ctx, customer.ID)
	if err != nil {
		return Result{}, fmt.Errorf("offer lookup failed: %w", err)
	}

	sess.Customer = customer
	if offer != nil {
		sess.Offer = offer
		sess.Loan.InterestRate = offer.InterestRate
	}
	sess.VerificationState = StateConfirmIdentity
	m.logger.Info("VERIFICATION", "Customer matched", map[string]interface{}{
		"session_id": sess.ID, "customer_id": customer.ID, "offer_bound": offer != nil,
	})

	return Result{
		Message: fmt.Sprintf("Verification Successful!\n\n"+
			"I found your profile in our system:\n"+
			"Name: %s\n"+
			"City: %s\n"+
			"Phone: %s\n\n"+
			"Is this information correct? (Yes/No)",
			customer.Name, customer.City, customer.Phone),
		Outcome: OutcomeContinue,
	}, nil
}

func (m *Machine) processConfirmIdentity(sess *store.Session, input string) Result {
	answer := strings.ToLower(strings.TrimSpace(input))
	switch {
	case affirmatives[answer]:
		sess.Verified = true
		sess.VerificationState = StateComplete
		m.logger.Info("VERIFICATION", "Identity confirmed, proceeding to underwriting", map[string]interface{}{
			"session_id": sess.ID, "customer_id": sess.Customer.ID,
		})
		return Result{
			Message: "Great! Your identity has been verified. Let me now check your eligibility...",
			Outcome: OutcomeProceed,
		}
	case negatives[answer]:
		// Wrong match: drop the bound profile and start over.
		sess.Customer = nil
		sess.Offer = nil
		sess.VerificationState = StateAskPhone
		return Result{
			Message: "I apologize for the confusion. Please enter your registered phone number again.",
			Outcome: OutcomeContinue,
		}
	default:
		return Result{
			Message: "Please respond with 'Yes' if the details are correct or 'No' if they're not.",
			Outcome: OutcomeContinue,
		}
	}
}

func (m *Machine) processNotFound(sess *store.Session, input string) Result {
	answer := strings.ToLower(strings.TrimSpace(input))
	if answer == "yes" || answer == "y" {
		sess.VerificationState = StateAskPhone
		return Result{
			Message: "Please enter your registered 10-digit phone number.",
			Outcome: OutcomeContinue,
		}
	}
	sess.VerificationState = StateEnded
	return Result{
		Message: "Thank you for your interest. Please visit our nearest branch for assistance. Have a great day!",
		Outcome: OutcomeEnded,
	}
}

// NormalizePhone strips spaces and hyphens and accepts only exactly ten
// digits.
func NormalizePhone(input string) (string, bool) {
	s := strings.TrimSpace(input)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 10 {
		return "", false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return s, true
}
