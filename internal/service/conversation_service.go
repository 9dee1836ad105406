package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-origination-be/internal/dto"
	"loan-origination-be/internal/events"
	"loan-origination-be/internal/pkg/logger"
	"loan-origination-be/internal/pkg/mailer"
	"loan-origination-be/internal/repository/memory"
	"loan-origination-be/pkg/intake"
	"loan-origination-be/pkg/sanction"
	"loan-origination-be/pkg/store"
	"loan-origination-be/pkg/underwriting"
	"loan-origination-be/pkg/verification"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned for upload or reset calls that name an
	// unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotAwaitingUpload is returned when an upload event arrives while the
	// session is not parked on income-proof verification.
	ErrNotAwaitingUpload = errors.New("session is not awaiting a salary slip")
)

type IConversationService interface {
	// ProcessMessage runs one user turn. An empty session id starts a new
	// conversation.
	ProcessMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	// ProcessUpload resumes a session parked on income-proof verification
	// after a salary slip has been stored at slipPath.
	ProcessUpload(ctx context.Context, sessionID, slipPath string) (*dto.UploadResponse, error)
	// Reset discards a session so the caller can start over.
	Reset(ctx context.Context, sessionID string) error
}

type conversationService struct {
	sessionRepo      *memory.SessionRepository
	intakeMachine    *intake.Machine
	verifyMachine    *verification.Machine
	issuer           sanction.Issuer
	emailService     mailer.IEmailService
	eventPublisher   events.Publisher
	publisherService IPublisherService
	logger           logger.ILogger
	defaultRate      float64
	downloadBaseURL  string
}

func NewConversationService(
	sessionRepo *memory.SessionRepository,
	intakeMachine *intake.Machine,
	verifyMachine *verification.Machine,
	issuer sanction.Issuer,
	emailService mailer.IEmailService,
	eventPublisher events.Publisher,
	publisherService IPublisherService,
	logger logger.ILogger,
	defaultRate float64,
	downloadBaseURL string,
) IConversationService {
	return &conversationService{
		sessionRepo:      sessionRepo,
		intakeMachine:    intakeMachine,
		verifyMachine:    verifyMachine,
		issuer:           issuer,
		emailService:     emailService,
		eventPublisher:   eventPublisher,
		publisherService: publisherService,
		logger:           logger,
		defaultRate:      defaultRate,
		downloadBaseURL:  downloadBaseURL,
	}
}

func (s *conversationService) ProcessMessage(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	unlock := s.sessionRepo.Lock(sessionID)
	defer unlock()

	sess, found := s.sessionRepo.Get(sessionID)
	if !found {
		sess = s.newSession(sessionID)
		s.logger.Info("CONVERSATION", "New session started", map[string]interface{}{"session_id": sessionID})
	}

	resp := &dto.ChatResponse{SessionID: sessionID}

	switch sess.Stage {
	case store.StageGreeting:
		// The first turn is consumed by the greeting; intake starts on the
		// next one.
		sess.Stage = store.StageIntake
		sess.IntakeState = intake.StateAskAmount
		appendMessage(resp, s.intakeMachine.OpeningPrompt())

	case store.StageIntake:
		res := s.intakeMachine.Process(sess, req.Message)
		appendMessage(resp, res.Message)
		switch res.Outcome {
		case intake.OutcomeProceed:
			sess.Stage = store.StageVerification
			sess.VerificationState = verification.StateAskPhone
			appendMessage(resp, s.verifyMachine.OpeningPrompt())
		case intake.OutcomeCancelled:
			s.endSession(ctx, sess, resp)
		}

	case store.StageVerification:
		res, err := s.verifyMachine.Process(ctx, sess, req.Message)
		if err != nil {
			// The machine guarantees no mutation happened; the same turn can
			// be retried.
			s.logger.Error("CONVERSATION", "Verification turn failed", map[string]interface{}{
				"session_id": sessionID, "error": err.Error(),
			})
			return nil, err
		}
		appendMessage(resp, res.Message)
		switch res.Outcome {
		case verification.OutcomeProceed:
			if err := s.runUnderwriting(ctx, sess, resp); err != nil {
				return nil, err
			}
		case verification.OutcomeEnded:
			s.endSession(ctx, sess, resp)
		}

	case store.StageUnderwriting:
		if sess.UnderwritingState == store.UnderwritingAwaitingSlip {
			appendMessage(resp, "I'm still waiting for your salary slip.\n\n"+
				"Please use the 'Upload Salary Slip' button below to continue with your application.")
			resp.ShowUpload = true
		} else {
			appendMessage(resp, "Your application is being processed. Please wait a moment...")
		}

	case store.StageIssuance:
		// The approval is already committed; a failed issuance attempt left
		// the session here, so just retry it.
		if err := s.issueAndComplete(ctx, sess, resp); err != nil {
			return nil, err
		}

	case store.StageCompleted:
		appendMessage(resp, "Your loan has been processed and your sanction letter is ready.\n\n"+
			"Use the download button below to get your copy. Thank you for choosing us!")
		if sess.Document != nil {
			resp.ShowDownload = true
			resp.DownloadFile = &sess.Document.Filename
		}

	case store.StageEnded:
		appendMessage(resp, "This conversation has ended. Please start a new conversation to apply for a loan.")
		resp.SessionEnded = true

	default:
		s.logger.Error("CONVERSATION", "Session in unexpected stage, disposing", map[string]interface{}{
			"session_id": sessionID, "stage": sess.Stage,
		})
		s.sessionRepo.Delete(sessionID)
		resp.Message = "I'm sorry, something went wrong on our side. Please start a new conversation."
		resp.SessionEnded = true
		return resp, nil
	}

	s.sessionRepo.Save(sess)
	s.publishAudit(ctx, sess, "CHAT_TURN", resp.Message)

	return resp, nil
}

func (s *conversationService) ProcessUpload(ctx context.Context, sessionID, slipPath string) (*dto.UploadResponse, error) {
	unlock := s.sessionRepo.Lock(sessionID)
	defer unlock()

	sess, found := s.sessionRepo.Get(sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}
	if sess.Stage != store.StageUnderwriting || sess.UnderwritingState != store.UnderwritingAwaitingSlip {
		return nil, ErrNotAwaitingUpload
	}

	decision, err := underwriting.EvaluateIncomeProof(s.factsFor(sess))
	if err != nil {
		return nil, err
	}

	sess.SalarySlipUploaded = true
	sess.SalarySlipPath = slipPath
	sess.Loan.Payment = decision.Payment

	chatResp := &dto.ChatResponse{SessionID: sessionID}
	appendMessage(chatResp, "Salary slip received! Verifying your income...")
	appendMessage(chatResp, decision.Message)

	if err := s.applyDecision(ctx, sess, decision, chatResp); err != nil {
		s.sessionRepo.Save(sess)
		return nil, err
	}

	s.sessionRepo.Save(sess)
	s.publishAudit(ctx, sess, "SALARY_SLIP_UPLOAD", decision.Outcome)

	return &dto.UploadResponse{
		Success:      true,
		Message:      chatResp.Message,
		ShowDownload: chatResp.ShowDownload,
		DownloadFile: chatResp.DownloadFile,
		SessionEnded: chatResp.SessionEnded,
	}, nil
}

func (s *conversationService) Reset(ctx context.Context, sessionID string) error {
	unlock := s.sessionRepo.Lock(sessionID)
	defer unlock()

	if _, found := s.sessionRepo.Get(sessionID); !found {
		return ErrSessionNotFound
	}
	s.sessionRepo.Delete(sessionID)
	s.logger.Info("CONVERSATION", "Session reset", map[string]interface{}{"session_id": sessionID})
	s.publishAudit(ctx, &store.Session{ID: sessionID, Stage: store.StageEnded}, "SESSION_RESET", "")
	return nil
}

func (s *conversationService) newSession(sessionID string) *store.Session {
	return &store.Session{
		ID:                sessionID,
		Stage:             store.StageGreeting,
		IntakeState:       intake.StateAskAmount,
		VerificationState: verification.StateAskPhone,
		Loan:              store.LoanDetails{InterestRate: s.defaultRate},
		CreatedAt:         time.Now(),
	}
}

// runUnderwriting evaluates the first-pass rules synchronously in the same
// turn that completed verification.
func (s *conversationService) runUnderwriting(ctx context.Context, sess *store.Session, resp *dto.ChatResponse) error {
	decision, err := underwriting.Evaluate(s.factsFor(sess))
	if err != nil {
		return err
	}

	sess.Stage = store.StageUnderwriting
	sess.Loan.Payment = decision.Payment
	appendMessage(resp, decision.Message)

	return s.applyDecision(ctx, sess, decision, resp)
}

// applyDecision commits an underwriting verdict to the session and drives
// the follow-on transition: issuance for approvals, parking for pending
// income proof, termination for rejections.
func (s *conversationService) applyDecision(ctx context.Context, sess *store.Session, decision underwriting.Decision, resp *dto.ChatResponse) error {
	sess.Decision = &store.DecisionRecord{
		Outcome:        decision.Outcome,
		Reason:         decision.Reason,
		ApprovedAmount: decision.ApprovedAmount,
	}
	s.eventPublisher.PublishLoanDecision(ctx, sess.ID, decision.Outcome, decision.Reason, decision.ApprovedAmount)

	switch decision.Outcome {
	case underwriting.OutcomeApproved:
		sess.UnderwritingState = store.UnderwritingApproved
		sess.Stage = store.StageIssuance
		return s.issueAndComplete(ctx, sess, resp)

	case underwriting.OutcomePendingIncomeProof:
		sess.UnderwritingState = store.UnderwritingAwaitingSlip
		resp.ShowUpload = true

	case underwriting.OutcomeRejected:
		sess.UnderwritingState = store.UnderwritingRejected
		s.endSession(ctx, sess, resp)
	}
	return nil
}

// issueAndComplete generates the sanction letter for a committed approval.
// On failure the session stays in the issuance stage with the approval
// intact, so the next turn retries.
func (s *conversationService) issueAndComplete(ctx context.Context, sess *store.Session, resp *dto.ChatResponse) error {
	doc, err := s.issuer.Issue(ctx, sess)
	if err != nil {
		s.logger.Error("CONVERSATION", "Sanction letter generation failed", map[string]interface{}{
			"session_id": sess.ID, "error": err.Error(),
		})
		s.sessionRepo.Save(sess)
		return fmt.Errorf("sanction letter generation failed: %w", err)
	}

	sess.Document = doc
	sess.Stage = store.StageCompleted
	resp.ShowDownload = true
	resp.DownloadFile = &doc.Filename

	appendMessage(resp, fmt.Sprintf("Your Sanction Letter has been generated!\n\n"+
		"Reference No: %s\n\n"+
		"Click the download button below to get your copy. Thank you for choosing us!", doc.ReferenceNo))

	s.eventPublisher.PublishDocumentIssued(ctx, sess.ID, doc.Filename, doc.ReferenceNo)

	if sess.Customer != nil && sess.Customer.Email != "" {
		downloadURL := s.downloadBaseURL + "/" + doc.Filename
		if err := s.emailService.SendSanctionLetter(sess.Customer.Email, sess.Customer.Name, doc.ReferenceNo, downloadURL); err != nil {
			s.logger.Warn("CONVERSATION", "Failed to email sanction letter", map[string]interface{}{
				"session_id": sess.ID, "error": err.Error(),
			})
		}
	}
	return nil
}

func (s *conversationService) endSession(ctx context.Context, sess *store.Session, resp *dto.ChatResponse) {
	sess.Stage = store.StageEnded
	resp.SessionEnded = true
	s.eventPublisher.PublishSessionEnded(ctx, sess.ID, sess.Stage)
}

func (s *conversationService) factsFor(sess *store.Session) underwriting.Facts {
	facts := underwriting.Facts{
		RequestedAmount:   sess.Loan.Amount,
		TenureMonths:      sess.Loan.TenureMonths,
		AnnualRatePercent: sess.Loan.InterestRate,
	}
	if sess.Customer != nil {
		facts.CreditScore = sess.Customer.CreditScore
		facts.PreapprovedLimit = sess.Customer.PreapprovedLimit
		facts.MonthlySalary = sess.Customer.Salary
	}
	return facts
}

func (s *conversationService) publishAudit(ctx context.Context, sess *store.Session, event, detail string) {
	if len(detail) > 500 {
		detail = detail[:500]
	}
	payload, err := json.Marshal(dto.AuditMessage{
		SessionID: sess.ID,
		Stage:     sess.Stage,
		Event:     event,
		Detail:    detail,
	})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("CONVERSATION", "Failed to publish audit message", map[string]interface{}{
			"session_id": sess.ID, "error": err.Error(),
		})
	}
}

// appendMessage joins multiple stage messages emitted in a single turn.
func appendMessage(resp *dto.ChatResponse, msg string) {
	if msg == "" {
		return
	}
	if resp.Message == "" {
		resp.Message = msg
		return
	}
	resp.Message += "\n\n" + msg
}
