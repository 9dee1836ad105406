package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"loan-origination-be/internal/dto"
	"loan-origination-be/internal/pkg/logger"
	"loan-origination-be/internal/repository/memory"
	"loan-origination-be/pkg/intake"
	"loan-origination-be/pkg/store"
	"loan-origination-be/pkg/underwriting"
	"loan-origination-be/pkg/verification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	customers map[string]*store.CustomerProfile
	offers    map[string]*store.Offer
	err       error
}

func (d *stubDirectory) FindCustomerByPhone(_ context.Context, phone string) (*store.CustomerProfile, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.customers[phone], nil
}

func (d *stubDirectory) FindOfferByCustomerID(_ context.Context, customerID string) (*store.Offer, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.offers[customerID], nil
}

type stubIssuer struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (i *stubIssuer) Issue(_ context.Context, sess *store.Session) (*store.DocumentReference, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	if i.fail {
		return nil, errors.New("pdf backend unavailable")
	}
	return &store.DocumentReference{
		Filename:    fmt.Sprintf("sanction_letter_%s_test.pdf", sess.Customer.ID),
		ReferenceNo: "CFL/PL/20260826/" + sess.Customer.ID,
	}, nil
}

type stubMailer struct {
	mu    sync.Mutex
	sent  int
	fail  bool
	toLog []string
}

func (m *stubMailer) SendSanctionLetter(toEmail, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent++
	m.toLog = append(m.toLog, toEmail)
	return nil
}

type stubEventPublisher struct {
	mu        sync.Mutex
	decisions int
	documents int
	ended     int
}

func (p *stubEventPublisher) PublishLoanDecision(_ context.Context, _, _, _ string, _ float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decisions++
}

func (p *stubEventPublisher) PublishDocumentIssued(_ context.Context, _, _, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.documents++
}

func (p *stubEventPublisher) PublishSessionEnded(_ context.Context, _, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended++
}

type stubAuditPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *stubAuditPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type testEnv struct {
	svc       IConversationService
	repo      *memory.SessionRepository
	directory *stubDirectory
	issuer    *stubIssuer
	mailer    *stubMailer
	events    *stubEventPublisher
	audit     *stubAuditPublisher
}

func newTestEnv() *testEnv {
	log := logger.NewNop()
	directory := &stubDirectory{
		customers: map[string]*store.CustomerProfile{
			"9876543210": {
				ID: "CUST001", Name: "Rahul Sharma", City: "Mumbai", Phone: "9876543210",
				Email: "rahul.sharma@example.com", CreditScore: 750, PreapprovedLimit: 500000, Salary: 85000,
			},
			"9123456780": {
				ID: "CUST002", Name: "Priya Patel", City: "Ahmedabad", Phone: "9123456780",
				Email: "priya.patel@example.com", CreditScore: 680, PreapprovedLimit: 300000, Salary: 60000,
			},
			"9090909090": {
				ID: "CUST004", Name: "Sneha Iyer", City: "Bengaluru", Phone: "9090909090",
				Email: "sneha.iyer@example.com", CreditScore: 720, PreapprovedLimit: 400000, Salary: 40000,
			},
		},
		offers: map[string]*store.Offer{
			"CUST001": {CustomerID: "CUST001", InterestRate: 9.25},
		},
	}

	env := &testEnv{
		repo:      memory.NewSessionRepository(time.Hour, time.Hour),
		directory: directory,
		issuer:    &stubIssuer{},
		mailer:    &stubMailer{},
		events:    &stubEventPublisher{},
		audit:     &stubAuditPublisher{},
	}
	env.svc = NewConversationService(
		env.repo,
		intake.NewMachine(log),
		verification.NewMachine(directory, log),
		env.issuer,
		env.mailer,
		env.events,
		env.audit,
		log,
		10.5,
		"http://localhost:3000/api/loan/v1/download",
	)
	return env
}

func (e *testEnv) turn(t *testing.T, sessionID, message string) *dto.ChatResponse {
	t.Helper()
	resp, err := e.svc.ProcessMessage(context.Background(), &dto.ChatRequest{SessionID: sessionID, Message: message})
	require.NoError(t, err)
	return resp
}

// advanceToVerification walks a fresh session up to the phone prompt.
func (e *testEnv) advanceToVerification(t *testing.T, amount, tenure string) string {
	t.Helper()
	resp := e.turn(t, "", "hi")
	id := resp.SessionID
	e.turn(t, id, amount)
	e.turn(t, id, tenure)
	resp = e.turn(t, id, "yes")
	require.Contains(t, resp.Message, "phone number")
	return id
}

func TestProcessMessage_GreetingStartsIntake(t *testing.T) {
	env := newTestEnv()

	resp := env.turn(t, "", "hello")

	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Message, "Personal Loan")
	assert.False(t, resp.SessionEnded)

	sess, found := env.repo.Get(resp.SessionID)
	require.True(t, found)
	assert.Equal(t, store.StageIntake, sess.Stage)
	assert.Equal(t, 10.5, sess.Loan.InterestRate)
}

func TestProcessMessage_FullApprovalFlow(t *testing.T) {
	env := newTestEnv()
	id := env.advanceToVerification(t, "300000", "24")

	resp := env.turn(t, id, "9876543210")
	assert.Contains(t, resp.Message, "Rahul Sharma")

	resp = env.turn(t, id, "yes")
	assert.Contains(t, resp.Message, "APPROVED")
	assert.Contains(t, resp.Message, "Sanction Letter")
	assert.True(t, resp.ShowDownload)
	require.NotNil(t, resp.DownloadFile)
	assert.Contains(t, *resp.DownloadFile, "sanction_letter_CUST001")

	sess, found := env.repo.Get(id)
	require.True(t, found)
	assert.Equal(t, store.StageCompleted, sess.Stage)
	require.NotNil(t, sess.Decision)
	assert.Equal(t, underwriting.OutcomeApproved, sess.Decision.Outcome)
	assert.Equal(t, 300000.0, sess.Decision.ApprovedAmount)
	// The bound offer overrides the default rate.
	assert.Equal(t, 9.25, sess.Loan.InterestRate)

	assert.Equal(t, 1, env.issuer.calls)
	assert.Equal(t, 1, env.events.decisions)
	assert.Equal(t, 1, env.events.documents)
	assert.Equal(t, 1, env.mailer.sent)
}

func TestProcessMessage_LowCreditScoreRejects(t *testing.T) {
	env := newTestEnv()
	id := env.advanceToVerification(t, "100000", "24")

	env.turn(t, id, "9123456780")
	resp := env.turn(t, id, "yes")

	assert.Contains(t, resp.Message, "NOT APPROVED")
	assert.Contains(t, resp.Message, "credit score")
	assert.True(t, resp.SessionEnded)

	sess, found := env.repo.Get(id)
	require.True(t, found)
	assert.Equal(t, store.StageEnded, sess.Stage)
	require.NotNil(t, sess.Decision)
	assert.Equal(t, underwriting.OutcomeRejected, sess.Decision.Outcome)
	assert.Zero(t, sess.Decision.ApprovedAmount)
	assert.Equal(t, 0, env.issuer.calls)
}

func TestProcessMessage_PendingIncomeProofThenApproval(t *testing.T) {
	env := newTestEnv()
	id := env.advanceToVerification(t, "900000", "60")

	env.turn(t, id, "9876543210")
	resp := env.turn(t, id, "yes")

	assert.Contains(t, resp.Message, "salary slip")
	assert.True(t, resp.ShowUpload)
	assert.False(t, resp.SessionEnded)

	sess, _ := env.repo.Get(id)
	assert.Equal(t, store.StageUnderwriting, sess.Stage)
	assert.Equal(t, store.UnderwritingAwaitingSlip, sess.UnderwritingState)

	// A chat turn while parked just reminds about the upload.
	resp = env.turn(t, id, "hello?")
	assert.Contains(t, resp.Message, "salary slip")
	assert.True(t, resp.ShowUpload)

	upload, err := env.svc.ProcessUpload(context.Background(), id, "uploads/salary_test.pdf")
	require.NoError(t, err)
	assert.True(t, upload.Success)
	assert.Contains(t, upload.Message, "APPROVED")
	assert.True(t, upload.ShowDownload)
	require.NotNil(t, upload.DownloadFile)

	sess, _ = env.repo.Get(id)
	assert.Equal(t, store.StageCompleted, sess.Stage)
	assert.True(t, sess.SalarySlipUploaded)
	assert.Equal(t, "uploads/salary_test.pdf", sess.SalarySlipPath)
}

func TestProcessUpload_HighEMIRatioRejects(t *testing.T) {
	env := newTestEnv()
	id := env.advanceToVerification(t, "700000", "24")

	env.turn(t, id, "9090909090")
	resp := env.turn(t, id, "yes")
	require.True(t, resp.ShowUpload)

	upload, err := env.svc.ProcessUpload(context.Background(), id, "uploads/salary_test.pdf")
	require.NoError(t, err)
	assert.Contains(t, upload.Message, "NOT APPROVED")
	assert.Contains(t, upload.Message, "50%")
	assert.True(t, upload.SessionEnded)

	sess, _ := env.repo.Get(id)
	assert.Equal(t, store.StageEnded, sess.Stage)
	assert.Equal(t, underwriting.OutcomeRejected, sess.Decision.Outcome)
}

func TestProcessUpload_WrongStateRejected(t *testing.T) {
	env := newTestEnv()
	resp := env.turn(t, "", "hi")

	_, err := env.svc.ProcessUpload(context.Background(), resp.SessionID, "uploads/x.pdf")
	assert.ErrorIs(t, err, ErrNotAwaitingUpload)

	_, err = env.svc.ProcessUpload(context.Background(), "no-such-session", "uploads/x.pdf")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestProcessMessage_CancelDuringIntake(t *testing.T) {
	env := newTestEnv()
	resp := env.turn(t, "", "hi")
	id := resp.SessionID
	env.turn(t, id, "300000")
	env.turn(t, id, "24")

	resp = env.turn(t, id, "no")
	assert.True(t, resp.SessionEnded)
	assert.Contains(t, resp.Message, "change your mind")

	sess, _ := env.repo.Get(id)
	assert.Equal(t, store.StageEnded, sess.Stage)
	assert.Equal(t, 1, env.events.ended)

	// Further turns get the terminal message.
	resp = env.turn(t, id, "hello again")
	assert.True(t, resp.SessionEnded)
	assert.Contains(t, resp.Message, "conversation has ended")
}

func TestProcessMessage_IssuanceFailureIsRetriable(t *testing.T) {
	env := newTestEnv()
	env.issuer.fail = true
	id := env.advanceToVerification(t, "300000", "24")
	env.turn(t, id, "9876543210")

	_, err := env.svc.ProcessMessage(context.Background(), &dto.ChatRequest{SessionID: id, Message: "yes"})
	require.Error(t, err)

	// The approval is committed; only issuance is pending.
	sess, found := env.repo.Get(id)
	require.True(t, found)
	assert.Equal(t, store.StageIssuance, sess.Stage)
	require.NotNil(t, sess.Decision)
	assert.Equal(t, underwriting.OutcomeApproved, sess.Decision.Outcome)
	assert.Equal(t, 300000.0, sess.Decision.ApprovedAmount)

	env.issuer.fail = false
	resp := env.turn(t, id, "retry please")
	assert.True(t, resp.ShowDownload)
	assert.Contains(t, resp.Message, "Sanction Letter")

	sess, _ = env.repo.Get(id)
	assert.Equal(t, store.StageCompleted, sess.Stage)
	assert.Equal(t, 2, env.issuer.calls)
	// The decision event fired once; the retry only issues.
	assert.Equal(t, 1, env.events.decisions)
}

func TestProcessMessage_LookupFailureLeavesSessionRetriable(t *testing.T) {
	env := newTestEnv()
	id := env.advanceToVerification(t, "300000", "24")

	env.directory.err = errors.New("crm unreachable")
	_, err := env.svc.ProcessMessage(context.Background(), &dto.ChatRequest{SessionID: id, Message: "9876543210"})
	require.Error(t, err)

	sess, found := env.repo.Get(id)
	require.True(t, found)
	assert.Equal(t, store.StageVerification, sess.Stage)
	assert.Nil(t, sess.Customer)

	// Same input succeeds once the collaborator recovers.
	env.directory.err = nil
	resp := env.turn(t, id, "9876543210")
	assert.Contains(t, resp.Message, "Rahul Sharma")
}

func TestProcessMessage_MailerFailureDoesNotFailTurn(t *testing.T) {
	env := newTestEnv()
	env.mailer.fail = true
	id := env.advanceToVerification(t, "300000", "24")
	env.turn(t, id, "9876543210")

	resp := env.turn(t, id, "yes")
	assert.True(t, resp.ShowDownload)

	sess, _ := env.repo.Get(id)
	assert.Equal(t, store.StageCompleted, sess.Stage)
}

func TestReset(t *testing.T) {
	env := newTestEnv()
	resp := env.turn(t, "", "hi")

	require.NoError(t, env.svc.Reset(context.Background(), resp.SessionID))
	_, found := env.repo.Get(resp.SessionID)
	assert.False(t, found)

	assert.ErrorIs(t, env.svc.Reset(context.Background(), resp.SessionID), ErrSessionNotFound)
}

func TestProcessMessage_ConcurrentTurnsSerialized(t *testing.T) {
	env := newTestEnv()
	resp := env.turn(t, "", "hi")
	id := resp.SessionID

	// Hammer a single session with concurrent garbage turns; the per-session
	// lock must keep the record consistent.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.ProcessMessage(context.Background(), &dto.ChatRequest{SessionID: id, Message: "not a number"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, found := env.repo.Get(id)
	require.True(t, found)
	assert.Equal(t, store.StageIntake, sess.Stage)
	assert.Zero(t, sess.Loan.Amount)
}
