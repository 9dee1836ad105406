// Package sanction produces the formatted offer document for an approved
// loan. The orchestrator only depends on the Issuer contract; the PDF
// generator is the production implementation.
package sanction

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"loan-origination-be/internal/pkg/logger"
	"loan-origination-be/pkg/store"
)

// Issuer turns an approved session snapshot into a downloadable document.
// It is invoked exactly once per approved session; a failure must leave the
// session's committed decision intact so the caller can retry.
type Issuer interface {
	Issue(ctx context.Context, sess *store.Session) (*store.DocumentReference, error)
}

// PDFGenerator writes sanction letters as PDF files under outputDir.
type PDFGenerator struct {
	outputDir string
	logger    logger.ILogger
}

func NewPDFGenerator(outputDir string, log logger.ILogger) *PDFGenerator {
	return &PDFGenerator{outputDir: outputDir, logger: log}
}

func (g *PDFGenerator) Issue(_ context.Context, sess *store.Session) (*store.DocumentReference, error) {
	if sess.Customer == nil {
		return nil, fmt.Errorf("cannot issue sanction letter: no customer bound to session %s", sess.ID)
	}
	if sess.Decision == nil || sess.Decision.ApprovedAmount <= 0 {
		return nil, fmt.Errorf("cannot issue sanction letter: session %s has no approved decision", sess.ID)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	now := time.Now()
	customer := sess.Customer
	refNo := fmt.Sprintf("CFL/PL/%s/%s", now.Format("20060102"), customer.ID)
	filename := fmt.Sprintf("sanction_letter_%s_%s.pdf", customer.ID, now.Format("20060102_150405"))

	amount := sess.Decision.ApprovedAmount
	tenure := sess.Loan.TenureMonths
	rate := sess.Loan.InterestRate
	payment := sess.Loan.Payment
	totalPayable := payment * float64(tenure)
	totalInterest := totalPayable - amount

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "CAPITAL FINANCE LTD.", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "(A Non-Banking Financial Company)", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(160, 30, 30)
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 8, "SANCTION LETTER", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Reference No: %s", refNo), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", now.Format("January 02, 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.CellFormat(0, 6, "To,", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, customer.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, customer.City, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Phone: %s", customer.Phone), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Subject: Sanction of Personal Loan", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "We are pleased to inform you that your Personal Loan application has been approved. "+
		"Please find below the details of your sanctioned loan:", "", "L", false)
	pdf.Ln(4)

	rows := [][2]string{
		{"Loan Amount", fmt.Sprintf("Rs. %.0f", amount)},
		{"Loan Tenure", fmt.Sprintf("%d months", tenure)},
		{"Interest Rate", fmt.Sprintf("%.2f%% per annum", rate)},
		{"Monthly EMI", fmt.Sprintf("Rs. %.0f", payment)},
		{"Total Interest Payable", fmt.Sprintf("Rs. %.0f", totalInterest)},
		{"Total Amount Payable", fmt.Sprintf("Rs. %.0f", totalPayable)},
		{"Processing Fee", "Nil (Waived)"},
		{"Prepayment Charges", "Nil after 6 EMIs"},
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(26, 54, 93)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(85, 8, "Particulars", "1", 0, "L", true, 0, "")
	pdf.CellFormat(85, 8, "Details", "1", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(247, 250, 252)
	for _, row := range rows {
		pdf.CellFormat(85, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(85, 8, row[1], "1", 1, "L", true, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Terms and Conditions:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	terms := []string{
		"1. This sanction is valid for 30 days from the date of this letter.",
		"2. The loan amount will be disbursed to your registered bank account within 48 hours of document submission.",
		"3. EMI will be auto-debited from your bank account on the 5th of every month.",
		"4. Prepayment is allowed after completion of 6 EMIs without any charges.",
		"5. In case of default, penal interest of 2% per month will be charged on the overdue amount.",
		"6. This sanction is subject to the terms mentioned in the loan agreement.",
	}
	for _, term := range terms {
		pdf.MultiCell(0, 5, term, "", "L", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "Please sign and return the enclosed loan agreement along with the required documents to complete the disbursement process.", "", "L", false)
	pdf.Ln(2)
	pdf.MultiCell(0, 6, "Congratulations and thank you for choosing Capital Finance Ltd.!", "", "L", false)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "For Capital Finance Ltd.", "", 1, "L", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "_______________________", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Authorized Signatory", "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "This is a system-generated letter and does not require a physical signature.", "", 1, "C", false, 0, "")

	path := filepath.Join(g.outputDir, filename)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return nil, fmt.Errorf("failed to write sanction letter: %w", err)
	}

	g.logger.Info("SANCTION", "Sanction letter generated", map[string]interface{}{
		"session_id": sess.ID, "customer_id": customer.ID, "filename": filename, "reference_no": refNo,
	})

	return &store.DocumentReference{Filename: filename, ReferenceNo: refNo}, nil
}
