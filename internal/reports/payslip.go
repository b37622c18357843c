package reports

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"paymaster/internal/domain/payroll"
)

// StubPDF renders one employee's pay stub to a PDF under dir and returns the
// file path.
func StubPDF(dir string, stub payroll.PayStub, period payroll.PayPeriod) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(dir, fmt.Sprintf("%s_%s.pdf", stub.EmployeeID, period.Key()))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Pay Stub")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", stub.EmployeeName, stub.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", formatDate(period.StartDate), formatDate(period.EndDate)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Pay date: %s", formatDate(period.PayDate)))
	pdf.Ln(10)

	pdf.Cell(0, 8, fmt.Sprintf("Gross Pay: %s", FormatUSD(stub.GrossPay)))
	pdf.Ln(7)
	if stub.Hourly != nil {
		pdf.Cell(0, 8, fmt.Sprintf("  Regular: %.2f hrs at %s = %s", stub.Hourly.RegularHours, FormatUSD(stub.Hourly.HourlyRate), FormatUSD(stub.Hourly.RegularPay)))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("  Overtime: %.2f hrs = %s", stub.Hourly.OvertimeHours, FormatUSD(stub.Hourly.OvertimePay)))
		pdf.Ln(7)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Taxes")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range stub.TaxBreakdown {
		pdf.Cell(0, 8, fmt.Sprintf("  %s: %s", line.Name, FormatUSD(line.Amount)))
		pdf.Ln(7)
	}

	if len(stub.DeductionsBreakdown) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Deductions")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 12)
		for _, line := range stub.DeductionsBreakdown {
			tag := "post-tax"
			if line.PreTax {
				tag = "pre-tax"
			}
			pdf.Cell(0, 8, fmt.Sprintf("  %s (%s): %s", line.Name, tag, FormatUSD(line.Amount)))
			pdf.Ln(7)
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net Pay: %s", FormatUSD(stub.NetPay)))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
