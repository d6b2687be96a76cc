// Package bootreport generates the §4.11 ground-maintenance artifact: a PDF
// page listing pass/fail per boot self-test and transceiver bring-up step,
// the gathered subsystem software/hardware version table, and a QR code
// encoding the program CRC and device identifier. Grounded on the
// reference pack's gofpdf/go-qrcode report generator
// (internal/report/pdf.go, internal/report/qr.go), adapted from an
// acceptance-report table layout to a boot-status one.
package bootreport

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/archangelsys/afc004-iop/internal/bootstrap"
)

// Report is everything one boot cycle needs to render a report.
type Report struct {
	DeviceID   string
	ProgramCRC uint32
	BootSteps  []bootstrap.BootStep
	Versions   [3][16]byte
	Reason     string
}

var subsystemNames = [3]string{"afc004", "adc", "pitot_aoa"}

// Generate renders rep as a one-page PDF at outPath.
func Generate(rep Report, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("AFC004-IOP Boot Report", false)
	pdf.SetAuthor("afc004-iop", false)
	pdf.SetCreator("afc004-iop", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addTitle(pdf, "Boot Report")
	addSummary(pdf, rep)
	addBootStepsTable(pdf, rep.BootSteps)
	addVersionTable(pdf, rep.Versions)
	if err := addQRCode(pdf, rep); err != nil {
		return fmt.Errorf("bootreport: qr code: %w", err)
	}

	if pdf.Err() {
		return fmt.Errorf("bootreport: render: %w", pdf.Error())
	}
	return pdf.OutputFileAndClose(outPath)
}

func addTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummary(pdf *gofpdf.Fpdf, rep Report) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	rows := []struct{ label, value string }{
		{"Device ID", rep.DeviceID},
		{"Program CRC", fmt.Sprintf("%#08X", rep.ProgramCRC)},
		{"Overall", passLabel(allPassed(rep.BootSteps))},
		{"Reason", emptyFallback(rep.Reason, "-")},
	}
	for _, r := range rows {
		pdf.CellFormat(45, 6, r.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, r.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addBootStepsTable(pdf *gofpdf.Fpdf, steps []bootstrap.BootStep) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Boot Steps")
	pdf.Ln(9)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 7, "Step", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Result", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, s := range steps {
		pdf.CellFormat(120, 6, s.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, passLabel(s.Passed), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addVersionTable(pdf *gofpdf.Fpdf, versions [3][16]byte) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Software/Hardware Versions")
	pdf.Ln(9)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 7, "Subsystem", "1", 0, "L", true, 0, "")
	pdf.CellFormat(120, 7, "Bytes", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, name := range subsystemNames {
		pdf.CellFormat(40, 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(120, 6, fmt.Sprintf("% X", versions[i]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addQRCode(pdf *gofpdf.Fpdf, rep Report) error {
	payload := fmt.Sprintf("crc=%08X;device=%s", rep.ProgramCRC, rep.DeviceID)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return err
	}
	img := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr-"+rep.DeviceID, img, bytes.NewReader(png))
	pdf.ImageOptions("qr-"+rep.DeviceID, 15, pdf.GetY(), 35, 35, false, img, 0, "")
	pdf.Ln(38)
	return nil
}

func passLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func allPassed(steps []bootstrap.BootStep) bool {
	for _, s := range steps {
		if !s.Passed {
			return false
		}
	}
	return true
}

func emptyFallback(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
