package service

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

func CSVExport(data [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	for _, value := range data {
		if err := writer.Write(value); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func PDFExport(data [][]string, columnWidths []int, name string) ([]byte, error) {
	buf := bytes.Buffer{}

	pdf := newReport(name)
	pdf = header(pdf, data[0], columnWidths)
	pdf = table(pdf, data[1:], columnWidths)

	err := pdf.Output(&buf)

	return buf.Bytes(), err
}

func newReport(name string) *gofpdf.Fpdf {
	pdf := gofpdf.New("L", "mm", "Legal", "")
	pdf.AddPage()

	pdf.SetFont("Times", "B", 28)
	pdf.Cell(40, 10, name)
	pdf.Ln(12)

	pdf.SetFont("Times", "", 20)
	pdf.Cell(40, 10, time.Now().Format("2 Jan 2006 15:04:05"))
	pdf.Ln(20)

	return pdf
}

func header(pdf *gofpdf.Fpdf, hdr []string, widths []int) *gofpdf.Fpdf {
	pdf.SetFont("Times", "B", 12)
	pdf.SetFillColor(240, 240, 240)

	for i, str := range hdr {
		pdf.CellFormat(float64(widths[i]), 7, str, "1", 0, "", true, 0, "")
	}

	pdf.Ln(-1)
	return pdf
}

func table(pdf *gofpdf.Fpdf, tbl [][]string, widths []int) *gofpdf.Fpdf {
	pdf.SetFont("Times", "", 12)
	pdf.SetFillColor(255, 255, 255)

	for _, line := range tbl {
		for i, str := range line {
			pdf.CellFormat(float64(widths[i]), 7, str, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf
}
