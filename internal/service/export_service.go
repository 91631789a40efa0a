package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/exam"
	"github.com/eduassess/eduassess-backend/internal/model"
)

// ExportService renders a submission into a printable PDF, question by
// question in the paper's order.
type ExportService struct {
	log zerolog.Logger
}

// NewExportService creates a new ExportService.
func NewExportService(log zerolog.Logger) *ExportService {
	return &ExportService{
		log: log.With().Str("component", "export_service").Logger(),
	}
}

// RenderSubmission produces the PDF bytes for one submission. The paper may
// be nil when the exam was deleted; answers are then rendered in map order
// without question texts.
func (s *ExportService) RenderSubmission(sub *model.Submission, paper *model.QuestionPaper) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, sub.PaperTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Student: %s (Grade %s)", sub.StudentName, sub.StudentGrade), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Submitted: %s", sub.SubmittedAt.Format("2006-01-02 15:04 MST")), "", 1, "", false, 0, "")
	pdf.Ln(4)

	if paper != nil {
		for i := range paper.Questions {
			q := &paper.Questions[i]
			ans := sub.Answers[q.ID.String()]
			s.renderAnswer(pdf, i+1, q.Text, &ans)
		}
	} else {
		num := 1
		for _, ans := range sub.Answers {
			a := ans
			s.renderAnswer(pdf, num, "", &a)
			num++
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) renderAnswer(pdf *gofpdf.Fpdf, num int, questionText string, ans *model.AnswerSubmission) {
	pdf.SetFont("Arial", "B", 11)
	if questionText != "" {
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", num, questionText), "", "", false)
	} else {
		pdf.CellFormat(0, 6, fmt.Sprintf("%d.", num), "", 1, "", false, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	text := strings.TrimSpace(exam.StripTableMarker(ans.AnswerText))
	if text == "" && ans.ImageURI == "" && len(ans.Table) == 0 {
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, "(no answer)", "", 1, "", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(3)
		return
	}

	if text != "" {
		pdf.MultiCell(0, 6, text, "", "", false)
	}

	if len(ans.Table) > 0 {
		s.renderTable(pdf, ans.Table)
	}

	if ans.ImageURI != "" {
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, "[image attached]", "", 1, "", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.Ln(3)
}

func (s *ExportService) renderTable(pdf *gofpdf.Fpdf, table [][]string) {
	cols := 0
	for _, row := range table {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}

	colWidth := 180.0 / float64(cols)
	for _, row := range table {
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			pdf.CellFormat(colWidth, 7, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(1)
}
