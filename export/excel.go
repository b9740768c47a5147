// Package export renders recruiter-facing reports.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"talentscout/domain"
)

// WriteReport writes an xlsx workbook with a job summary sheet and a
// ranked-candidates sheet. Applications are expected in ranking order.
func WriteReport(w io.Writer, job *domain.Job, apps []domain.Application) error {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "Summary"
	candidatesSheet := "Ranked Candidates"

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return err
	}

	if err := writeSummarySheet(f, summarySheet, job, apps); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidatesSheet(f, candidatesSheet, apps); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, sheet string, job *domain.Job, apps []domain.Application) error {
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Candidate Ranking Report")
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	f.MergeCell(sheet, "A1", "B1")

	analyzed := 0
	for _, a := range apps {
		if a.Analyzed() {
			analyzed++
		}
	}

	rows := [][2]interface{}{
		{"Job Title:", job.Title},
		{"Department:", job.Department},
		{"Requirements:", job.Requirements},
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Total Applications:", len(apps)},
		{"Analyzed:", analyzed},
	}
	for i, r := range rows {
		row := i + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r[0])
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r[1])
	}
	return nil
}

func writeCandidatesSheet(f *excelize.File, sheet string, apps []domain.Application) error {
	headers := []string{"Rank", "Name", "Email", "Score", "Reasoning", "Strengths", "Weaknesses", "Submitted"}
	widths := []float64{6, 25, 30, 8, 50, 40, 40, 20}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	for i, hdr := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, hdr)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, app := range apps {
		row := i + 2
		score := ""
		reasoning := "Not analyzed"
		strengths := ""
		weaknesses := ""
		if app.AiAnalysis != nil {
			score = fmt.Sprintf("%d", app.AiAnalysis.Score)
			reasoning = app.AiAnalysis.Reasoning
			strengths = strings.Join(app.AiAnalysis.Strengths, "; ")
			weaknesses = strings.Join(app.AiAnalysis.Weaknesses, "; ")
		}
		values := []interface{}{
			i + 1,
			app.CandidateName,
			app.CandidateEmail,
			score,
			reasoning,
			strengths,
			weaknesses,
			app.SubmittedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}
	return nil
}
