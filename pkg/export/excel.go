package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/artem13815/jobdash/pkg/grouping"
	"github.com/artem13815/jobdash/pkg/job"
)

const (
	SheetSummary = "Summary"
	SheetRanked  = "Ranked Jobs"
	SheetGroups  = "Groups"
)

// Report is everything the workbook shows. Jobs are expected ranked, best
// first.
type Report struct {
	GeneratedAt time.Time
	Jobs        []job.Analyzed
	Groups      []grouping.Group
	Summary     grouping.Summary
	CVSource    string
}

// Write renders the workbook into w.
func Write(w io.Writer, r Report) error {
	f, err := build(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveAs renders the workbook to path, adding the .xlsx extension if missing.
func SaveAs(path string, r Report) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)
	f, err := build(r)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func build(r Report) (*excelize.File, error) {
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now()
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetRanked, SheetGroups} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := summarySheet(f, st, r); err != nil {
		f.Close()
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	if err := rankedSheet(f, st, r.Jobs); err != nil {
		f.Close()
		return nil, fmt.Errorf("ranked sheet: %w", err)
	}
	if err := groupsSheet(f, st, r.Groups); err != nil {
		f.Close()
		return nil, fmt.Errorf("groups sheet: %w", err)
	}
	return f, nil
}

type styles struct {
	header, label int
	// by urgency
	rows map[job.Urgency]int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	var st styles
	var err error
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return st, err
	}
	st.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return st, err
	}
	st.rows = make(map[job.Urgency]int, 4)
	for u, color := range map[job.Urgency]string{
		job.UrgencyImmediate: "C6EFCE",
		job.UrgencyHigh:      "FFEB9C",
		job.UrgencyMedium:    "FFF2CC",
		job.UrgencyLow:       "FFC7CE",
	} {
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: border,
		})
		if err != nil {
			return st, err
		}
		st.rows[u] = id
	}
	return st, nil
}

func summarySheet(f *excelize.File, st styles, r Report) error {
	sh := SheetSummary
	if err := f.SetColWidth(sh, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sh, "B", "B", 40); err != nil {
		return err
	}
	cvSource := r.CVSource
	if cvSource == "" {
		cvSource = "not loaded"
	}
	counts := make(map[job.Urgency]int, 4)
	total := 0
	for _, j := range r.Jobs {
		counts[j.Analysis.Composite.ApplicationUrgency]++
		total += j.TotalScore()
	}
	avg := 0.0
	if len(r.Jobs) > 0 {
		avg = float64(total) / float64(len(r.Jobs))
	}
	rows := [][]any{
		{"Job Search Report", ""},
		{},
		{"Generated:", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"CV:", cvSource},
		{"Ranked jobs:", len(r.Jobs)},
		{"Average total score:", fmt.Sprintf("%.1f", avg)},
		{"Immediate:", counts[job.UrgencyImmediate]},
		{"High:", counts[job.UrgencyHigh]},
		{"Medium:", counts[job.UrgencyMedium]},
		{"Low:", counts[job.UrgencyLow]},
		{},
		{"Groups:", r.Summary.TotalGroups},
		{"Grouped jobs:", r.Summary.TotalJobs},
		{"Jobs per group:", r.Summary.AvgJobsPerGroup},
	}
	for _, c := range r.Summary.TopCompanies {
		rows = append(rows, []any{"Top company: " + c.Name, c.Count})
	}
	for _, c := range r.Summary.TopCities {
		rows = append(rows, []any{"Top city: " + c.Name, c.Count})
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sh, cell, &row); err != nil {
			return err
		}
		if err := f.SetCellStyle(sh, cell, cell, st.label); err != nil {
			return err
		}
	}
	if err := f.MergeCell(sh, "A1", "B1"); err != nil {
		return err
	}
	return f.SetCellStyle(sh, "A1", "B1", st.header)
}

var rankedHeaders = []string{
	"Rank", "Title", "Company", "Location", "Work", "Salary", "Total", "CV Match",
	"Quality", "Urgency", "Language", "Category", "Seniority", "Matching Skills",
	"Missing Skills", "Source", "URL",
}

func rankedSheet(f *excelize.File, st styles, jobs []job.Analyzed) error {
	sh := SheetRanked
	if err := writeHeader(f, sh, st.header, rankedHeaders); err != nil {
		return err
	}
	widths := map[string]float64{"A": 6, "B": 40, "C": 25, "D": 20, "E": 10, "F": 20, "N": 35, "O": 35, "Q": 50}
	for col, w := range widths {
		if err := f.SetColWidth(sh, col, col, w); err != nil {
			return err
		}
	}
	for i, j := range jobs {
		a := j.Analysis
		row := []any{
			i + 1,
			j.Record.Title,
			j.Record.Company,
			j.Record.Location,
			a.Labels.WorkArrangement,
			j.Record.SalaryText(),
			a.Composite.TotalScore,
			a.CVMatching.OverallMatchScore,
			a.JobQuality.OverallQuality,
			string(a.Composite.ApplicationUrgency),
			string(a.LanguageAnalysis.PrimaryLanguage),
			a.JobClassification.Category,
			a.JobClassification.Seniority,
			strings.Join(a.CVMatching.MatchingSkills, ", "),
			strings.Join(a.CVMatching.MissingSkills, ", "),
			string(a.Source),
			j.Record.URL,
		}
		first, _ := excelize.CoordinatesToCellName(1, i+2)
		last, _ := excelize.CoordinatesToCellName(len(row), i+2)
		if err := f.SetSheetRow(sh, first, &row); err != nil {
			return err
		}
		if style, ok := st.rows[a.Composite.ApplicationUrgency]; ok {
			if err := f.SetCellStyle(sh, first, last, style); err != nil {
				return err
			}
		}
		if j.Record.URL != "" {
			if err := f.SetCellHyperLink(sh, last, j.Record.URL, "External"); err != nil {
				return err
			}
		}
	}
	return finishTable(f, sh, len(rankedHeaders), len(jobs))
}

var groupHeaders = []string{"Group", "Company", "Title", "Positions", "Cities", "Platforms", "Avg Salary"}

func groupsSheet(f *excelize.File, st styles, groups []grouping.Group) error {
	sh := SheetGroups
	if err := writeHeader(f, sh, st.header, groupHeaders); err != nil {
		return err
	}
	if err := f.SetColWidth(sh, "A", "C", 30); err != nil {
		return err
	}
	for i, g := range groups {
		salary := ""
		if g.AvgSalary != nil {
			salary = *g.AvgSalary
		}
		row := []any{
			g.ID, g.Company, g.Title, g.TotalPositions,
			strings.Join(g.Cities, ", "), strings.Join(g.Platforms, ", "), salary,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sh, cell, &row); err != nil {
			return err
		}
	}
	return finishTable(f, sh, len(groupHeaders), len(groups))
}

func writeHeader(f *excelize.File, sh string, style int, headers []string) error {
	if err := f.SetSheetRow(sh, "A1", &headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sh, "A1", last, style)
}

// finishTable freezes the header and enables the filter when there is data.
func finishTable(f *excelize.File, sh string, cols, rows int) error {
	if rows > 0 {
		last, _ := excelize.CoordinatesToCellName(cols, rows+1)
		if err := f.AutoFilter(sh, "A1:"+last, nil); err != nil {
			return err
		}
	}
	return f.SetPanes(sh, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
