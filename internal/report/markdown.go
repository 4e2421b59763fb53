package report

import (
	"fmt"
	"strings"

	"stock-prediction-lab/internal/domain"
)

// RenderInspection renders the raw-data inspection report as Markdown.
func RenderInspection(r *Inspection) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Data Inspection: %s\n\n", strings.ToUpper(r.Symbol)))
	sb.WriteString(fmt.Sprintf("Fetch: `%s`\n\n", r.FetchID))

	s := r.Summary
	sb.WriteString("## Series\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Rows | %d |\n", s.Rows))
	sb.WriteString(fmt.Sprintf("| Date Range | %s to %s |\n", s.StartDate, s.EndDate))
	sb.WriteString(fmt.Sprintf("| Missing Weekdays | %d |\n", s.MissingWeekdays))
	sb.WriteString(fmt.Sprintf("| Duplicate Dates | %d |\n", s.DuplicateDates))
	sb.WriteString(fmt.Sprintf("| Invalid Rows | %d |\n", s.InvalidRows))
	sb.WriteString("\n")

	sb.WriteString("## Close Price\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Min | %.4f |\n", s.MinClose))
	sb.WriteString(fmt.Sprintf("| Max | %.4f |\n", s.MaxClose))
	sb.WriteString(fmt.Sprintf("| Mean | %.4f |\n", s.MeanClose))
	sb.WriteString(fmt.Sprintf("| Mean Volume | %.0f |\n", s.MeanVolume))
	sb.WriteString("\n")

	if s.InvalidRows > 0 || s.DuplicateDates > 0 {
		sb.WriteString("**Data quality issues present.** Cleaning will drop the affected rows.\n\n")
	} else {
		sb.WriteString("No data quality issues found.\n\n")
	}

	return sb.String()
}

// RenderModelAnalysis renders one model's evaluation report as Markdown.
func RenderModelAnalysis(r *ModelAnalysis) string {
	var sb strings.Builder

	m := r.Model
	sb.WriteString(fmt.Sprintf("# Model Analysis: %s\n\n", m.ModelID))
	sb.WriteString(fmt.Sprintf("Fetch: `%s` | Variant: `%s` | Type: %s\n\n", m.FetchID, m.Variant, m.ModelType))

	sb.WriteString("## Training\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Target | %s |\n", m.Target))
	sb.WriteString(fmt.Sprintf("| Features | %s |\n", strings.Join(m.Features, ", ")))
	sb.WriteString(fmt.Sprintf("| Train Rows | %d |\n", r.TrainRows))
	sb.WriteString(fmt.Sprintf("| Test Rows | %d |\n", r.TestRows))
	sb.WriteString(fmt.Sprintf("| Rows Dropped in Cleaning | %d |\n", r.Clean.InputRows-r.Clean.OutputRows))
	sb.WriteString(fmt.Sprintf("| Outliers Removed | %d |\n", r.Clean.OutliersRemoved))
	sb.WriteString("\n")

	sb.WriteString("## Holdout Metrics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| RMSE | %.4f |\n", m.Metrics.RMSE))
	sb.WriteString(fmt.Sprintf("| MAE | %.4f |\n", m.Metrics.MAE))
	sb.WriteString(fmt.Sprintf("| R² | %.4f |\n", m.Metrics.R2))
	sb.WriteString("\n")

	if r.Summary != nil {
		if r.Summary.Degraded {
			sb.WriteString("**Status: DEGRADED**\n\n")
			for _, reason := range r.Summary.Reasons {
				sb.WriteString(fmt.Sprintf("- %s\n", reason))
			}
			sb.WriteString("\n")
		} else {
			sb.WriteString("**Status: HEALTHY**\n\n")
		}
	}

	return sb.String()
}

// RenderMonitoring renders the degradation check of one evaluation.
func RenderMonitoring(s *domain.PerformanceSummary) string {
	var sb strings.Builder

	sb.WriteString("# Performance Monitoring\n\n")
	sb.WriteString(fmt.Sprintf("Model: `%s`\n\n", s.ModelID))

	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| RMSE | %.4f |\n", s.Metrics.RMSE))
	sb.WriteString(fmt.Sprintf("| MAE | %.4f |\n", s.Metrics.MAE))
	sb.WriteString(fmt.Sprintf("| R² | %.4f |\n", s.Metrics.R2))
	sb.WriteString(fmt.Sprintf("| R² Floor | %.2f |\n", s.ThresholdUsed))
	sb.WriteString(fmt.Sprintf("| Relative Tolerance | %.2f |\n", s.RelTolerance))
	sb.WriteString("\n")

	if s.Degraded {
		sb.WriteString("**Result: DEGRADED**\n\n")
		for _, reason := range s.Reasons {
			sb.WriteString(fmt.Sprintf("- %s\n", reason))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("**Result: HEALTHY**\n\n")
	}

	return sb.String()
}

// RenderFinal combines the run's reports under a cover section.
func RenderFinal(r *Final) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Run Report: %s\n\n", strings.ToUpper(r.Symbol)))
	sb.WriteString(fmt.Sprintf("Fetch: `%s`\n\n", r.FetchID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt))

	sb.WriteString("## Contents\n\n")
	for i, section := range r.Sections {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, section.Title))
	}
	sb.WriteString("\n---\n\n")

	for _, section := range r.Sections {
		sb.WriteString(section.Body)
		sb.WriteString("\n---\n\n")
	}

	return sb.String()
}
