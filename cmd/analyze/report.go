package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"expensecheck/batch"
	"expensecheck/expense"
)

// report is the JSON document written per run.
type report struct {
	RunID         string            `json:"runId"`
	AnalyzedAt    time.Time         `json:"analyzedAt"`
	Summary       reportSummary     `json:"summary"`
	Verdicts      []expense.Verdict `json:"verdicts"`
	Anomalies     []string          `json:"anomalies"`
	AnomalyCounts map[string]int    `json:"anomalyCounts"`
}

type reportSummary struct {
	Approved       int `json:"approved"`
	Pending        int `json:"pending"`
	Rejected       int `json:"rejected"`
	TotalExpenses  int `json:"totalExpenses"`
	TotalAnomalies int `json:"totalAnomalies"`
}

func printSummary(result *batch.Result) {
	fmt.Printf("batch %s\n", result.RunID)
	fmt.Printf("  approved:  %d\n", result.Approved)
	fmt.Printf("  pending:   %d\n", result.Pending)
	fmt.Printf("  rejected:  %d\n", result.Rejected)
	fmt.Printf("  anomalies: %d\n", len(result.Anomalies))
	fmt.Println()

	for i, verdict := range result.Verdicts {
		fmt.Printf("%d. %s %s\n", i+1, verdict.ExpenseID, verdict.Decision)
		for _, alert := range verdict.Alerts {
			fmt.Printf("   [%s] %s\n", alert.Code, alert.Message)
		}
	}

	if len(result.Anomalies) > 0 {
		fmt.Println()
		fmt.Println("anomalies:")
		for i, anomaly := range result.Anomalies {
			fmt.Printf("  %d. %s\n", i+1, anomaly)
		}
	}
}

// writeReport writes the JSON results file into dir, creating it if
// needed, and returns the file path.
func writeReport(dir string, result *batch.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	now := time.Now().UTC()
	path := filepath.Join(dir, fmt.Sprintf("analysis_%s.json", now.Format("2006-01-02T15-04-05Z")))

	doc := report{
		RunID:      result.RunID,
		AnalyzedAt: now,
		Summary: reportSummary{
			Approved:       result.Approved,
			Pending:        result.Pending,
			Rejected:       result.Rejected,
			TotalExpenses:  len(result.Verdicts),
			TotalAnomalies: len(result.Anomalies),
		},
		Verdicts:      result.Verdicts,
		Anomalies:     result.Anomalies,
		AnomalyCounts: countAnomalies(result),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

// countAnomalies tallies anomaly alerts per code across all verdicts.
func countAnomalies(result *batch.Result) map[string]int {
	counts := map[string]int{
		expense.CodeNegativeAmount: 0,
		expense.CodeDuplicate:      0,
	}
	for _, verdict := range result.Verdicts {
		for _, alert := range verdict.Alerts {
			if _, ok := counts[alert.Code]; ok {
				counts[alert.Code]++
			}
		}
	}
	return counts
}
