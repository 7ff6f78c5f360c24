// Package batch streams expense records through the validator in input
// order and detects the cross-record anomalies individual rules cannot
// see: exact duplicates and negative amounts.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"expensecheck/expense"
	"expensecheck/validator"
)

// Expected CSV layout after the header line:
// expense id, employee id, first name, last name, cost center, category,
// amount, currency, date.
const fieldCount = 9

// RecordError reports a malformed input line: wrong field count or a
// non-numeric amount. Malformed lines abort the run; only blank lines
// are tolerated.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record on line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Result aggregates one batch run. Verdicts holds one entry per input
// record, in input order.
type Result struct {
	RunID     string            `json:"runId"`
	Approved  int               `json:"approved"`
	Pending   int               `json:"pending"`
	Rejected  int               `json:"rejected"`
	Anomalies []string          `json:"anomalies"`
	Verdicts  []expense.Verdict `json:"verdicts"`
}

// Analyzer runs batches of expense records through a validator.
type Analyzer struct {
	validator *validator.Validator
}

// NewAnalyzer creates a batch analyzer.
func NewAnalyzer(v *validator.Validator) *Analyzer {
	return &Analyzer{validator: v}
}

// AnalyzeFile opens path and analyzes its contents.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return a.Analyze(ctx, f)
}

// Analyze streams records from r, one per line after a header line that
// is always skipped. Records are processed strictly in input order:
// duplicate detection and the aggregate counts depend on it.
//
// Anomaly alerts are appended to the resolver's verdict without ever
// changing its decision, negative amount first, then duplicate.
func (a *Analyzer) Analyze(ctx context.Context, r io.Reader) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Anomalies: []string{},
		Verdicts:  []expense.Verdict{},
	}

	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue // header
		}

		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		exp, emp, err := parseRecord(text)
		if err != nil {
			return nil, &RecordError{Line: line, Err: err}
		}

		// membership is checked before insertion, so the first occurrence
		// of a key is never flagged and every later one is
		key := duplicateKey(exp)
		_, duplicate := seen[key]
		if !duplicate {
			seen[key] = struct{}{}
		}

		verdict := a.validator.Validate(ctx, exp, emp)

		if exp.Amount < 0 {
			msg := fmt.Sprintf("negative amount in expense %s", exp.ID)
			result.Anomalies = append(result.Anomalies, msg)
			verdict.Alerts = append(verdict.Alerts, expense.Alert{
				Code:    expense.CodeNegativeAmount,
				Message: msg,
			})
		}

		if duplicate {
			msg := fmt.Sprintf("duplicate detected in expense %s", exp.ID)
			result.Anomalies = append(result.Anomalies, msg)
			verdict.Alerts = append(verdict.Alerts, expense.Alert{
				Code:    expense.CodeDuplicate,
				Message: msg,
			})
		}

		result.Verdicts = append(result.Verdicts, verdict)

		switch verdict.Decision {
		case expense.Approved:
			result.Approved++
		case expense.Pending:
			result.Pending++
		case expense.Rejected:
			result.Rejected++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return result, nil
}

func parseRecord(line string) (expense.Expense, expense.Employee, error) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldCount {
		return expense.Expense{}, expense.Employee{},
			fmt.Errorf("expected %d fields, got %d", fieldCount, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	amount, err := strconv.ParseFloat(parts[6], 64)
	if err != nil {
		return expense.Expense{}, expense.Employee{},
			fmt.Errorf("parse amount %q: %w", parts[6], err)
	}

	exp := expense.Expense{
		ID:       parts[0],
		Amount:   amount,
		Currency: parts[7],
		Date:     parts[8],
		Category: expense.Category(parts[5]),
	}
	emp := expense.Employee{
		ID:         parts[1],
		Name:       parts[2],
		Surname:    parts[3],
		CostCenter: parts[4],
	}
	return exp, emp, nil
}

// duplicateKey deliberately excludes employee and category: two
// employees submitting the same amount, currency and date count as
// duplicates of each other.
func duplicateKey(e expense.Expense) string {
	return fmt.Sprintf("%g-%s-%s", e.Amount, e.Currency, e.Date)
}
