package mturk

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kbukum/gonogo/validation"
)

// Required CSV columns.
const (
	ColumnWorkerID     = "worker_id"
	ColumnAssignmentID = "assignment_id"
	ColumnBonus        = "bonus"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("csv has no column")

// Summary counts what ProcessCSV did. Failed counts rows, so a row whose
// approval and bonus both fail adds one.
type Summary struct {
	Rows     int
	Approved int
	Bonused  int
	Skipped  int
	Failed   int
}

// ProcessCSV approves every row's assignment and bonuses rows with a
// positive bonus, rounded to cents. Row failures are logged and counted;
// only an unreadable file or a missing column is returned as an error.
func (c *Compensator) ProcessCSV(ctx context.Context, r io.Reader) (Summary, error) {
	var sum Summary

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return sum, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return sum, err
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read csv line %d: %w", line, err)
		}
		sum.Rows++
		c.processRow(ctx, line, row, cols, &sum)
	}

	c.action("Compensation finished", map[string]interface{}{
		"rows": sum.Rows, "approved": sum.Approved, "bonused": sum.Bonused,
		"skipped": sum.Skipped, "failed": sum.Failed,
	})
	return sum, nil
}

// Row is one compensation line. A blank bonus is 0: the assignment is still
// approved and nothing is paid.
type Row struct {
	WorkerID     string  `json:"worker_id" validate:"required"`
	AssignmentID string  `json:"assignment_id" validate:"required"`
	Bonus        float64 `json:"bonus"`

	// BonusIgnored is set when the bonus cell held NaN or an infinity.
	BonusIgnored bool `json:"-"`
}

// parseRow reads the required columns of a record.
func parseRow(record []string, cols map[string]int) (Row, error) {
	for _, col := range []string{ColumnWorkerID, ColumnAssignmentID, ColumnBonus} {
		if cols[col] >= len(record) {
			return Row{}, fmt.Errorf("missing %s", col)
		}
	}
	row := Row{
		WorkerID:     strings.TrimSpace(record[cols[ColumnWorkerID]]),
		AssignmentID: strings.TrimSpace(record[cols[ColumnAssignmentID]]),
	}
	if err := validation.Validate(row); err != nil {
		return Row{}, err
	}

	bonusText := strings.TrimSpace(record[cols[ColumnBonus]])
	if bonusText == "" {
		return row, nil
	}
	bonus, err := strconv.ParseFloat(bonusText, 64)
	if err != nil {
		return Row{}, fmt.Errorf("bonus %q is not a number", bonusText)
	}
	if math.IsNaN(bonus) || math.IsInf(bonus, 0) {
		row.BonusIgnored = true
		return row, nil
	}
	row.Bonus = bonus
	return row, nil
}

func (c *Compensator) processRow(ctx context.Context, line int, record []string, cols map[string]int, sum *Summary) {
	row, err := parseRow(record, cols)
	if err != nil {
		sum.Failed++
		c.failure("Skipping malformed row", err, map[string]interface{}{"line": line})
		return
	}

	failed := false
	if err := c.Approve(ctx, row.AssignmentID); err != nil {
		failed = true
	} else {
		sum.Approved++
	}

	if row.BonusIgnored {
		c.action("Ignoring non-finite bonus", map[string]interface{}{
			"line": line, "assignment_id": row.AssignmentID,
		})
	}
	if row.Bonus > 0 {
		skipped, err := c.GrantBonus(ctx, row.WorkerID, row.AssignmentID, RoundCents(row.Bonus), c.repeat)
		switch {
		case err != nil:
			failed = true
		case skipped:
			sum.Skipped++
		default:
			sum.Bonused++
		}
	}

	if failed {
		sum.Failed++
	}
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, want := range []string{ColumnWorkerID, ColumnAssignmentID, ColumnBonus} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, want)
		}
	}
	return cols, nil
}
