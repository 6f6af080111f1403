package intake

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/revops/intake-service/internal/intake/model"
	"github.com/revops/intake-service/internal/scoring"
)

// legacyCreatedAtColumn is the creation timestamp column of files written by the first intake form.
const legacyCreatedAtColumn = "submitted_at"

// timeLayouts are tried in order when reading stored timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// writeQuotedCSV writes an unquoted header line followed by one line per row in
// which every value is quoted and embedded quotes are doubled.
func writeQuotedCSV(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(header, ",")); err != nil {
		return err
	}
	for _, row := range rows {
		quoted := make([]string, len(row))
		for i, v := range row {
			quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		if _, err := bw.WriteString("\n" + strings.Join(quoted, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeRecords writes the full table with standard CSV quoting.
func writeRecords(w io.Writer, records []model.IntakeRequest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Columns); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(records[i].Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readRecords parses a stored or exported table. Files written before a
// column existed are backfilled: a missing id column numbers rows from 1, a
// missing quick-win column is recomputed from the scored fields, and a
// missing status becomes New.
func readRecords(r io.Reader) ([]model.IntakeRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var records []model.IntakeRequest
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}
		records = append(records, decodeRow(index, row, line))
	}
	return records, nil
}

func decodeRow(index map[string]int, row []string, line int) model.IntakeRequest {
	get := func(column string) (string, bool) {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}
	text := func(column string) string {
		v, _ := get(column)
		return v
	}

	rec := model.IntakeRequest{
		RequestTitle:           text("request_title"),
		RequestorName:          text("requestor_name"),
		RequestorTeam:          text("requestor_team"),
		ProblemStatement:       text("problem_statement"),
		ExpectedOutcome:        text("expected_outcome"),
		RevenueImpact:          text("revenue_impact"),
		AuditRisk:              text("audit_risk"),
		CustomerImpact:         text("customer_impact"),
		SystemsTouched:         text("systems_touched"),
		DataObjects:            text("data_objects"),
		RequiredChanges:        text("required_changes"),
		Complexity:             text("complexity"),
		CrossFunctionalEffort:  text("cross_functional_effort"),
		TimelinePressure:       text("timeline_pressure"),
		ControlImpact:          text("control_impact"),
		DownstreamDependencies: text("downstream_dependencies"),
		Tags:                   text("tags"),
		Status:                 text("status"),
	}

	if id, ok := get("id"); ok && id != "" {
		rec.ID = normalizeID(id)
	} else if !ok {
		rec.ID = strconv.Itoa(line)
	}

	if raw, ok := get("priority_score"); ok && raw != "" {
		if score, err := strconv.ParseFloat(raw, 64); err == nil {
			rec.PriorityScore = score
		} else {
			rec.PriorityScore = scoring.Evaluate(rec.ScoringInputs()).PriorityScore
		}
	} else {
		rec.PriorityScore = scoring.Evaluate(rec.ScoringInputs()).PriorityScore
	}

	quickWin, err := strconv.ParseBool(text("is_quick_win"))
	if err != nil {
		quickWin = scoring.IsQuickWin(rec.PriorityScore, rec.Complexity, rec.CrossFunctionalEffort, rec.TimelinePressure)
	}
	rec.IsQuickWin = quickWin

	if rec.Status == "" {
		rec.Status = model.StatusNew
	}

	createdAt, ok := get("created_at")
	if !ok || createdAt == "" {
		createdAt = text(legacyCreatedAtColumn)
	}
	rec.CreatedAt = parseTime(createdAt)

	if t := parseTime(text("updated_at")); !t.IsZero() {
		rec.UpdatedAt = &t
	}
	if key := text("jira_key"); key != "" {
		rec.JiraKey = &key
	}

	return rec
}

// normalizeID turns spreadsheet-style float ids such as "3.0" back into integers.
func normalizeID(id string) string {
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return id
	}
	if f, err := strconv.ParseFloat(id, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return id
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
