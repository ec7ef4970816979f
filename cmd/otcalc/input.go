package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/overtime-engine/overtime"
)

// readShifts loads raw shifts from a .json or .csv file.
func readShifts(path string) ([]overtime.RawShift, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decodeJSONShifts(f)
	case ".csv":
		return decodeCSVShifts(f)
	default:
		return nil, fmt.Errorf("%s: unsupported file type, use .json or .csv", path)
	}
}

// decodeJSONShifts accepts either a bare array of shifts or {"shifts": [...]}.
func decodeJSONShifts(r io.Reader) ([]overtime.RawShift, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var shifts []overtime.RawShift
	if err := json.Unmarshal(data, &shifts); err == nil {
		return shifts, nil
	}

	var wrapped struct {
		Shifts []overtime.RawShift `json:"shifts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode shifts: %w", err)
	}
	return wrapped.Shifts, nil
}

// csvColumns maps accepted header names to RawShift fields.
var csvColumns = map[string]string{
	"date":  "date",
	"날짜":    "date",
	"start": "start",
	"출근":    "start",
	"end":   "end",
	"퇴근":    "end",
	"break": "break",
	"휴게":    "break",
	"net":   "net",
	"실근무":   "net",
}

// decodeCSVShifts reads a CSV with a header row. Column order is free; date,
// start and end are required, break and net are optional.
func decodeCSVShifts(r io.Reader) ([]overtime.RawShift, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv: missing header row")
		}
		return nil, err
	}

	index := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := csvColumns[name]; ok {
			index[field] = i
		}
	}
	for _, required := range []string{"date", "start", "end"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv: missing %q column", required)
		}
	}

	cell := func(rec []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var shifts []overtime.RawShift
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, overtime.RawShift{
			Date:  cell(rec, "date"),
			Start: cell(rec, "start"),
			End:   cell(rec, "end"),
			Break: cell(rec, "break"),
			Net:   cell(rec, "net"),
		})
	}
	return shifts, nil
}
