package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bububa/marksix-agents/marksix"
)

var numberColumns = [marksix.NumbersCount]string{"n1", "n2", "n3", "n4", "n5", "n6"}

const (
	drawColumn  = "draw"
	dateColumn  = "date"
	extraColumn = "special_number"
)

var dateLayouts = []string{
	marksix.DateLayout,
	"2006/01/02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseCSV reads records from a csv with a header row naming the columns
// date, n1..n6 and optionally draw and special_number
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	required := append([]string{dateColumn}, numberColumns[:]...)
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %s", name)
		}
	}
	var records []Record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		record, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}
	SortNewestFirst(records)
	return records, nil
}

func parseRow(row []string, columns map[string]int) (Record, error) {
	var ret Record
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	ret.Draw = field(drawColumn)
	date, err := parseDate(field(dateColumn))
	if err != nil {
		return ret, err
	}
	ret.Date = date
	for idx, name := range numberColumns {
		n, err := parseNumber(field(name))
		if err != nil {
			return ret, fmt.Errorf("%s: %w", name, err)
		}
		ret.Numbers[idx] = n
	}
	if v := field(extraColumn); v != "" {
		n, err := parseNumber(v)
		if err != nil {
			return ret, fmt.Errorf("%s: %w", extraColumn, err)
		}
		ret.Extra = &n
	}
	return ret, nil
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", v)
}

// parseNumber accepts integers and integral floats such as 12.0
func parseNumber(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return int(f), nil
}

// WriteCSV writes records with the header read by ParseCSV
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	header := append([]string{drawColumn, dateColumn}, numberColumns[:]...)
	header = append(header, extraColumn)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row, r.Draw, r.FormatDate())
		for _, n := range r.Numbers {
			row = append(row, strconv.Itoa(n))
		}
		if r.Extra != nil {
			row = append(row, strconv.Itoa(*r.Extra))
		} else {
			row = append(row, "")
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
