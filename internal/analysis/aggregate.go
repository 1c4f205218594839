package analysis

import (
	"strings"
)

// FrequencyTable maps genre -> schedule value -> occurrence count.
type FrequencyTable map[string]map[string]int

// Add increments the count of schedule for genre.
func (t FrequencyTable) Add(genre, schedule string) {
	counts, ok := t[genre]
	if !ok {
		counts = make(map[string]int)
		t[genre] = counts
	}
	counts[schedule]++
}

// Columns holds the resolved positions of the genre and schedule columns.
type Columns struct {
	Genre        int
	Schedule     int
	GenreName    string
	ScheduleName string
}

// width is the minimum number of fields a row needs to cover both columns.
func (c Columns) width() int {
	return max(c.Genre, c.Schedule) + 1
}

// ResolveColumns locates the genre and schedule columns in a header row.
// Names are trimmed and deduplicated; a repeated name keeps its first place in
// header order but maps to its last position. The genre column is the first
// name containing "genre", the schedule column the first containing both
// "schedule" and "time", both case-insensitive. The genre check runs first.
func ResolveColumns(header []string) (Columns, error) {
	var names []string
	positions := make(map[string]int, len(header))
	for idx, h := range header {
		name := strings.TrimSpace(h)
		if _, seen := positions[name]; !seen {
			names = append(names, name)
		}
		positions[name] = idx
	}

	cols := Columns{Genre: -1, Schedule: -1}
	for _, name := range names {
		lower := strings.ToLower(name)
		if cols.Genre < 0 && strings.Contains(lower, "genre") {
			cols.Genre = positions[name]
			cols.GenreName = name
		}
		if cols.Schedule < 0 && strings.Contains(lower, "schedule") && strings.Contains(lower, "time") {
			cols.Schedule = positions[name]
			cols.ScheduleName = name
		}
	}

	if cols.Genre < 0 {
		return cols, &MissingColumnError{Column: GenreColumn}
	}
	if cols.Schedule < 0 {
		return cols, &MissingColumnError{Column: ScheduleColumn}
	}
	return cols, nil
}

// Aggregator builds a FrequencyTable from split rows. The first row passed to
// Add is the header.
type Aggregator struct {
	cols      Columns
	hasHeader bool
	table     FrequencyTable

	RowsRead    int
	RowsSkipped int
}

// NewAggregator returns an empty aggregator awaiting its header row.
func NewAggregator() *Aggregator {
	return &Aggregator{table: make(FrequencyTable)}
}

// Add consumes one row. The header row may fail with a MissingColumnError;
// data rows never fail. Rows too short to hold both columns, or with an empty
// schedule value, are skipped.
func (a *Aggregator) Add(row []string) error {
	if !a.hasHeader {
		cols, err := ResolveColumns(row)
		if err != nil {
			return err
		}
		a.cols = cols
		a.hasHeader = true
		return nil
	}

	a.RowsRead++
	if len(row) < a.cols.width() {
		a.RowsSkipped++
		return nil
	}
	schedule := strings.TrimSpace(row[a.cols.Schedule])
	if schedule == "" {
		a.RowsSkipped++
		return nil
	}

	for _, genre := range ExtractGenres(row[a.cols.Genre]) {
		if genre == "" {
			continue
		}
		a.table.Add(genre, schedule)
	}
	return nil
}

// Columns returns the resolved columns. It is zero until the header is seen.
func (a *Aggregator) Columns() Columns {
	return a.cols
}

// HasHeader reports whether a header row has been consumed.
func (a *Aggregator) HasHeader() bool {
	return a.hasHeader
}

// Table returns the frequency table built so far.
func (a *Aggregator) Table() FrequencyTable {
	return a.table
}
