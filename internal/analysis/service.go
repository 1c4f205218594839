package analysis

import (
	"fmt"
	"io"
	"os"

	"genre-schedule/internal/models"

	"go.uber.org/zap"
)

type CSVService struct {
	logger *zap.Logger
}

func NewCSVService(logger *zap.Logger) *CSVService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVService{logger: logger.Named("analysis")}
}

// AnalyzeFile reads a CSV file and returns the most common schedule per genre
func (s *CSVService) AnalyzeFile(path string) (models.ScheduleReport, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return models.ScheduleReport{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	records, err := OpenRecords(path)
	if err != nil {
		return models.ScheduleReport{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer records.Close()

	return s.analyze(path, records)
}

// AnalyzeReader is AnalyzeFile for an already opened stream (uploads)
func (s *CSVService) AnalyzeReader(name string, r io.Reader) (models.ScheduleReport, error) {
	return s.analyze(name, NewRecordScanner(r))
}

func (s *CSVService) analyze(source string, records *RecordScanner) (models.ScheduleReport, error) {
	agg := NewAggregator()
	for records.Scan() {
		if err := agg.Add(SplitRecord(records.Record())); err != nil {
			return models.ScheduleReport{}, err
		}
	}
	if err := records.Err(); err != nil {
		return models.ScheduleReport{}, fmt.Errorf("read %s: %w", source, err)
	}
	if records.Truncated() {
		s.logger.Debug("dropped unterminated quoted record at end of input", zap.String("source", source))
	}
	return s.report(source, agg)
}

// AnalyzeData runs pre-split rows (header first) through the pipeline.
// Rows from a database take this path.
func (s *CSVService) AnalyzeData(source string, rows [][]string) (models.ScheduleReport, error) {
	agg := NewAggregator()
	for _, row := range rows {
		if err := agg.Add(row); err != nil {
			return models.ScheduleReport{}, err
		}
	}
	return s.report(source, agg)
}

func (s *CSVService) report(source string, agg *Aggregator) (models.ScheduleReport, error) {
	if !agg.HasHeader() {
		return models.ScheduleReport{}, ErrEmptyResult
	}

	table := agg.Table()
	cols := agg.Columns()
	report := models.ScheduleReport{
		Source:         source,
		GenreColumn:    cols.GenreName,
		ScheduleColumn: cols.ScheduleName,
		RowsRead:       agg.RowsRead,
		RowsSkipped:    agg.RowsSkipped,
		Results:        make([]models.GenreSchedule, 0, len(table)),
	}

	for genre, schedule := range Resolve(table) {
		total := 0
		for _, n := range table[genre] {
			total += n
		}
		report.Results = append(report.Results, models.GenreSchedule{
			Genre:    genre,
			Schedule: schedule,
			Count:    table[genre][schedule],
			Total:    total,
		})
	}
	report.SortResults()

	s.logger.Debug("analysis complete",
		zap.String("source", source),
		zap.Int("rows", report.RowsRead),
		zap.Int("skipped", report.RowsSkipped),
		zap.Int("genres", len(report.Results)))

	if len(report.Results) == 0 {
		return report, ErrEmptyResult
	}
	return report, nil
}
