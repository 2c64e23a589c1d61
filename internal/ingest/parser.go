package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "trainpulse/internal/errors"
	"trainpulse/pkg/contracts/domain"
)

// Parser turns one uploaded workbook into the five canonical record
// collections. Parsing is best-effort at cell level: a bad cell degrades to
// its documented default, and only workbook-level structural problems (file
// unreadable, zero worksheets, courses sheet unreadable) surface as errors.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser with the given logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "ingest.parser"))}
}

// Parse reads the uploaded file and produces the canonical datasets. The
// filename is used only to distinguish delimited-text input from workbook
// input.
func (p *Parser) Parse(r io.Reader, filename string) (*domain.Datasets, error) {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return p.parseCSV(r)
	}
	return p.parseWorkbook(r)
}

func (p *Parser) parseWorkbook(r io.Reader) (*domain.Datasets, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierrors.NewParsingError("workbook contains no worksheets", nil)
	}

	ds := &domain.Datasets{}

	// Courses is the only mandatory dataset; locateSheet falls back to the
	// first worksheet for it.
	courseSheet, _ := locateSheet(sheets, domain.DatasetCourses)
	courseRows, err := p.sheetRows(f, courseSheet, domain.DatasetCourses)
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("failed to read courses sheet %q", courseSheet), err)
	}
	for i, row := range courseRows {
		ds.Training = append(ds.Training, normalizeTraining(row, i))
	}

	for _, row := range p.optionalRows(f, sheets, domain.DatasetEvaluations) {
		ds.Evaluations = append(ds.Evaluations, normalizeEvaluation(row))
	}
	for _, row := range p.optionalRows(f, sheets, domain.DatasetQuestions) {
		ds.Questions = append(ds.Questions, normalizeQuestion(row))
	}
	for _, row := range p.optionalRows(f, sheets, domain.DatasetOpenSurvey) {
		ds.Surveys = append(ds.Surveys, normalizeSurvey(row))
	}
	for _, row := range p.optionalRows(f, sheets, domain.DatasetMultipleChoice) {
		ds.MultipleChoice = append(ds.MultipleChoice, normalizeMultipleChoice(row))
	}

	p.logger.Info("workbook parsed",
		slog.Int("training", len(ds.Training)),
		slog.Int("evaluations", len(ds.Evaluations)),
		slog.Int("questions", len(ds.Questions)),
		slog.Int("surveys", len(ds.Surveys)),
		slog.Int("multiple_choice", len(ds.MultipleChoice)))

	return ds, nil
}

// optionalRows returns the re-keyed rows of an optional dataset's sheet, or
// nil when no sheet matches or the sheet is unreadable. A missing optional
// sheet is not an error.
func (p *Parser) optionalRows(f *excelize.File, sheets []string, dataset domain.Dataset) []Row {
	name, ok := locateSheet(sheets, dataset)
	if !ok {
		p.logger.Info("no worksheet matched, skipping dataset",
			slog.String("dataset", string(dataset)))
		return nil
	}
	rows, err := p.sheetRows(f, name, dataset)
	if err != nil {
		p.logger.Warn("failed to read optional sheet, skipping dataset",
			slog.String("dataset", string(dataset)),
			slog.String("sheet", name),
			slog.String("error", err.Error()))
		return nil
	}
	return rows
}

func (p *Parser) sheetRows(f *excelize.File, sheet string, dataset domain.Dataset) ([]Row, error) {
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	headerIdx, found := locateHeader(grid)
	if !found {
		p.logger.Warn("no header row recognized, assuming row 0",
			slog.String("dataset", string(dataset)),
			slog.String("sheet", sheet))
	}
	p.logger.Debug("sheet located",
		slog.String("dataset", string(dataset)),
		slog.String("sheet", sheet),
		slog.Int("header_row", headerIdx),
		slog.Int("total_rows", len(grid)))
	return rowsFrom(grid, headerIdx), nil
}

// parseCSV treats delimited-text input as a single courses sheet. The other
// four datasets stay empty, exactly as with a workbook that only carries a
// courses worksheet.
func (p *Parser) parseCSV(r io.Reader) (*domain.Datasets, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	grid, err := reader.ReadAll()
	if err != nil {
		return nil, apierrors.NewParsingError("failed to read delimited input", err)
	}
	if len(grid) == 0 {
		return nil, apierrors.NewParsingError("delimited input is empty", nil)
	}

	headerIdx, found := locateHeader(grid)
	if !found {
		p.logger.Warn("no header row recognized in delimited input, assuming row 0")
	}

	ds := &domain.Datasets{}
	for i, row := range rowsFrom(grid, headerIdx) {
		ds.Training = append(ds.Training, normalizeTraining(row, i))
	}

	p.logger.Info("delimited input parsed", slog.Int("training", len(ds.Training)))
	return ds, nil
}
