package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gratuity-engine/internal/model"
)

// ErrNotFound is returned for names the store never generated or no longer has.
var ErrNotFound = errors.New("report not found")

const (
	sheetName  = "Gratuity Report"
	filePrefix = "gratuity_report_"
	fileExt    = ".xlsx"
	amountFmt  = "#,##0.00"
)

var namePattern = regexp.MustCompile(`^gratuity_report_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.xlsx$`)

// FileStore keeps generated reports in one directory, keyed by a random
// UUID. Files are created exclusively and never overwritten.
type FileStore struct {
	dir   string
	newID func() string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, newID: uuid.NewString}, nil
}

func (s *FileStore) Dir() string { return s.dir }

// Write renders results and total as an xlsx workbook and returns its name.
func (s *FileStore) Write(results []model.GratuityResult, total decimal.Decimal) (string, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := fillSheet(f, results, total); err != nil {
		return "", fmt.Errorf("building report workbook: %w", err)
	}

	name := filePrefix + s.newID() + fileExt
	fh, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("report %s already exists: %w", name, err)
		}
		return "", fmt.Errorf("creating report %s: %w", name, err)
	}

	if _, err := f.WriteTo(fh); err != nil {
		_ = fh.Close()
		_ = os.Remove(fh.Name())
		return "", fmt.Errorf("writing report %s: %w", name, err)
	}
	if err := fh.Close(); err != nil {
		return "", fmt.Errorf("closing report %s: %w", name, err)
	}
	return name, nil
}

// Read returns the bytes of a previously written report.
func (s *FileStore) Read(name string) ([]byte, error) {
	if !namePattern.MatchString(name) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading report %s: %w", name, err)
	}
	return data, nil
}

func fillSheet(f *excelize.File, results []model.GratuityResult, total decimal.Decimal) error {
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &[]any{"Employee ID", "Name", "Gratuity"}); err != nil {
		return err
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]any{r.EmployeeID, r.Name, r.Amount.InexactFloat64()}); err != nil {
			return err
		}
	}

	totalRow := len(results) + 2
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &[]any{"", "Total", total.InexactFloat64()}); err != nil {
		return err
	}

	numFmt := amountFmt
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(3, totalRow)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "C2", last, style); err != nil {
		return err
	}
	return f.SetColWidth(sheetName, "A", "C", 20)
}
