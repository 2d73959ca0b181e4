package contacts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrSourceNotFound    = errors.New("contact source not found")
	ErrUnsupportedFormat = errors.New("unsupported contact source format")
	ErrColumnNotFound    = errors.New("column not found")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrNoHeader          = errors.New("contact source has no header row")
)

// Contact is one recipient. Row is the 1-based row in the source, header
// included, and only used for diagnostics.
type Contact struct {
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
	Row   int    `json:"row" yaml:"row"`
}

// Status classifies a load.
type Status int

const (
	// StatusLoaded means at least one contact was found.
	StatusLoaded Status = iota
	// StatusEmpty means the source is valid but no row has an email.
	StatusEmpty
	// StatusConfigError means the source could not be used at all.
	StatusConfigError
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusEmpty:
		return "empty"
	case StatusConfigError:
		return "config-error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Options selects what to read from the source.
type Options struct {
	// Sheet names the worksheet of a workbook; empty selects the first sheet.
	Sheet string
	// EmailColumn is the required header of the address column.
	EmailColumn string
	// NameColumn is the optional header of the display-name column.
	NameColumn string
	// DefaultName replaces a missing or blank display name.
	DefaultName string
	Logger      *zap.SugaredLogger
}

// Result is the outcome of Load.
type Result struct {
	Status   Status
	Contacts []Contact
	// Columns lists the header row as read, when a header was found.
	Columns []string
	// Rows is the number of data rows in the source, header excluded.
	Rows int
	// NameColumnFound reports whether the display-name column was present.
	NameColumnFound bool
	Err             error
}

// table is a header row plus data rows, as produced by a format reader.
type table struct {
	header []string
	rows   [][]string
}

// Load reads path and extracts the contacts described by opts.
func Load(path string, opts Options) Result {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.With("source", path)

	if strings.TrimSpace(opts.EmailColumn) == "" {
		return configError(log, nil, fmt.Errorf("%w: email column name is empty", ErrColumnNotFound))
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return configError(log, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path))
		}
		return configError(log, nil, fmt.Errorf("failed to access %s: %w", path, err))
	}

	var (
		tbl *table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		tbl, err = readWorkbook(path, opts.Sheet)
	case ".csv":
		tbl, err = readCSV(path)
	default:
		err = fmt.Errorf("%w: %q (use .xlsx or .csv)", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return configError(log, nil, err)
	}
	log.Debugw("Read contact source", "rows", len(tbl.rows), "columns", tbl.header)

	emailIdx := findColumn(tbl.header, opts.EmailColumn)
	if emailIdx < 0 {
		return configError(log, tbl.header, fmt.Errorf("%w: %q (available: %s)", ErrColumnNotFound, opts.EmailColumn, quoteAll(tbl.header)))
	}
	nameIdx := -1
	if opts.NameColumn != "" {
		nameIdx = findColumn(tbl.header, opts.NameColumn)
		if nameIdx < 0 {
			log.Infow("Name column not present, using default display name", "column", opts.NameColumn, "default", opts.DefaultName)
		}
	}

	contacts := make([]Contact, 0, len(tbl.rows))
	for i, row := range tbl.rows {
		email := strings.TrimSpace(cell(row, emailIdx))
		if email == "" {
			log.Debugw("Skipping row without email", "row", i+2)
			continue
		}
		name := strings.TrimSpace(cell(row, nameIdx))
		if name == "" {
			name = opts.DefaultName
		}
		contacts = append(contacts, Contact{Email: email, Name: name, Row: i + 2})
	}

	res := Result{
		Status:          StatusLoaded,
		Contacts:        contacts,
		Columns:         tbl.header,
		Rows:            len(tbl.rows),
		NameColumnFound: nameIdx >= 0,
	}
	if len(contacts) == 0 {
		res.Status = StatusEmpty
	}
	log.Infow("Loaded contacts", "status", res.Status.String(), "contacts", len(contacts), "rows", res.Rows)
	return res
}

func configError(log *zap.SugaredLogger, columns []string, err error) Result {
	log.Warnw("Failed to load contacts", "error", err)
	return Result{Status: StatusConfigError, Columns: columns, Err: err}
}

// findColumn matches exactly first, then case-insensitively with surrounding
// whitespace ignored. Spreadsheet headers frequently carry stray spaces.
func findColumn(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	want := strings.TrimSpace(name)
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func quoteAll(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
