package xlsxconnect

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/models"
	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/parser"
	"go.uber.org/zap"
)

// Reader reads one xlsx package. Every operation opens the archive and
// closes it before returning; the workbook index, shared strings and
// styles are loaded on first use and kept for later calls.
type Reader struct {
	path string
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	index   *parser.WorkbookIndex
	strings *parser.SharedStrings
	styles  *parser.StyleTable
}

// Open returns a Reader for the package at path. The archive itself is
// not opened until the first operation.
func Open(path string, opts Options) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, newReadError(path, "", "open", fmt.Errorf("%w: %s", ErrFileNotFound, path))
		}
		return nil, newReadError(path, "", "open", err)
	}
	return &Reader{
		path: path,
		opts: opts,
		log:  opts.logger().With(zap.String("package", filepath.Base(path))),
	}, nil
}

// FileName returns the base name of the package file.
func (r *Reader) FileName() string {
	return filepath.Base(r.path)
}

// SheetNames returns the sheet display names in the configured order.
func (r *Reader) SheetNames() ([]string, error) {
	var names []string
	err := r.withArchive(func(zr *zip.Reader) error {
		idx, err := r.workbookIndex(zr)
		if err != nil {
			return err
		}
		names = idx.SheetNames(r.opts.SheetOrder)
		return nil
	})
	if err != nil {
		return nil, newReadError(r.path, "", "sheets", err)
	}
	return names, nil
}

// Sheets returns the sheets with their part paths in declaration order.
func (r *Reader) Sheets() ([]models.Sheet, error) {
	var sheets []models.Sheet
	err := r.withArchive(func(zr *zip.Reader) error {
		idx, err := r.workbookIndex(zr)
		if err != nil {
			return err
		}
		sheets = idx.Sheets()
		return nil
	})
	if err != nil {
		return nil, newReadError(r.path, "", "sheets", err)
	}
	return sheets, nil
}

// ColumnNames returns one name per column of the sheet. Columns are named
// C<index> unless hasHeaderRow is set and row 1 has text for them.
func (r *Reader) ColumnNames(sheetName string, hasHeaderRow bool) ([]string, error) {
	var names []string
	err := r.withArchive(func(zr *zip.Reader) error {
		partPath, err := r.sheetPath(zr, sheetName)
		if err != nil {
			return err
		}
		ctx := parser.SheetContext{Logger: r.log}
		if hasHeaderRow {
			if ctx, err = r.sheetContext(zr); err != nil {
				return err
			}
		}
		names, err = parser.ReadColumnNames(zr, partPath, ctx, hasHeaderRow)
		return err
	})
	if err != nil {
		return nil, newReadError(r.path, sheetName, "columns", err)
	}
	return names, nil
}

// CountRows returns the index of the last row of the sheet, 0 if it has no rows.
func (r *Reader) CountRows(sheetName string) (int, error) {
	var count int
	err := r.withArchive(func(zr *zip.Reader) error {
		partPath, err := r.sheetPath(zr, sheetName)
		if err != nil {
			return err
		}
		count, err = parser.CountRows(zr, partPath, r.log)
		return err
	})
	if err != nil {
		return 0, newReadError(r.path, sheetName, "count", err)
	}
	return count, nil
}

// Rows returns the rows with 1-based indexes firstRow..lastRow inclusive.
// Fewer rows are returned when the sheet ends before lastRow.
func (r *Reader) Rows(sheetName string, firstRow, lastRow int) ([]models.Row, error) {
	if firstRow < 1 || lastRow < firstRow {
		return nil, newReadError(r.path, sheetName, "rows",
			fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, firstRow, lastRow))
	}
	var rows []models.Row
	err := r.withArchive(func(zr *zip.Reader) error {
		partPath, err := r.sheetPath(zr, sheetName)
		if err != nil {
			return err
		}
		ctx, err := r.sheetContext(zr)
		if err != nil {
			return err
		}
		rows, err = parser.ReadRows(zr, partPath, ctx, firstRow, lastRow)
		return err
	})
	if err != nil {
		return nil, newReadError(r.path, sheetName, "rows", err)
	}
	return rows, nil
}

// EachBatch reads the sheet from firstRow to its last row in windows of
// Options.BatchSize rows and passes each window to fn. It stops at the
// first error returned by fn.
func (r *Reader) EachBatch(sheetName string, firstRow int, fn func([]models.Row) error) error {
	total, err := r.CountRows(sheetName)
	if err != nil {
		return err
	}
	size := r.opts.batchSize()
	for from := firstRow; from <= total; from += size {
		to := from + size - 1
		if to > total {
			to = total
		}
		rows, err := r.Rows(sheetName, from, to)
		if err != nil {
			return err
		}
		r.log.Debug("read batch", zap.String("sheet", sheetName), zap.Int("from", from), zap.Int("to", to), zap.Int("rows", len(rows)))
		if err := fn(rows); err != nil {
			return err
		}
	}
	return nil
}

// withArchive opens the package for the duration of fn.
func (r *Reader) withArchive(fn func(*zip.Reader) error) error {
	zr, err := zip.OpenReader(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, r.path)
		}
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	defer zr.Close()

	err = fn(&zr.Reader)
	if errors.Is(err, parser.ErrPartNotFound) || errors.Is(err, parser.ErrMalformedPart) {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return err
}

func (r *Reader) workbookIndex(zr *zip.Reader) (*parser.WorkbookIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index != nil {
		return r.index, nil
	}
	idx, err := parser.LoadWorkbookIndex(zr)
	if err != nil {
		return nil, err
	}
	r.log.Debug("loaded workbook index",
		zap.String("workbook", idx.WorkbookPath),
		zap.Int("sheets", len(idx.Sheets())),
		zap.Bool("date1904", idx.Date1904))
	r.index = idx
	return idx, nil
}

func (r *Reader) sheetPath(zr *zip.Reader, sheetName string) (string, error) {
	idx, err := r.workbookIndex(zr)
	if err != nil {
		return "", err
	}
	partPath, ok := idx.PathFor(sheetName)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSheet, sheetName)
	}
	return partPath, nil
}

// sheetContext returns the decoding context, loading shared strings and
// styles on first use.
func (r *Reader) sheetContext(zr *zip.Reader) (parser.SheetContext, error) {
	idx, err := r.workbookIndex(zr)
	if err != nil {
		return parser.SheetContext{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.strings == nil {
		sst, err := parser.LoadSharedStrings(zr, idx.SharedStringsPath)
		if err != nil {
			return parser.SheetContext{}, err
		}
		r.log.Debug("loaded shared strings", zap.Int("count", sst.Len()))
		r.strings = sst
	}
	if r.styles == nil {
		styles, err := parser.LoadStyles(zr, idx.StylesPath)
		if err != nil {
			return parser.SheetContext{}, err
		}
		r.styles = styles
	}
	return parser.SheetContext{
		Strings:  r.strings,
		Styles:   r.styles,
		Date1904: idx.Date1904,
		Logger:   r.log,
	}, nil
}
