// Package xlsxconnect reads sheets, column names and row batches from xlsx
// packages without loading whole worksheets into memory.
package xlsxconnect

import (
	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/models"
	"go.uber.org/zap"
)

// DefaultBatchSize is the page size used by EachBatch when none is configured.
const DefaultBatchSize = 500

// Options configures a Reader.
type Options struct {
	// SheetOrder selects the order of SheetNames. Defaults to declaration order.
	SheetOrder models.SheetOrder
	// BatchSize is the number of rows per EachBatch call.
	BatchSize int
	// Logger receives debug output about recovered hint and lookup problems.
	// If nil, logging is disabled.
	Logger *zap.Logger
}

// DefaultOptions returns default reader options.
func DefaultOptions() Options {
	return Options{
		SheetOrder: models.SheetOrderDeclared,
		BatchSize:  DefaultBatchSize,
	}
}

func (o Options) batchSize() int {
	if o.BatchSize < 1 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
