// Package main provides the CLI entry point for xlsxconnect.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect"
	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/models"
	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	pretty     bool
	verbose    bool
	sheetOrder string
	hasHeader  bool
	fromRow    int
	toRow      int
	batchSize  int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlsxconnect",
		Short: "Read sheets, columns and rows from xlsx files",
		Long: `xlsxconnect streams worksheet data out of xlsx packages
and prints it as JSON.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&sheetOrder, "sheet-order", string(models.SheetOrderDeclared), "Sheet order: declared, path")

	sheetsCmd := &cobra.Command{
		Use:   "sheets [input.xlsx]",
		Short: "List sheet names",
		Args:  cobra.ExactArgs(1),
		RunE:  runSheets,
	}

	columnsCmd := &cobra.Command{
		Use:   "columns [input.xlsx] [sheet]",
		Short: "List the column names of a sheet",
		Args:  cobra.ExactArgs(2),
		RunE:  runColumns,
	}
	columnsCmd.Flags().BoolVar(&hasHeader, "header", false, "Use row 1 as column names")

	countCmd := &cobra.Command{
		Use:   "count [input.xlsx] [sheet]",
		Short: "Print the number of rows of a sheet",
		Args:  cobra.ExactArgs(2),
		RunE:  runCount,
	}

	rowsCmd := &cobra.Command{
		Use:   "rows [input.xlsx] [sheet]",
		Short: "Print a range of rows",
		Args:  cobra.ExactArgs(2),
		RunE:  runRows,
	}
	rowsCmd.Flags().IntVar(&fromRow, "from", 1, "First row (1-based)")
	rowsCmd.Flags().IntVar(&toRow, "to", 1, "Last row (inclusive)")
	rowsCmd.Flags().BoolVar(&hasHeader, "header", false, "Use row 1 as column names")

	dumpCmd := &cobra.Command{
		Use:   "dump [input.xlsx] [sheet]",
		Short: "Print every row of a sheet as JSON lines",
		Args:  cobra.ExactArgs(2),
		RunE:  runDump,
	}
	dumpCmd.Flags().BoolVar(&hasHeader, "header", false, "Use row 1 as column names and skip it")
	dumpCmd.Flags().IntVar(&batchSize, "batch-size", xlsxconnect.DefaultBatchSize, "Rows read per batch")

	rootCmd.AddCommand(sheetsCmd, columnsCmd, countCmd, rowsCmd, dumpCmd)
	return rootCmd
}

// openReader opens path with the global flags applied. The returned
// function flushes the logger and must be deferred by the caller.
func openReader(path string) (*xlsxconnect.Reader, func(), error) {
	opts := xlsxconnect.DefaultOptions()
	switch models.SheetOrder(sheetOrder) {
	case models.SheetOrderDeclared, models.SheetOrderPath:
		opts.SheetOrder = models.SheetOrder(sheetOrder)
	default:
		return nil, func() {}, fmt.Errorf("invalid sheet order: %s (must be declared or path)", sheetOrder)
	}
	if batchSize > 0 {
		opts.BatchSize = batchSize
	}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to create logger: %w", err)
		}
		opts.Logger = logger
	}
	sync := func() {
		if opts.Logger != nil {
			_ = opts.Logger.Sync()
		}
	}
	r, err := xlsxconnect.Open(path, opts)
	return r, sync, err
}

func runSheets(cmd *cobra.Command, args []string) error {
	r, sync, err := openReader(args[0])
	defer sync()
	if err != nil {
		return err
	}
	names, err := r.SheetNames()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"book_name": r.FileName(),
		"sheets":    names,
	})
}

func runColumns(cmd *cobra.Command, args []string) error {
	r, sync, err := openReader(args[0])
	defer sync()
	if err != nil {
		return err
	}
	names, err := r.ColumnNames(args[1], hasHeader)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), names)
}

func runCount(cmd *cobra.Command, args []string) error {
	r, sync, err := openReader(args[0])
	defer sync()
	if err != nil {
		return err
	}
	n, err := r.CountRows(args[1])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strconv.Itoa(n))
	return err
}

func runRows(cmd *cobra.Command, args []string) error {
	r, sync, err := openReader(args[0])
	defer sync()
	if err != nil {
		return err
	}
	columns, err := r.ColumnNames(args[1], hasHeader)
	if err != nil {
		return err
	}
	rows, err := r.Rows(args[1], fromRow, toRow)
	if err != nil {
		return err
	}
	jsonData, err := output.RowsToJSON(columns, rows, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return err
}

func runDump(cmd *cobra.Command, args []string) error {
	r, sync, err := openReader(args[0])
	defer sync()
	if err != nil {
		return err
	}
	columns, err := r.ColumnNames(args[1], hasHeader)
	if err != nil {
		return err
	}
	first := 1
	if hasHeader {
		first = 2
	}
	w := cmd.OutOrStdout()
	return r.EachBatch(args[1], first, func(rows []models.Row) error {
		return output.WriteLines(w, columns, rows)
	})
}

func printJSON(w io.Writer, v interface{}) error {
	jsonData, err := output.ToJSON(v, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}
