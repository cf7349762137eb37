package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// csvHeader is the fixed column order of the output file
var csvHeader = []string{
	"subreddit",
	"search_query",
	"title",
	"post_summary",
	"discussion_summary",
	"score",
	"url",
	"created_utc",
}

// CSVWriter streams result rows to a delimited file, one flush per row
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter writes the header to w and returns a writer for the rows
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w)}
	if err := cw.w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return cw, nil
}

// CreateCSVFile truncates or creates path and writes the header
func CreateCSVFile(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	cw, err := NewCSVWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	cw.closer = f
	return cw, nil
}

// WriteRow appends a single row and flushes it
func (cw *CSVWriter) WriteRow(row ResultRow) error {
	record := []string{
		row.Board,
		row.Query,
		row.Title,
		row.PostSummary,
		row.DiscussionSummary,
		strconv.Itoa(row.Score),
		row.URL,
		formatCreatedUTC(row.CreatedUTC),
	}
	if err := cw.w.Write(record); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	cw.w.Flush()
	return cw.w.Error()
}

// Close flushes pending data and closes the underlying file, if any
func (cw *CSVWriter) Close() error {
	cw.w.Flush()
	err := cw.w.Error()
	if cw.closer != nil {
		if cerr := cw.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// formatCreatedUTC renders epoch seconds as a float that always carries a
// fractional part, e.g. 1700000000.0
func formatCreatedUTC(ts float64) string {
	s := strconv.FormatFloat(ts, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
