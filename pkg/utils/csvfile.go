package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteCSV writes records to path under header.
// In append mode the header is written only when the file is new or empty and rows go
// after existing content; otherwise the file is truncated and rewritten with a header.
// The parent directory is created if needed. Reports whether a header line was written.
func WriteCSV(path string, header []string, records [][]string, appendMode bool) (bool, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, fmt.Errorf("%w: creating directory '%s': %w", ErrFilesystem, dir, err)
		}
	}

	needHeader := true
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			needHeader = false
		}
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return false, fmt.Errorf("%w: opening '%s': %w", ErrFilesystem, path, err)
	}

	writer := csv.NewWriter(file)
	if needHeader {
		if err := writer.Write(header); err != nil {
			file.Close()
			return false, fmt.Errorf("%w: writing header to '%s': %w", ErrFilesystem, path, err)
		}
	}
	if err := writer.WriteAll(records); err != nil {
		file.Close()
		return needHeader, fmt.Errorf("%w: writing rows to '%s': %w", ErrFilesystem, path, err)
	}
	if err := file.Close(); err != nil {
		return needHeader, fmt.Errorf("%w: closing '%s': %w", ErrFilesystem, path, err)
	}
	return needHeader, nil
}

// ReadCSVColumn returns the values of column name from the CSV at path, in row order.
// A missing column is an error listing the available columns.
func ReadCSVColumn(path, name string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening '%s': %w", ErrFilesystem, path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV '%s': %w", ErrParsing, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: CSV '%s' has no header row", ErrParsing, path)
	}

	header := rows[0]
	idx := -1
	for i, col := range header {
		if col == name || (i == 0 && trimBOM(col) == name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		available := "none"
		if len(header) > 0 {
			available = joinColumns(header)
		}
		return nil, fmt.Errorf("%w: column '%s' not found in CSV. Available columns: %s", ErrValidation, name, available)
	}

	values := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, "")
		}
	}
	return values, nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func joinColumns(cols []string) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = trimBOM(c)
	}
	return strings.Join(names, ", ")
}
