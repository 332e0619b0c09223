package utils

import (
	"encoding/csv"
	"fmt"
	"os"
)

// DropLeadingRows copies the CSV at inputPath to outputPath without its first n rows.
// Returns the number of rows written.
func DropLeadingRows(inputPath, outputPath string, n int) (int, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("%w: opening '%s': %w", ErrFilesystem, inputPath, err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1 // Methodology rows rarely match the data width
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("%w: reading CSV '%s': %w", ErrParsing, inputPath, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: input file '%s' is empty", ErrParsing, inputPath)
	}
	if n > len(rows) {
		n = len(rows)
	}
	kept := rows[n:]

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("%w: creating '%s': %w", ErrFilesystem, outputPath, err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.WriteAll(kept); err != nil {
		return 0, fmt.Errorf("%w: writing '%s': %w", ErrFilesystem, outputPath, err)
	}
	return len(kept), nil
}
