package pipeline

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/go-scrape-marketplace/models"
)

// DualWriter mirrors every batch into a CSV file and a JSONL file.
type DualWriter struct {
	csv  *CSVWriter
	json *JSONWriter
}

// NewDualWriter opens both outputs; when the second cannot be created the
// first is closed again.
func NewDualWriter(csvFilename, jsonFilename, crawlID string) (*DualWriter, error) {
	csvOut, err := NewCSVWriter(csvFilename, crawlID)
	if err != nil {
		return nil, err
	}
	jsonOut, err := NewJSONWriter(jsonFilename, crawlID)
	if err != nil {
		return nil, errors.Join(err, csvOut.Close())
	}
	return &DualWriter{csv: csvOut, json: jsonOut}, nil
}

type namedOutput struct {
	name string
	w    OutputWriter
}

func (dw *DualWriter) parts() []namedOutput {
	return []namedOutput{{"csv", dw.csv}, {"json", dw.json}}
}

// Write stops at the first output that fails.
func (dw *DualWriter) Write(records []*models.ProductRecord) error {
	for _, part := range dw.parts() {
		if err := part.w.Write(records); err != nil {
			return fmt.Errorf("%s output: %w", part.name, err)
		}
	}
	return nil
}

func (dw *DualWriter) Close() error {
	var errs []error
	for _, part := range dw.parts() {
		if err := part.w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s output: %w", part.name, err))
		}
	}
	return errors.Join(errs...)
}

func (dw *DualWriter) Validate() error {
	var errs []error
	for _, part := range dw.parts() {
		if err := part.w.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s output: %w", part.name, err))
		}
	}
	return errors.Join(errs...)
}
