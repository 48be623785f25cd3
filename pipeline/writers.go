package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluiziolira/go-scrape-marketplace/models"
)

// crawlIDColumn trails the record columns in flat outputs.
const crawlIDColumn = "crawl_id"

// outputFile is the file handle shared by the flat writers.
type outputFile struct {
	kind string
	file *os.File
	mu   sync.Mutex
}

func createOutputFile(kind, filename string) (*outputFile, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create %s file: %w", kind, err)
	}
	return &outputFile{kind: kind, file: f}, nil
}

// Validate reports an error when nothing reached the file.
func (o *outputFile) Validate() error {
	info, err := o.file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s file: %w", o.kind, err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("%s file is empty", o.kind)
	}
	return nil
}

// CSVWriter writes one row per product, header first.
type CSVWriter struct {
	*outputFile
	writer  *csv.Writer
	crawlID string
}

// NewCSVWriter creates filename and writes the header row. Every row is
// tagged with crawlID.
func NewCSVWriter(filename, crawlID string) (*CSVWriter, error) {
	out, err := createOutputFile("csv", filename)
	if err != nil {
		return nil, err
	}

	cw := &CSVWriter{outputFile: out, writer: csv.NewWriter(out.file), crawlID: crawlID}
	header := append(append([]string{}, recordColumns...), crawlIDColumn)
	if err := cw.writeRows([][]string{header}); err != nil {
		out.file.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return cw, nil
}

func (cw *CSVWriter) Write(records []*models.ProductRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, append(recordRow(record), cw.crawlID))
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()
	if err := cw.writeRows(rows); err != nil {
		return fmt.Errorf("write csv records: %w", err)
	}
	return nil
}

func (cw *CSVWriter) writeRows(rows [][]string) error {
	if err := cw.writer.WriteAll(rows); err != nil {
		return err
	}
	return cw.writer.Error()
}

func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// jsonLine is one JSONL entry: the record's fields plus the crawl it came
// from.
type jsonLine struct {
	CrawlID string `json:"crawl_id"`
	*models.ProductRecord
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	*outputFile
	buffer  *bufio.Writer
	encoder *json.Encoder
	crawlID string
}

// NewJSONWriter creates filename for JSONL output tagged with crawlID.
func NewJSONWriter(filename, crawlID string) (*JSONWriter, error) {
	out, err := createOutputFile("json", filename)
	if err != nil {
		return nil, err
	}

	buffer := bufio.NewWriter(out.file)
	return &JSONWriter{
		outputFile: out,
		buffer:     buffer,
		encoder:    json.NewEncoder(buffer),
		crawlID:    crawlID,
	}, nil
}

func (jw *JSONWriter) Write(records []*models.ProductRecord) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, record := range records {
		if err := jw.encoder.Encode(jsonLine{CrawlID: jw.crawlID, ProductRecord: record}); err != nil {
			return fmt.Errorf("encode %s: %w", record.DetailURL, err)
		}
	}
	if err := jw.buffer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.buffer.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
