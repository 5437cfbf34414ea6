package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteCSV writes the frame as CSV with a header row.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Columns); err != nil {
		return err
	}
	for _, row := range f.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the frame to path, creating parent directories.
func (f *Frame) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return f.WriteCSV(file)
}

// ReadCSV loads a frame from CSV. The first row is the header; ragged
// rows are rejected by the CSV reader.
func ReadCSV(r io.Reader) (*Frame, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}

	f := &Frame{Columns: records[0]}
	if len(records) > 1 {
		f.Rows = records[1:]
	}
	return f, nil
}

// ReadCSVFile loads a frame from the file at path. The frame's ticker
// attr is left blank; the datatype records the import source.
func ReadCSVFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := ReadCSV(file)
	if err != nil {
		return nil, err
	}
	f.Attrs.Datatype = "import"
	f.Attrs.Period = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return f, nil
}
