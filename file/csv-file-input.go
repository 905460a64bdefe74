package file

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/logger"
)

var gzipExtension = regexp.MustCompile(`(?i)\.(gz|gzip)$`)

const utf8BOM = "\uFEFF"

// FileNotFoundError is returned when the input file does not exist.
type FileNotFoundError struct {
	FileName string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("CSV file not found: %v", e.FileName)
}

// HeaderMismatchError is returned when the CSV header is not exactly the expected ordered list of columns.
type HeaderMismatchError struct {
	Expected []string
	Got      []string
}

func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf("CSV columns don't match expected order. Expected: [%v], Got: [%v]",
		strings.Join(e.Expected, ", "), strings.Join(e.Got, ", "))
}

// CSVFileInput reads a CSV file with a header row.
// Files ending .gz or .gzip are decompressed on the fly.
type CSVFileInput struct {
	log       logger.Logger
	fileName  string
	file      *os.File
	gzReader  *gzip.Reader
	csvReader *csv.Reader
	header    []string
	rowCount  int
}

// NewCSVFileInput opens fileName and reads its header row.
func NewCSVFileInput(log logger.Logger, fileName string) (*CSVFileInput, error) {
	f := &CSVFileInput{log: log, fileName: fileName}
	var err error
	f.file, err = os.Open(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileNotFoundError{FileName: fileName}
		}
		return nil, errors.Wrapf(err, "unable to open CSV file %q", fileName)
	}
	var r io.Reader = bufio.NewReader(f.file)
	if gzipExtension.MatchString(fileName) { // if the file is compressed...
		f.gzReader, err = gzip.NewReader(r)
		if err != nil {
			_ = f.file.Close()
			return nil, errors.Wrapf(err, "unable to read gzip file %q", fileName)
		}
		r = f.gzReader
	}
	f.csvReader = csv.NewReader(r)
	f.csvReader.ReuseRecord = false
	header, err := f.csvReader.Read()
	if err != nil {
		_ = f.Close()
		if err == io.EOF {
			return nil, errors.Errorf("CSV file %q is empty", fileName)
		}
		return nil, errors.Wrapf(err, "unable to read header of CSV file %q", fileName)
	}
	for idx := range header { // for each column...
		header[idx] = strings.TrimSpace(header[idx])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	f.header = header
	log.Debug("opened CSV file ", fileName, " with columns ", header)
	return f, nil
}

// Header returns the column names from the first row.
func (f *CSVFileInput) Header() []string {
	return f.header
}

// ValidateHeader returns a HeaderMismatchError unless the header matches expected exactly, in order.
func (f *CSVFileInput) ValidateHeader(expected []string) error {
	if len(expected) != len(f.header) {
		return &HeaderMismatchError{Expected: expected, Got: f.header}
	}
	for idx := range expected {
		if expected[idx] != f.header[idx] {
			return &HeaderMismatchError{Expected: expected, Got: f.header}
		}
	}
	return nil
}

// Read returns the next data row or io.EOF when there are no more.
func (f *CSVFileInput) Read() ([]string, error) {
	rec, err := f.csvReader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, errors.Wrapf(err, "error reading CSV file %q after row %v", f.fileName, f.rowCount)
	}
	f.rowCount++
	return rec, nil
}

// RowCount returns the number of data rows read so far.
func (f *CSVFileInput) RowCount() int {
	return f.rowCount
}

func (f *CSVFileInput) Close() error {
	if f.gzReader != nil {
		_ = f.gzReader.Close()
	}
	return f.file.Close()
}
