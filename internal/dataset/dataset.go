package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pfrederiksen/kcycle-crawler/internal/race"
)

const (
	DefaultDir    = "data"
	EntriesFile   = "race_info.csv"
	ResultsFile   = "race_results.csv"
	AnnotatedFile = "race_annotated.csv"
)

// keepText disables gota's NA detection so cells such as "NA" stay verbatim
var keepText = []string{}

// ErrEmpty is returned when writing a dataset with no rows
var ErrEmpty = errors.New("empty dataset")

// Store resolves dataset file names against a data directory
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed
func New(dir string) (*Store, error) {
	dir, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = DefaultDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

// expandHome replaces a leading ~/ with the user's home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Path returns name inside the store directory. Absolute paths and paths
// starting with ~/ are returned as they are, expanded.
func (s *Store) Path(name string) string {
	if strings.HasPrefix(name, "~/") {
		if expanded, err := expandHome(name); err == nil {
			return expanded
		}
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// Write encodes values with schema and writes them as a BOM-prefixed CSV
func Write[T any](w io.Writer, schema race.Schema[T], values []T) error {
	if len(values) == 0 {
		return ErrEmpty
	}

	df := dataframe.LoadRecords(schema.Encode(values),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(keepText),
	)
	if df.Err != nil {
		return fmt.Errorf("building dataset: %w", df.Err)
	}

	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	if err := df.WriteCSV(bw); err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	return nil
}

// Read parses a CSV dataset, with or without a byte order mark, into values.
// Columns are matched by header name.
func Read[T any](r io.Reader, schema race.Schema[T]) ([]T, error) {
	br := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	df := dataframe.ReadCSV(br,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(keepText),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", df.Err)
	}

	values, err := schema.Decode(df.Records())
	if err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	return values, nil
}

func writeFile[T any](path string, schema race.Schema[T], values []T) error {
	if len(values) == 0 {
		return ErrEmpty
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, schema, values); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readFile[T any](path string, schema race.Schema[T]) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	values, err := Read(f, schema)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// WriteEntries saves the entry dataset under name
func (s *Store) WriteEntries(name string, records []race.EntryRecord) error {
	return writeFile(s.Path(name), race.EntrySchema, records)
}

// ReadEntries loads the entry dataset saved under name
func (s *Store) ReadEntries(name string) ([]race.EntryRecord, error) {
	return readFile(s.Path(name), race.EntrySchema)
}

// WriteResults saves the result dataset under name
func (s *Store) WriteResults(name string, rows []race.ResultRow) error {
	return writeFile(s.Path(name), race.ResultSchema, rows)
}

// ReadResults loads the result dataset saved under name
func (s *Store) ReadResults(name string) ([]race.ResultRow, error) {
	return readFile(s.Path(name), race.ResultSchema)
}

// WriteAnnotated saves the rank-annotated entry dataset under name
func (s *Store) WriteAnnotated(name string, entries []race.AnnotatedEntry) error {
	return writeFile(s.Path(name), race.AnnotatedSchema, entries)
}

// ReadAnnotated loads the rank-annotated entry dataset saved under name
func (s *Store) ReadAnnotated(name string) ([]race.AnnotatedEntry, error) {
	return readFile(s.Path(name), race.AnnotatedSchema)
}
