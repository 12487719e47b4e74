package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okian/avalia/pkg/logger"
	"github.com/okian/avalia/pkg/metrics"
)

// Delimiter separates fields on disk and in exports.
const Delimiter = ";"

const maxLineBytes = 1 << 20

// Schema describes the row shape of one table.
type Schema struct {
	// Name labels the table in logs and metrics.
	Name string
	// Fields are the known columns in order; column 0 is the integer id.
	Fields []string
	// MinFields is the shortest line accepted on load.
	MinFields int
	// Defaults fill missing trailing known columns, keyed by column index.
	Defaults map[int]string
}

// Table is an ordered in-memory set of rows persisted as one line per row.
// Rows may carry unknown trailing fields; they are kept verbatim.
// A Table is not safe for concurrent use.
type Table struct {
	schema Schema
	rows   [][]string
	nextID int
	log    logger.Logger
}

// NewTable returns an empty table with nextID 1.
func NewTable(schema Schema, opts ...Option) *Table {
	t := &Table{
		schema: schema,
		nextID: 1,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.Named("store")
	return t
}

// Schema returns the table schema.
func (t *Table) Schema() Schema { return t.schema }

// Load replaces the rows with the contents of path. A missing file empties
// the table. Any other failure returns ErrIO and leaves the rows untouched.
func (t *Table) Load(ctx context.Context, path string) error {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.rows = nil
			t.nextID = 1
			t.log.Info(ctx, "store file absent, starting empty",
				logger.String("store", t.schema.Name),
				logger.String("path", path))
			metrics.RecordStoreLoad(t.schema.Name, 0, sinceMs(start))
			return nil
		}
		return t.loadFailed(ctx, path, err)
	}
	defer f.Close()

	rows, skipped, err := t.parse(f)
	if err != nil {
		return t.loadFailed(ctx, path, err)
	}

	t.rows = rows
	t.RecomputeNextID()

	t.log.Info(ctx, "store loaded",
		logger.String("store", t.schema.Name),
		logger.String("path", path),
		logger.Int("records", len(rows)),
		logger.Int("skipped", skipped),
		logger.Int("next_id", t.nextID))
	metrics.RecordStoreLoad(t.schema.Name, len(rows), sinceMs(start))
	return nil
}

func (t *Table) loadFailed(ctx context.Context, path string, err error) error {
	t.log.Error(ctx, "store load failed",
		logger.String("store", t.schema.Name),
		logger.String("path", path),
		logger.Error(err))
	metrics.RecordStoreLoadError(t.schema.Name)
	metrics.RecordErrorByComponent("repository", "load")
	return fmt.Errorf("%w: load %s: %w", ErrIO, path, err)
}

func (t *Table) parse(r io.Reader) ([][]string, int, error) {
	var (
		rows    [][]string
		skipped int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, Delimiter)
		if len(fields) < t.schema.MinFields {
			skipped++
			continue
		}
		rows = append(rows, t.pad(fields))
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return rows, skipped, nil
}

// pad extends fields up to the known column count using schema defaults.
func (t *Table) pad(fields []string) []string {
	for i := len(fields); i < len(t.schema.Fields); i++ {
		fields = append(fields, t.schema.Defaults[i])
	}
	return fields
}

// Save truncates path and writes every row. In-memory rows are kept even
// when writing fails.
func (t *Table) Save(ctx context.Context, path string) error {
	start := time.Now()
	if err := t.write(path); err != nil {
		t.log.Error(ctx, "store save failed",
			logger.String("store", t.schema.Name),
			logger.String("path", path),
			logger.Error(err))
		metrics.RecordStoreSaveError(t.schema.Name)
		metrics.RecordErrorByComponent("repository", "save")
		return fmt.Errorf("%w: save %s: %w", ErrIO, path, err)
	}
	t.log.Debug(ctx, "store saved",
		logger.String("store", t.schema.Name),
		logger.String("path", path),
		logger.Int("records", len(t.rows)))
	metrics.RecordStoreSave(t.schema.Name, len(t.rows), sinceMs(start))
	return nil
}

func (t *Table) write(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	for _, row := range t.rows {
		if _, err = w.WriteString(JoinFields(row) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// JoinFields joins fields with the delimiter, replacing any ';' inside a
// field with ','. The substitution is not reversible.
func JoinFields(fields []string) string {
	clean := make([]string, len(fields))
	for i, f := range fields {
		clean[i] = strings.ReplaceAll(f, Delimiter, ",")
	}
	return strings.Join(clean, Delimiter)
}

// Append assigns the next id to a new row built from fields (id excluded)
// and returns that id. The caller persists with Save.
func (t *Table) Append(fields ...string) int {
	id := t.nextID
	t.nextID++

	row := make([]string, 0, len(t.schema.Fields))
	row = append(row, strconv.Itoa(id))
	row = append(row, fields...)
	t.rows = append(t.rows, t.pad(row))
	metrics.UpdateStoreRecords(t.schema.Name, len(t.rows))
	return id
}

// UpdateAt overwrites the columns after the id with fields. Columns past
// the given fields, including unknown trailing ones, are kept.
func (t *Table) UpdateAt(index int, fields ...string) error {
	if err := t.check(index); err != nil {
		return err
	}
	row := t.rows[index]
	for len(row) < len(fields)+1 {
		row = append(row, "")
	}
	copy(row[1:], fields)
	t.rows[index] = row
	return nil
}

// SetField overwrites a single column of a row.
func (t *Table) SetField(index, column int, value string) error {
	if err := t.check(index); err != nil {
		return err
	}
	if column <= 0 {
		return fmt.Errorf("%w: column %d", ErrIndexOutOfRange, column)
	}
	row := t.rows[index]
	for len(row) <= column {
		row = append(row, "")
	}
	row[column] = value
	t.rows[index] = row
	return nil
}

// RemoveAt deletes the row at index. Ids are not reused.
func (t *Table) RemoveAt(index int) error {
	if err := t.check(index); err != nil {
		return err
	}
	t.rows = append(t.rows[:index], t.rows[index+1:]...)
	metrics.UpdateStoreRecords(t.schema.Name, len(t.rows))
	return nil
}

func (t *Table) check(index int) error {
	if index < 0 || index >= len(t.rows) {
		return fmt.Errorf("%w: %s[%d] of %d", ErrIndexOutOfRange, t.schema.Name, index, len(t.rows))
	}
	return nil
}

// RecomputeNextID sets nextID to the highest row id plus one, or 1.
func (t *Table) RecomputeNextID() {
	maxID := 0
	for _, row := range t.rows {
		if id := RowID(row); id > maxID {
			maxID = id
		}
	}
	t.nextID = maxID + 1
}

// NextID returns the id the next Append will assign.
func (t *Table) NextID() int { return t.nextID }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns a copy of the row at index, or nil when out of range.
func (t *Table) Row(index int) []string {
	if index < 0 || index >= len(t.rows) {
		return nil
	}
	return append([]string(nil), t.rows[index]...)
}

// Field returns one column of a row, or "" when absent.
func (t *Table) Field(index, column int) string {
	if index < 0 || index >= len(t.rows) || column < 0 || column >= len(t.rows[index]) {
		return ""
	}
	return t.rows[index][column]
}

// Rows returns a copy of every row in order.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// IndexOf returns the index of the first row with id, or -1.
func (t *Table) IndexOf(id int) int {
	for i, row := range t.rows {
		if RowID(row) == id {
			return i
		}
	}
	return -1
}

// RowID parses column 0. Unparseable ids read as 0.
func RowID(row []string) int {
	if len(row) == 0 {
		return 0
	}
	return Atoi(row[0])
}

// Atoi parses a trimmed integer field, returning 0 on failure.
func Atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
