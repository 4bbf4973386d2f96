package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// table is a CSV file read into memory with a case-insensitive header index.
type table struct {
	name   string
	header map[string]int
	rows   [][]string
}

func readTable(name string, r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", name)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	t := &table{name: name, header: make(map[string]int, len(head))}
	for i, h := range head {
		t.header[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	t.rows, err = cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.header[strings.ToLower(col)]
	return ok
}

func (t *table) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing column(s) %s", t.name, strings.Join(missing, ", "))
	}
	return nil
}

// str returns the trimmed cell of column col in row i, or "" if absent.
func (t *table) str(i int, col string) string {
	idx, ok := t.header[strings.ToLower(col)]
	if !ok || idx >= len(t.rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.rows[i][idx])
}

func (t *table) float(i int, col string) (float64, error) {
	v, err := strconv.ParseFloat(t.str(i, col), 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: column %s: %w", t.name, i+2, col, err)
	}
	return v, nil
}

// int accepts integral values written as floats ("3.0").
func (t *table) int(i int, col string) (int, error) {
	s := t.str(i, col)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%s line %d: column %s: %q is not an integer", t.name, i+2, col, s)
	}
	return int(f), nil
}

func openFile(path string, load func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return load(f)
}
