// Package flatfile parses the tab-separated flat-file reports returned by the
// report download operation.
package flatfile

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrEmpty is returned when the input has no header row.
var ErrEmpty = errors.New("flat file has no header row")

var (
	datetimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(Z|[+-]\d{2}:\d{2})?$`)
	floatRe    = regexp.MustCompile(`^\d+\.\d+$`)
	intRe      = regexp.MustCompile(`^\d+$`)
)

const naiveLayout = "2006-01-02T15:04:05"

type options struct {
	numeric  bool
	location *time.Location
}

// Option configures Parse.
type Option func(*options)

// WithNumeric converts digit-only cells to int64 and d+.d+ cells to float64.
func WithNumeric() Option {
	return func(o *options) {
		o.numeric = true
	}
}

// WithLocation sets the zone datetimes are rendered in. The default is
// time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// Report is a parsed flat file. Cells are nil (empty), time.Time, string,
// or, with WithNumeric, int64 and float64.
type Report struct {
	Header []string
	Rows   [][]any
}

// Parse splits data into a header row and typed data rows. Lines may end in
// \n or \r\n; blank lines are skipped.
func Parse(data []byte, opts ...Option) (*Report, error) {
	o := options{location: time.Local}
	for _, opt := range opts {
		opt(&o)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, ErrEmpty
	}

	r := &Report{}
	for _, h := range strings.Split(lines[0], "\t") {
		r.Header = append(r.Header, strings.TrimSpace(h))
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		row := make([]any, len(cells))
		for i, c := range cells {
			row[i] = o.convert(strings.TrimSpace(c))
		}
		r.Rows = append(r.Rows, row)
	}
	return r, nil
}

func (o options) convert(s string) any {
	if s == "" {
		return nil
	}
	if datetimeRe.MatchString(s) {
		if t, ok := o.parseTime(s); ok {
			return t
		}
	}
	if o.numeric {
		if floatRe.MatchString(s) {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
		if intRe.MatchString(s) {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
	}
	return s
}

// parseTime reads naive datetimes as UTC and renders every instant in the
// configured location.
func (o options) parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(o.location), true
	}
	if t, err := time.Parse(naiveLayout, s); err == nil {
		return t.In(o.location), true
	}
	return time.Time{}, false
}

// Records returns each row keyed by header name. Cells beyond the header are
// dropped and missing cells are nil.
func (r *Report) Records() []map[string]any {
	out := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(map[string]any, len(r.Header))
		for i, h := range r.Header {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = nil
			}
		}
		out = append(out, rec)
	}
	return out
}

// Column returns every value of the named column, or nil when the header
// has no such column.
func (r *Report) Column(name string) []any {
	idx := -1
	for i, h := range r.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}
