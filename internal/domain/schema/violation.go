package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Check names a stage of column validation.
type Check string

// Validation stages, in the order they are applied to a column.
const (
	CheckStrict   Check = "strict"
	CheckType     Check = "type"
	CheckNullable Check = "nullable"
	CheckBounds   Check = "bounds"
	CheckDomain   Check = "domain"
	CheckUnique   Check = "unique"
)

// maxReportedRows caps the row indexes kept per failure; Count is exact.
const maxReportedRows = 20

// Failure is one failed check on one column.
type Failure struct {
	Column  string `json:"column"`
	Check   Check  `json:"check"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	Rows    []int  `json:"rows"`
}

func (f Failure) String() string {
	var b strings.Builder
	b.WriteString(f.Column)
	b.WriteString(" (")
	b.WriteString(string(f.Check))
	b.WriteString("): ")
	b.WriteString(f.Message)
	b.WriteString(" in ")
	b.WriteString(strconv.Itoa(f.Count))
	b.WriteString(" row(s)")
	if len(f.Rows) > 0 {
		fmt.Fprintf(&b, " %v", f.Rows)
	}
	return b.String()
}

// Violation lists every failure found in a rejected batch.
type Violation struct {
	Failures []Failure `json:"failures"`
}

func (v *Violation) Error() string {
	parts := make([]string, len(v.Failures))
	for i, f := range v.Failures {
		parts[i] = f.String()
	}
	return "schema violation: " + strings.Join(parts, "; ")
}

// Columns returns the distinct failing columns in report order.
func (v *Violation) Columns() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, f := range v.Failures {
		if _, ok := seen[f.Column]; ok {
			continue
		}
		seen[f.Column] = struct{}{}
		out = append(out, f.Column)
	}
	return out
}

// Has reports whether column failed check.
func (v *Violation) Has(column string, check Check) bool {
	for _, f := range v.Failures {
		if f.Column == column && f.Check == check {
			return true
		}
	}
	return false
}

type collector struct {
	rows  []int
	count int
}

func (c *collector) add(row int) {
	c.count++
	if len(c.rows) < maxReportedRows {
		c.rows = append(c.rows, row)
	}
}

func (c *collector) failure(column string, check Check, msg string) Failure {
	return Failure{Column: column, Check: check, Message: msg, Count: c.count, Rows: c.rows}
}

func boundsMessage(col *column) string {
	return "outside [" + strconv.FormatFloat(col.min, 'g', -1, 64) + ", " + strconv.FormatFloat(col.max, 'g', -1, 64) + "]"
}
