package schema

import "github.com/cockroachdb/errors"

// ErrSchemaViolation marks a batch rejected by Validate. The concrete error
// is a *Violation listing every failing column.
var ErrSchemaViolation = errors.New("schema violation")
