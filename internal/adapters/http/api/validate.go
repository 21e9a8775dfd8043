package api

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/okian/spadl/internal/domain/schema"
	"github.com/okian/spadl/internal/domain/types"
)

// HandleValidate handles POST /validate. The body is a JSON array of action
// records; 200 means the batch satisfies the contract, 422 lists every
// failing column.
func (s *Server) HandleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	var rows []schema.Row
	if err := sonic.Unmarshal(body, &rows); err != nil {
		writeError(w, http.StatusBadRequest, errors.Mark(errors.Wrap(err, "decode rows"), ErrBadRequest))
		return
	}

	if _, err := s.deps.Validate(rows); err != nil {
		var v *schema.Violation
		if !errors.As(err, &v) {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, types.ValidateResponse{
			Rows: len(rows), Violations: v.Failures,
		})
		return
	}
	writeJSON(w, http.StatusOK, types.ValidateResponse{Valid: true, Rows: len(rows)})
}
