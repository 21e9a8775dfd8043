// Package schema declares the canonical SPADL action contract and validates
// batches of action records against it.
//
// The contract is an ordered list of column definitions. Validation runs the
// checks of every column and collects each failure instead of stopping at the
// first one; a batch with any failure is rejected as a whole.
package schema

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/internal/domain/registry"
)

// Column names.
const (
	ColGameID          = "game_id"
	ColOriginalEventID = "original_event_id"
	ColActionID        = "action_id"
	ColPeriodID        = "period_id"
	ColTimeSeconds     = "time_seconds"
	ColTeamID          = "team_id"
	ColPlayerID        = "player_id"
	ColStartX          = "start_x"
	ColStartY          = "start_y"
	ColEndX            = "end_x"
	ColEndY            = "end_y"
	ColBodyPartID      = "bodypart_id"
	ColBodyPartName    = "bodypart_name"
	ColTypeID          = "type_id"
	ColTypeName        = "type_name"
	ColResultID        = "result_id"
	ColResultName      = "result_name"
)

// Row is one loosely typed action record keyed by column name.
type Row map[string]any

type kind int

const (
	kindObject kind = iota
	kindInt
	kindFloat
	kindString
)

func (k kind) String() string {
	switch k {
	case kindInt:
		return "integer"
	case kindFloat:
		return "float"
	case kindString:
		return "string"
	default:
		return "object"
	}
}

type column struct {
	name     string
	kind     kind
	nullable bool
	optional bool
	bounded  bool
	min, max float64
	enum     *registry.Enum
	idColumn string // name columns must match the name registered for this id column
	unique   bool
}

// Schema is the SPADL action contract bound to one registry and pitch.
type Schema struct {
	columns []column
	known   map[string]struct{}
	reg     *registry.Registry
	pitch   normalize.Pitch
}

// New builds the contract for reg and pitch.
func New(reg *registry.Registry, pitch normalize.Pitch) *Schema {
	cols := []column{
		{name: ColGameID, kind: kindObject},
		{name: ColOriginalEventID, kind: kindObject, nullable: true},
		{name: ColActionID, kind: kindInt, bounded: true, min: 0, max: maxActionID, unique: true},
		{name: ColPeriodID, kind: kindInt, bounded: true, min: normalize.FirstPeriod, max: normalize.LastPeriod},
		{name: ColTimeSeconds, kind: kindFloat, bounded: true, min: 0, max: normalize.MaxTimeSeconds},
		{name: ColTeamID, kind: kindObject},
		{name: ColPlayerID, kind: kindObject},
		{name: ColStartX, kind: kindFloat, bounded: true, min: 0, max: pitch.Length},
		{name: ColStartY, kind: kindFloat, bounded: true, min: 0, max: pitch.Width},
		{name: ColEndX, kind: kindFloat, bounded: true, min: 0, max: pitch.Length},
		{name: ColEndY, kind: kindFloat, bounded: true, min: 0, max: pitch.Width},
		{name: ColBodyPartID, kind: kindInt, enum: reg.BodyParts},
		{name: ColBodyPartName, kind: kindString, optional: true, enum: reg.BodyParts, idColumn: ColBodyPartID},
		{name: ColTypeID, kind: kindInt, enum: reg.ActionTypes},
		{name: ColTypeName, kind: kindString, optional: true, enum: reg.ActionTypes, idColumn: ColTypeID},
		{name: ColResultID, kind: kindInt, enum: reg.Results},
		{name: ColResultName, kind: kindString, optional: true, enum: reg.Results, idColumn: ColResultID},
	}
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c.name] = struct{}{}
	}
	return &Schema{columns: cols, known: known, reg: reg, pitch: pitch}
}

const maxActionID = 1 << 53

// Columns returns the column names in contract order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.name
	}
	return out
}

// Registry returns the registry the contract was built with.
func (s *Schema) Registry() *registry.Registry { return s.reg }

// Pitch returns the pitch the contract's bounds come from.
func (s *Schema) Pitch() normalize.Pitch { return s.pitch }

// Validate checks rows against the contract. On success it returns rows
// unchanged; otherwise it returns nil and an error wrapping *Violation.
func (s *Schema) Validate(rows []Row) ([]Row, error) {
	failures := s.checkUnexpected(rows)
	present := s.presentOptional(rows)
	for i := range s.columns {
		col := &s.columns[i]
		if col.optional && !present[col.name] {
			continue
		}
		failures = append(failures, s.checkColumn(col, rows)...)
	}
	if len(failures) > 0 {
		return nil, errors.Mark(&Violation{Failures: failures}, ErrSchemaViolation)
	}
	return rows, nil
}

// ValidateActions validates typed records. The optional name columns are
// checked when any action carries names.
func (s *Schema) ValidateActions(actions []model.Action) ([]model.Action, error) {
	if _, err := s.Validate(ActionRows(actions)); err != nil {
		return nil, err
	}
	return actions, nil
}

func (s *Schema) checkUnexpected(rows []Row) []Failure {
	extra := map[string]*collector{}
	var order []string
	for i, row := range rows {
		for key := range row {
			if _, ok := s.known[key]; ok {
				continue
			}
			c, ok := extra[key]
			if !ok {
				c = &collector{}
				extra[key] = c
				order = append(order, key)
			}
			c.add(i)
		}
	}
	sort.Strings(order)
	out := make([]Failure, 0, len(order))
	for _, key := range order {
		out = append(out, extra[key].failure(key, CheckStrict, "unexpected column"))
	}
	return out
}

func (s *Schema) presentOptional(rows []Row) map[string]bool {
	present := map[string]bool{}
	for _, row := range rows {
		for _, col := range s.columns {
			if !col.optional {
				continue
			}
			if _, ok := row[col.name]; ok {
				present[col.name] = true
			}
		}
	}
	return present
}

type cell struct {
	i    int64
	f    float64
	s    string
	null bool
}

func (s *Schema) coerce(col *column, v any) (cell, bool) {
	switch col.kind {
	case kindInt:
		i, null, ok := coerceInt(v)
		return cell{i: i, f: float64(i), null: null}, ok
	case kindFloat:
		f, null, ok := coerceFloat(v)
		return cell{f: f, null: null}, ok
	case kindString:
		str, null, ok := coerceString(v)
		return cell{s: str, null: null}, ok
	default:
		str, null, ok := coerceObject(v)
		return cell{s: str, null: null}, ok
	}
}

func (s *Schema) checkColumn(col *column, rows []Row) []Failure {
	var missing, badType, nulls, bounds, domain, mismatch collector
	seen := map[int64][]int{}

	for i, row := range rows {
		v, ok := row[col.name]
		if !ok {
			missing.add(i)
			continue
		}
		c, ok := s.coerce(col, v)
		if !ok {
			badType.add(i)
			continue
		}
		if c.null {
			if !col.nullable {
				nulls.add(i)
			}
			continue
		}
		if col.bounded && (c.f < col.min || c.f > col.max) {
			bounds.add(i)
		}
		if col.enum != nil {
			switch col.kind {
			case kindInt:
				if !col.enum.HasID(int(c.i)) {
					domain.add(i)
				}
			case kindString:
				if !col.enum.HasName(c.s) {
					domain.add(i)
				} else if !s.matchesID(col, row, c.s) {
					mismatch.add(i)
				}
			}
		}
		if col.unique {
			seen[c.i] = append(seen[c.i], i)
		}
	}

	var dup collector
	if col.unique {
		for i := range rows {
			v, ok := rows[i][col.name]
			if !ok {
				continue
			}
			c, ok := s.coerce(col, v)
			if !ok || c.null {
				continue
			}
			if len(seen[c.i]) > 1 {
				dup.add(i)
			}
		}
	}

	var out []Failure
	if missing.count > 0 {
		out = append(out, missing.failure(col.name, CheckStrict, "missing column"))
	}
	if badType.count > 0 {
		out = append(out, badType.failure(col.name, CheckType, "not coercible to "+col.kind.String()))
	}
	if nulls.count > 0 {
		out = append(out, nulls.failure(col.name, CheckNullable, "null not allowed"))
	}
	if bounds.count > 0 {
		out = append(out, bounds.failure(col.name, CheckBounds, boundsMessage(col)))
	}
	if domain.count > 0 {
		out = append(out, domain.failure(col.name, CheckDomain, "not in "+string(col.enum.Kind())+" registry"))
	}
	if mismatch.count > 0 {
		out = append(out, mismatch.failure(col.name, CheckDomain, "does not match the name registered for "+col.idColumn))
	}
	if dup.count > 0 {
		out = append(out, dup.failure(col.name, CheckUnique, "duplicate values"))
	}
	return out
}

func (s *Schema) matchesID(col *column, row Row, name string) bool {
	raw, ok := row[col.idColumn]
	if !ok {
		return true
	}
	id, null, ok := coerceInt(raw)
	if !ok || null || !col.enum.HasID(int(id)) {
		// the id column reports its own failure
		return true
	}
	registered, err := col.enum.Name(int(id))
	return err == nil && registered == name
}
