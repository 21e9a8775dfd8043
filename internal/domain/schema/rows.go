package schema

import "github.com/okian/spadl/internal/domain/model"

// ActionRow converts a typed action into a Row. withNames controls whether
// the optional name columns are emitted.
func ActionRow(a *model.Action, withNames bool) Row {
	row := Row{
		ColGameID:          nullable(a.GameID),
		ColOriginalEventID: a.OriginalEventID,
		ColActionID:        a.ActionID,
		ColPeriodID:        a.PeriodID,
		ColTimeSeconds:     a.TimeSeconds,
		ColTeamID:          nullable(a.TeamID),
		ColPlayerID:        nullable(a.PlayerID),
		ColStartX:          a.StartX,
		ColStartY:          a.StartY,
		ColEndX:            a.EndX,
		ColEndY:            a.EndY,
		ColBodyPartID:      a.BodyPartID,
		ColTypeID:          a.TypeID,
		ColResultID:        a.ResultID,
	}
	if withNames {
		row[ColBodyPartName] = nullable(a.BodyPartName)
		row[ColTypeName] = nullable(a.TypeName)
		row[ColResultName] = nullable(a.ResultName)
	}
	return row
}

// ActionRows converts a batch. Name columns are emitted for every row when
// any action carries names, so a partially named batch fails nullability.
func ActionRows(actions []model.Action) []Row {
	withNames := false
	for i := range actions {
		if actions[i].HasNames() {
			withNames = true
			break
		}
	}
	rows := make([]Row, len(actions))
	for i := range actions {
		rows[i] = ActionRow(&actions[i], withNames)
	}
	return rows
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
