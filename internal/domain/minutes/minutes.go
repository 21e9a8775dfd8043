// Package minutes derives each player's playing window in a game from
// provider-neutral roster entries.
package minutes

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/okian/spadl/internal/domain/model"
)

// Kind classifies a roster entry.
type Kind int

// Roster entry kinds.
const (
	Starter Kind = iota
	SubOn
	SubOff
	SendOff
)

func (k Kind) String() string {
	switch k {
	case Starter:
		return "starter"
	case SubOn:
		return "sub_on"
	case SubOff:
		return "sub_off"
	case SendOff:
		return "send_off"
	default:
		return "unknown"
	}
}

// Entry is one lineup or roster change. Minute is ignored for starters.
type Entry struct {
	Kind       Kind
	Minute     int
	TeamID     string
	TeamName   string
	PlayerID   string
	PlayerName string
}

// Match is the roster history of one game. FinalMinute is the minute the
// last period ended.
type Match struct {
	GameID      string
	FinalMinute int
	Entries     []Entry
}

type window struct {
	pg  model.PlayerGame
	out int
}

// Extract returns one record per player who appeared, lineup first and then
// substitutes in the order they entered.
func Extract(m Match) ([]model.PlayerGame, error) {
	var starters, changes []Entry
	for _, e := range m.Entries {
		if e.Kind == Starter {
			starters = append(starters, e)
		} else {
			changes = append(changes, e)
		}
	}
	if len(starters) == 0 {
		return nil, errors.Wrapf(ErrIncompleteLineupData, "game %s: no starting lineup", m.GameID)
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].Minute < changes[j].Minute })

	var windows []*window
	byPlayer := map[string]*window{}
	teams := map[string]struct{}{}

	enter := func(e Entry, minute int) error {
		if prev, ok := byPlayer[e.PlayerID]; ok {
			return errors.Wrapf(ErrIncompleteLineupData,
				"game %s: player %s listed twice (team %s, then %s)", m.GameID, e.PlayerID, prev.pg.TeamID, e.TeamID)
		}
		w := &window{
			pg: model.PlayerGame{
				GameID:     m.GameID,
				PlayerID:   e.PlayerID,
				PlayerName: e.PlayerName,
				TeamID:     e.TeamID,
				TeamName:   e.TeamName,
				MinuteIn:   minute,
			},
			out: m.FinalMinute,
		}
		windows = append(windows, w)
		byPlayer[e.PlayerID] = w
		return nil
	}

	for _, e := range starters {
		if err := enter(e, 0); err != nil {
			return nil, err
		}
		teams[e.TeamID] = struct{}{}
	}

	for _, e := range changes {
		w, known := byPlayer[e.PlayerID]
		switch e.Kind {
		case SubOn:
			if _, ok := teams[e.TeamID]; !ok {
				return nil, errors.Wrapf(ErrIncompleteLineupData,
					"game %s: substitute %s joins team %s which has no lineup", m.GameID, e.PlayerID, e.TeamID)
			}
			if err := enter(e, e.Minute); err != nil {
				return nil, err
			}
		case SubOff, SendOff:
			if !known {
				if e.Kind == SendOff {
					continue // dismissed from the bench
				}
				return nil, errors.Wrapf(ErrIncompleteLineupData,
					"game %s: player %s substituted off without entering", m.GameID, e.PlayerID)
			}
			if w.pg.TeamID != e.TeamID {
				return nil, errors.Wrapf(ErrIncompleteLineupData,
					"game %s: %s of player %s for team %s, who plays for %s", m.GameID, e.Kind, e.PlayerID, e.TeamID, w.pg.TeamID)
			}
			if e.Minute < w.out {
				w.out = e.Minute
			}
		default:
			return nil, errors.Wrapf(ErrIncompleteLineupData, "game %s: unknown roster entry %d", m.GameID, e.Kind)
		}
	}

	out := make([]model.PlayerGame, len(windows))
	for i, w := range windows {
		pg := w.pg
		pg.MinuteOut = w.out
		if pg.MinuteOut < pg.MinuteIn {
			pg.MinuteOut = pg.MinuteIn
		}
		pg.MinutesPlayed = pg.MinuteOut - pg.MinuteIn
		out[i] = pg
	}
	return out, nil
}

// Total sums MinutesPlayed over records.
func Total(records []model.PlayerGame) int {
	total := 0
	for _, r := range records {
		total += r.MinutesPlayed
	}
	return total
}
