package statsbomb

import (
	"github.com/okian/spadl/internal/domain/minutes"
	"github.com/okian/spadl/internal/domain/model"
)

// Roster maps lineups, substitutions and dismissals to roster entries.
func Roster(gameID string, events []Event) minutes.Match {
	m := minutes.Match{GameID: gameID, FinalMinute: FinalMinute(events)}
	for i := range events {
		e := &events[i]
		switch e.Type.Name {
		case TypeStartingXI:
			if e.Tactics == nil {
				continue
			}
			for _, p := range e.Tactics.Lineup {
				m.Entries = append(m.Entries, minutes.Entry{
					Kind:       minutes.Starter,
					TeamID:     e.Team.Key(),
					TeamName:   e.Team.Name,
					PlayerID:   p.Player.Key(),
					PlayerName: p.Player.Name,
				})
			}
		case TypeSubstitution:
			if e.Substitution == nil {
				continue
			}
			m.Entries = append(m.Entries,
				minutes.Entry{
					Kind:       minutes.SubOff,
					Minute:     e.Minute,
					TeamID:     e.Team.Key(),
					TeamName:   e.Team.Name,
					PlayerID:   e.Player.Key(),
					PlayerName: e.Player.NameOf(),
				},
				minutes.Entry{
					Kind:       minutes.SubOn,
					Minute:     e.Minute,
					TeamID:     e.Team.Key(),
					TeamName:   e.Team.Name,
					PlayerID:   e.Substitution.Replacement.Key(),
					PlayerName: e.Substitution.Replacement.Name,
				})
		case TypeFoulCommitted, TypeBadBehaviour:
			if !sentOff(e) {
				continue
			}
			m.Entries = append(m.Entries, minutes.Entry{
				Kind:     minutes.SendOff,
				Minute:   e.Minute,
				TeamID:   e.Team.Key(),
				TeamName: e.Team.Name,
				PlayerID: e.Player.Key(),
			})
		}
	}
	return m
}

// FinalMinute is the latest minute a period ended, or the latest event
// minute when the stream has no Half End events.
func FinalMinute(events []Event) int {
	final, latest := -1, 0
	for i := range events {
		e := &events[i]
		if e.Minute > latest {
			latest = e.Minute
		}
		if e.Type.Name == TypeHalfEnd && e.Minute > final {
			final = e.Minute
		}
	}
	if final < 0 {
		return latest
	}
	return final
}

func sentOff(e *Event) bool {
	var card *Ref
	switch {
	case e.FoulCommitted != nil:
		card = e.FoulCommitted.Card
	case e.BadBehaviour != nil:
		card = e.BadBehaviour.Card
	}
	switch card.NameOf() {
	case "Red Card", "Second Yellow":
		return true
	}
	return false
}

// Minutes extracts the playing windows of one game.
func (c *Converter) Minutes(gameID string, events []Event) ([]model.PlayerGame, error) {
	return minutes.Extract(Roster(gameID, events))
}
