package testevents

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/okian/spadl/internal/adapters/provider/statsbomb"
)

// Match shape constants.
const (
	playersPerSide = 11
	subsPerSide    = 3
	halfMinutes    = 45
	maxStoppage    = 4
	ownGoalMinute  = 30
	minStepSeconds = 4
	maxStepSeconds = 14
	gridLength     = 120.0
	gridWidth      = 80.0
)

var eventNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8") // RFC 4122 URL namespace

// Match is a synthetic StatsBomb match.
type Match struct {
	GameID      string
	HomeTeamID  string
	AwayTeamID  string
	FinalMinute int
	Events      []statsbomb.Event
}

// Appearances returns the number of players who took part.
func (m *Match) Appearances() int {
	return 2 * (playersPerSide + subsPerSide)
}

// ExpectedMinutes is the sum of minutes played over every player: eleven
// players per side are on the pitch for the whole match.
func (m *Match) ExpectedMinutes() int {
	return 2 * playersPerSide * m.FinalMinute
}

// Payload encodes the events the way the StatsBomb open-data files do.
func (m *Match) Payload() ([]byte, error) {
	data, err := sonic.Marshal(m.Events)
	if err != nil {
		return nil, errors.Wrapf(err, "encode match %s", m.GameID)
	}
	return data, nil
}

type side struct {
	team    statsbomb.Ref
	onPitch []statsbomb.Ref
	bench   []statsbomb.Ref
}

type generator struct {
	rng    *rand.Rand
	gameID string
	events []statsbomb.Event
	sides  [2]*side
}

// GenerateMatch builds a deterministic 11 vs 11 match for gameID: lineups,
// open play, a yellow card, an own goal, three substitutions per side and
// stoppage time in both halves. The same seed always yields the same match.
func GenerateMatch(gameID string, seed uint64) *Match {
	g := &generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // synthetic data
		gameID: gameID,
	}
	homeID := int64(100 + 2*(seed%400))
	g.sides[0] = newSide(homeID, "Home "+strconv.FormatInt(homeID, 10))
	g.sides[1] = newSide(homeID+1, "Away "+strconv.FormatInt(homeID+1, 10))

	for _, s := range g.sides {
		lineup := make([]statsbomb.LineupPlayer, len(s.onPitch))
		for i, p := range s.onPitch {
			lineup[i] = statsbomb.LineupPlayer{Player: p, JerseyNumber: i + 1}
		}
		g.add(statsbomb.Event{
			Period: 1, Type: ref(35, statsbomb.TypeStartingXI), Team: s.team,
			Tactics: &statsbomb.Tactics{Formation: 433, Lineup: lineup},
		})
	}

	firstEnd := halfMinutes + g.rng.IntN(maxStoppage)
	g.play(1, 0, firstEnd, nil)
	g.halfEnd(1, firstEnd)

	subMinutes := []int{60, 70, 80}
	finalMinute := 2*halfMinutes + g.rng.IntN(maxStoppage)
	g.play(2, halfMinutes, finalMinute, subMinutes)
	g.halfEnd(2, finalMinute)

	return &Match{
		GameID:      gameID,
		HomeTeamID:  g.sides[0].team.Key(),
		AwayTeamID:  g.sides[1].team.Key(),
		FinalMinute: finalMinute,
		Events:      g.events,
	}
}

func newSide(teamID int64, name string) *side {
	s := &side{team: statsbomb.Ref{ID: teamID, Name: name}}
	for i := 1; i <= playersPerSide+subsPerSide; i++ {
		p := statsbomb.Ref{ID: teamID*100 + int64(i), Name: fmt.Sprintf("%s #%d", name, i)}
		if i <= playersPerSide {
			s.onPitch = append(s.onPitch, p)
		} else {
			s.bench = append(s.bench, p)
		}
	}
	return s
}

func ref(id int64, name string) statsbomb.Ref { return statsbomb.Ref{ID: id, Name: name} }

func refPtr(id int64, name string) *statsbomb.Ref {
	r := ref(id, name)
	return &r
}

func (g *generator) add(e statsbomb.Event) {
	e.Index = len(g.events) + 1
	e.ID = uuid.NewSHA1(eventNamespace, []byte(g.gameID+"/"+strconv.Itoa(e.Index))).String()
	e.Timestamp = fmt.Sprintf("00:%02d:%02d.000", e.Minute%60, e.Second)
	g.events = append(g.events, e)
}

func (g *generator) halfEnd(period, minute int) {
	for _, s := range g.sides {
		g.add(statsbomb.Event{Period: period, Minute: minute, Type: ref(34, statsbomb.TypeHalfEnd), Team: s.team})
	}
}

func (g *generator) point() statsbomb.Point {
	return statsbomb.Point{1 + float64(g.rng.IntN(int(gridLength))), 1 + float64(g.rng.IntN(int(gridWidth)))}
}

func (g *generator) player(s *side) *statsbomb.Ref {
	p := s.onPitch[g.rng.IntN(len(s.onPitch))]
	return &p
}

// play fills one period from startMinute until endMinute. Substitutions
// happen at the given minutes, one per side each time.
func (g *generator) play(period, startMinute, endMinute int, subMinutes []int) {
	clock := startMinute * 60
	owner := g.rng.IntN(2)
	nextSub := 0
	ownGoal := period == 1

	for clock/60 < endMinute {
		minute, second := clock/60, clock%60
		if nextSub < len(subMinutes) && minute >= subMinutes[nextSub] {
			g.substitute(period, minute, second, nextSub)
			nextSub++
		}
		if ownGoal && minute >= ownGoalMinute {
			g.ownGoal(minute, second)
			ownGoal = false
		}

		s := g.sides[owner]
		e := statsbomb.Event{
			Period: period, Minute: minute, Second: second,
			Team: s.team, Player: g.player(s), Location: g.point(),
		}
		switch roll := g.rng.IntN(100); {
		case roll < 60:
			e.Type = ref(30, statsbomb.TypePass)
			e.Pass = &statsbomb.Pass{EndLocation: g.point(), BodyPart: refPtr(40, "Right Foot")}
			if roll < 12 {
				e.Pass.Outcome = refPtr(9, "Incomplete")
				owner = 1 - owner
			}
		case roll < 80:
			e.Type = ref(43, statsbomb.TypeCarry)
			e.Carry = &statsbomb.Carry{EndLocation: g.point()}
		case roll < 85:
			e.Type = ref(16, statsbomb.TypeShot)
			e.Shot = &statsbomb.Shot{EndLocation: statsbomb.Point{gridLength, gridWidth / 2, 1}, BodyPart: refPtr(38, "Left Foot")}
			if roll == 80 {
				e.Shot.Outcome = refPtr(97, "Goal")
			} else {
				e.Shot.Outcome = refPtr(100, "Saved")
			}
			owner = 1 - owner
		case roll < 90:
			e.Type = ref(10, statsbomb.TypeInterception)
			e.Interception = &statsbomb.Outcome{Outcome: refPtr(4, "Won")}
		case roll < 94:
			e.Type = ref(9, statsbomb.TypeClearance)
			e.Clearance = &statsbomb.Clearance{BodyPart: refPtr(37, "Head")}
			owner = 1 - owner
		case roll < 97:
			e.Type = ref(22, statsbomb.TypeFoulCommitted)
			e.FoulCommitted = &statsbomb.Card{}
			if roll == 96 {
				e.FoulCommitted.Card = refPtr(7, "Yellow Card")
			}
			owner = 1 - owner
		default:
			e.Type = ref(38, statsbomb.TypeMiscontrol)
			owner = 1 - owner
		}
		g.add(e)
		clock += minStepSeconds + g.rng.IntN(maxStepSeconds-minStepSeconds+1)
	}
}

func (g *generator) substitute(period, minute, second, n int) {
	for _, s := range g.sides {
		i := g.rng.IntN(len(s.onPitch))
		off := s.onPitch[i]
		on := s.bench[n]
		s.onPitch[i] = on
		g.add(statsbomb.Event{
			Period: period, Minute: minute, Second: second,
			Type: ref(19, statsbomb.TypeSubstitution), Team: s.team, Player: &off,
			Substitution: &statsbomb.Substitution{Replacement: on, Outcome: refPtr(103, "Tactical")},
		})
	}
}

// ownGoal adds the pair StatsBomb records for an own goal: the scoring side
// gets Own Goal For, the conceding player Own Goal Against.
func (g *generator) ownGoal(minute, second int) {
	home, away := g.sides[0], g.sides[1]
	g.add(statsbomb.Event{
		Period: 1, Minute: minute, Second: second,
		Type: ref(25, statsbomb.TypeOwnGoalFor), Team: home.team, Player: g.player(home),
	})
	g.add(statsbomb.Event{
		Period: 1, Minute: minute, Second: second,
		Type: ref(20, statsbomb.TypeOwnGoalAgainst), Team: away.team, Player: g.player(away),
		Location: statsbomb.Point{3, 38},
	})
}
