package convert_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/spadl/internal/domain/convert"
	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/normalize"
	"github.com/okian/spadl/internal/domain/registry"
	"github.com/okian/spadl/internal/domain/schema"
)

var (
	game = model.Game{GameID: "7584", HomeTeamID: "782"}

	// power-of-two pitch so grid scaling is exact; y is still flipped
	pitch  = normalize.Pitch{Length: 128, Width: 64}
	metres = convert.Source{Name: "metres", Grid: normalize.Grid{Width: 128, Height: 64}}
)

func pass(id string, period, minute, second int, team string, start, end *convert.Location) convert.Draft {
	return convert.Draft{
		EventID: id, Period: period, Minute: minute, Second: second,
		TeamID: team, PlayerID: "p-" + team, Type: registry.Pass, Start: start, End: end,
	}
}

func TestConvert(t *testing.T) {
	Convey("Given an engine without dribble insertion", t, func() {
		reg := registry.Default()
		engine := convert.New(reg, pitch, convert.WithDribbles(false))
		sb := convert.New(reg, normalize.DefaultPitch(), convert.WithDribbles(false))

		Convey("When converting a StatsBomb pass", func() {
			src := convert.Source{Name: "statsbomb", Grid: normalize.StatsBombGrid, TeamRelative: true}
			drafts := []convert.Draft{{
				EventID: "a1b55211-a292-4294-887b-5385cc3c5705", Period: 1, TeamID: "782", PlayerID: "3289",
				Type: registry.Pass, Start: convert.Loc(61, 40), End: convert.Loc(49, 43),
			}}
			actions, err := sb.Convert(game, src, drafts)

			Convey("Then coordinates and defaults follow the canonical rules", func() {
				So(err, ShouldBeNil)
				So(actions, ShouldHaveLength, 1)
				a := actions[0]
				So(a.StartX, ShouldEqual, ((61.0-1)/119)*105)
				So(a.StartY, ShouldEqual, 68-((40.0-1)/79)*68)
				So(a.EndX, ShouldEqual, ((49.0-1)/119)*105)
				So(a.EndY, ShouldEqual, 68-((43.0-1)/79)*68)
				So(a.TypeID, ShouldEqual, reg.ActionTypes.MustIndex(registry.Pass))
				So(a.ResultID, ShouldEqual, reg.Results.MustIndex(registry.Success))
				So(a.BodyPartID, ShouldEqual, reg.BodyParts.MustIndex(registry.Foot))
				So(a.TypeName, ShouldEqual, registry.Pass)
				So(*a.OriginalEventID, ShouldEqual, "a1b55211-a292-4294-887b-5385cc3c5705")
				So(a.GameID, ShouldEqual, "7584")
			})
		})

		Convey("When locations are missing", func() {
			drafts := []convert.Draft{{EventID: "e1", Period: 1, TeamID: "782", PlayerID: "1", Type: registry.Interception}}
			actions, err := sb.Convert(game, convert.Source{Grid: normalize.StatsBombGrid}, drafts)

			Convey("Then the start falls back to the grid origin and the end to the start", func() {
				So(err, ShouldBeNil)
				So(actions[0].StartX, ShouldEqual, 0)
				So(actions[0].StartY, ShouldEqual, 68)
				So(actions[0].EndX, ShouldEqual, actions[0].StartX)
				So(actions[0].EndY, ShouldEqual, actions[0].StartY)
			})
		})

		Convey("When drafts arrive out of order", func() {
			drafts := []convert.Draft{
				pass("c", 2, 46, 0, "782", convert.Loc(10, 10), nil),
				pass("b", 1, 10, 0, "782", convert.Loc(10, 10), nil),
				{EventID: "skip", Period: 1, Minute: 5, TeamID: "782", Type: registry.NonAction},
				pass("a", 1, 10, 0, "782", convert.Loc(20, 20), nil),
				pass("z", 1, 1, 0, "782", convert.Loc(10, 10), nil),
			}
			actions, err := engine.Convert(game, metres, drafts)

			Convey("Then they are sorted by period and time, ties kept in input order", func() {
				So(err, ShouldBeNil)
				var got []string
				for i, a := range actions {
					So(a.ActionID, ShouldEqual, i)
					got = append(got, *a.OriginalEventID)
				}
				So(got, ShouldResemble, []string{"z", "b", "a", "c"})
				So(actions[3].TimeSeconds, ShouldEqual, 60)
			})
		})

		Convey("When the away team is recorded team-relative", func() {
			src := metres
			src.TeamRelative = true
			drafts := []convert.Draft{
				pass("h", 1, 0, 1, "782", convert.Loc(10, 20), convert.Loc(30, 40)),
				pass("a", 1, 0, 2, "778", convert.Loc(10, 20), convert.Loc(30, 40)),
			}
			actions, err := engine.Convert(game, src, drafts)

			Convey("Then only away actions are mirrored", func() {
				So(err, ShouldBeNil)
				So(actions[0].StartX, ShouldEqual, 10)
				So(actions[0].StartY, ShouldEqual, 44)
				So(actions[1].StartX, ShouldEqual, 118)
				So(actions[1].StartY, ShouldEqual, 20)
				So(actions[1].EndX, ShouldEqual, 98)
				So(actions[1].EndY, ShouldEqual, 40)
			})

			Convey("Then nothing is mirrored without a home team", func() {
				actions, err := engine.Convert(model.Game{GameID: "x"}, src, drafts)
				So(err, ShouldBeNil)
				So(actions[1].StartX, ShouldEqual, 10)
			})
		})

		Convey("When a clearance is followed by another action", func() {
			drafts := []convert.Draft{
				{EventID: "c1", Period: 1, Second: 1, TeamID: "782", PlayerID: "1", Type: registry.Clearance,
					BodyPart: registry.Head, Start: convert.Loc(10, 10)},
				pass("p1", 1, 0, 5, "778", convert.Loc(50, 30), convert.Loc(60, 30)),
				{EventID: "c2", Period: 1, Second: 9, TeamID: "782", PlayerID: "1", Type: registry.Clearance,
					Start: convert.Loc(5, 5), End: convert.Loc(7, 7)},
			}
			actions, err := engine.Convert(game, metres, drafts)

			Convey("Then it ends where the next action starts", func() {
				So(err, ShouldBeNil)
				So(actions[0].EndX, ShouldEqual, actions[1].StartX)
				So(actions[0].EndY, ShouldEqual, actions[1].StartY)
				So(actions[0].BodyPartName, ShouldEqual, registry.Head)
			})

			Convey("Then the last clearance keeps its own end", func() {
				So(actions[2].EndX, ShouldEqual, 7)
				So(actions[2].EndY, ShouldEqual, 57)
			})
		})

		Convey("When a timestamp cannot be normalized", func() {
			drafts := []convert.Draft{
				pass("ok", 1, 0, 1, "782", nil, nil),
				pass("bad", 2, 10, 0, "782", nil, nil),
			}
			_, err := engine.Convert(game, metres, drafts)

			Convey("Then the game fails naming the event", func() {
				So(errors.Is(err, normalize.ErrInvalidTimestamp), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "bad")
			})
		})

		Convey("When a draft names an unregistered type", func() {
			drafts := []convert.Draft{{EventID: "x", Period: 1, TeamID: "782", Type: "backheel"}}
			_, err := engine.Convert(game, metres, drafts)
			So(errors.Is(err, registry.ErrUnknownEnumValue), ShouldBeTrue)
		})

		Convey("When the source grid is empty", func() {
			_, err := engine.Convert(game, convert.Source{Name: "broken"}, nil)
			So(errors.Is(err, convert.ErrInvalidSource), ShouldBeTrue)
		})

		Convey("When no drafts are given", func() {
			actions, err := engine.Convert(game, metres, nil)
			So(err, ShouldBeNil)
			So(actions, ShouldBeEmpty)
		})
	})
}

func TestDefaultBodyPart(t *testing.T) {
	Convey("Given drafts without a body part", t, func() {
		drafts := []convert.Draft{pass("p", 1, 0, 0, "782", nil, nil)}

		Convey("Then the engine default applies", func() {
			e := convert.New(registry.Default(), pitch, convert.WithDefaultBodyPart(registry.Other))
			actions, err := e.Convert(game, metres, drafts)
			So(err, ShouldBeNil)
			So(actions[0].BodyPartName, ShouldEqual, registry.Other)
		})

		Convey("Then a source default wins over the engine default", func() {
			e := convert.New(registry.Default(), pitch, convert.WithDefaultBodyPart(registry.Other))
			src := metres
			src.DefaultBodyPart = registry.HeadOther
			actions, err := e.Convert(game, src, drafts)
			So(err, ShouldBeNil)
			So(actions[0].BodyPartName, ShouldEqual, registry.HeadOther)
		})
	})
}

func TestDribbles(t *testing.T) {
	Convey("Given an engine with dribble insertion", t, func() {
		reg := registry.Default()
		engine := convert.New(reg, pitch)
		s := schema.New(reg, pitch)

		Convey("When the same team moves the ball between two actions", func() {
			drafts := []convert.Draft{
				pass("a", 1, 0, 2, "782", convert.Loc(10, 10), convert.Loc(20, 10)),
				pass("b", 1, 0, 6, "782", convert.Loc(30, 10), convert.Loc(40, 10)),
			}
			actions, err := engine.Convert(game, metres, drafts)

			Convey("Then a synthetic dribble bridges the gap", func() {
				So(err, ShouldBeNil)
				So(actions, ShouldHaveLength, 3)
				d := actions[1]
				So(d.ActionID, ShouldEqual, 1)
				So(actions[2].ActionID, ShouldEqual, 2)
				So(d.TypeID, ShouldEqual, reg.ActionTypes.MustIndex(registry.Dribble))
				So(d.ResultName, ShouldEqual, registry.Success)
				So(d.BodyPartName, ShouldEqual, registry.Foot)
				So(d.OriginalEventID, ShouldBeNil)
				So(d.TimeSeconds, ShouldEqual, 4)
				So(d.StartX, ShouldEqual, 20)
				So(d.EndX, ShouldEqual, 30)
				So(d.PlayerID, ShouldEqual, "p-782")
			})

			Convey("Then the result satisfies the schema", func() {
				_, err := s.ValidateActions(actions)
				So(err, ShouldBeNil)
			})
		})

		Convey("When the gap falls outside the bounds", func() {
			cases := []struct {
				name  string
				first convert.Draft
				next  convert.Draft
			}{
				{"too short", pass("a", 1, 0, 0, "782", convert.Loc(10, 10), convert.Loc(20, 10)),
					pass("b", 1, 0, 1, "782", convert.Loc(22, 10), nil)},
				{"too far", pass("a", 1, 0, 0, "782", convert.Loc(0, 10), convert.Loc(0, 10)),
					pass("b", 1, 0, 1, "782", convert.Loc(61, 10), nil)},
				{"too slow", pass("a", 1, 0, 0, "782", convert.Loc(10, 10), convert.Loc(20, 10)),
					pass("b", 1, 0, 10, "782", convert.Loc(30, 10), nil)},
				{"other team", pass("a", 1, 0, 0, "782", convert.Loc(10, 10), convert.Loc(20, 10)),
					pass("b", 1, 0, 1, "778", convert.Loc(30, 10), nil)},
				{"other period", pass("a", 1, 45, 0, "782", convert.Loc(10, 10), convert.Loc(20, 10)),
					pass("b", 2, 45, 1, "782", convert.Loc(30, 10), nil)},
			}
			for _, tc := range cases {
				actions, err := engine.Convert(game, metres, []convert.Draft{tc.first, tc.next})
				So(err, ShouldBeNil)
				So(len(actions), ShouldEqual, 2)
			}
		})

		Convey("When the gap sits exactly on the bounds", func() {
			drafts := []convert.Draft{
				pass("a", 1, 0, 0, "782", convert.Loc(10, 10), convert.Loc(20, 10)),
				pass("b", 1, 0, 1, "782", convert.Loc(23, 10), convert.Loc(23, 10)),
				pass("c", 1, 0, 2, "782", convert.Loc(83, 10), nil),
			}
			actions, err := engine.Convert(game, metres, drafts)

			Convey("Then both inclusive bounds insert a dribble", func() {
				So(err, ShouldBeNil)
				So(actions, ShouldHaveLength, 5)
				So(math.Abs(actions[3].EndX-actions[3].StartX), ShouldEqual, 60)
			})
		})

		Convey("When converting twice", func() {
			drafts := []convert.Draft{
				pass("a", 1, 0, 2, "782", convert.Loc(10, 10), convert.Loc(20, 10)),
				pass("b", 1, 0, 6, "782", convert.Loc(30, 10), convert.Loc(40, 10)),
			}
			first, err1 := engine.Convert(game, metres, drafts)
			second, err2 := engine.Convert(game, metres, drafts)

			Convey("Then the output is identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})
	})
}
