package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/spadl/internal/adapters/repository"
	service "github.com/okian/spadl/internal/app"
	"github.com/okian/spadl/internal/domain/minutes"
	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/schema"
	"github.com/okian/spadl/internal/testevents"
	"github.com/okian/spadl/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func job(t *testing.T, gameID string, seed uint64) (model.Job, *testevents.Match) {
	t.Helper()
	m := testevents.GenerateMatch(gameID, seed)
	payload, err := m.Payload()
	if err != nil {
		t.Fatal(err)
	}
	return model.Job{
		Game:    model.Game{GameID: gameID, HomeTeamID: m.HomeTeamID},
		Payload: payload,
	}, m
}

// waitFor polls until the game is no longer pending.
func waitFor(svc *service.Service, gameID string) repository.Result {
	deadline := time.Now().Add(5 * time.Second)
	for {
		r, err := svc.Result(context.Background(), gameID)
		if err == nil && r.Status != repository.StatusPending {
			return r
		}
		if time.Now().After(deadline) {
			return r
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestService_ConvertGame(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx := context.Background()

		Convey("When converting a generated game synchronously", func() {
			j, m := job(t, "7584", 3)
			r, err := svc.ConvertGame(ctx, j)

			Convey("Then actions and minutes are produced", func() {
				So(err, ShouldBeNil)
				So(r.Status, ShouldEqual, repository.StatusDone)
				So(r.Provider, ShouldEqual, service.ProviderStatsBomb)
				So(r.JobID, ShouldNotBeEmpty)
				So(len(r.Actions), ShouldBeGreaterThan, 0)
				So(r.PlayerGames, ShouldHaveLength, m.Appearances())
				So(minutes.Total(r.PlayerGames), ShouldEqual, m.ExpectedMinutes())
				So(r.CompletedAt.Before(r.SubmittedAt), ShouldBeFalse)
			})

			Convey("Then the game is not stored", func() {
				_, err := svc.Result(ctx, "7584")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the payload is not an event document", func() {
			r, err := svc.ConvertGame(ctx, model.Job{Game: model.Game{GameID: "1"}, Payload: []byte(`{"nope":1}`)})

			Convey("Then the result is failed with the decode error", func() {
				So(err, ShouldNotBeNil)
				So(r.Status, ShouldEqual, repository.StatusFailed)
				So(r.ConvertError, ShouldNotBeEmpty)
			})
		})

		Convey("When an event carries an impossible clock", func() {
			payload := []byte(`[{"id":"e1","period":7,"minute":1,"second":0,
				"type":{"id":30,"name":"Pass"},"team":{"id":1,"name":"A"},"player":{"id":2,"name":"P"},
				"location":[10,10],"pass":{"end_location":[20,20]}}]`)
			r, err := svc.ConvertGame(ctx, model.Job{Game: model.Game{GameID: "2"}, Payload: payload})

			Convey("Then the whole game fails and lineup problems are reported separately", func() {
				So(err, ShouldNotBeNil)
				So(r.Status, ShouldEqual, repository.StatusFailed)
				So(r.Actions, ShouldBeEmpty)
				So(r.MinutesError, ShouldNotBeEmpty)
			})
		})

		Convey("When the job is malformed", func() {
			_, errEmpty := svc.ConvertGame(ctx, model.Job{})
			_, errProvider := svc.ConvertGame(ctx, model.Job{Game: model.Game{GameID: "3"}, Provider: "opta"})

			Convey("Then it is rejected before conversion", func() {
				So(errors.Is(errEmpty, service.ErrEmptyGameID), ShouldBeTrue)
				So(errors.Is(errProvider, service.ErrUnsupportedProvider), ShouldBeTrue)
			})
		})
	})
}

func TestService_ConvertAll(t *testing.T) {
	Convey("Given a batch of games", t, func() {
		svc := service.New(service.WithWorkerCount(3))
		var jobs []model.Job
		for i, id := range []string{"a", "b", "c", "d", "e"} {
			j, _ := job(t, id, uint64(i+10))
			jobs = append(jobs, j)
		}
		jobs = append(jobs, model.Job{Game: model.Game{GameID: "bad"}, Payload: []byte("not json")})

		Convey("When converting them in parallel", func() {
			results, err := svc.ConvertAll(context.Background(), jobs)

			Convey("Then results come back in input order", func() {
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, len(jobs))
				for i, r := range results {
					So(r.GameID, ShouldEqual, jobs[i].Game.GameID)
				}
				So(results[0].Status, ShouldEqual, repository.StatusDone)
				So(results[5].Status, ShouldEqual, repository.StatusFailed)
			})
		})

		Convey("When the batch is empty", func() {
			results, err := svc.ConvertAll(context.Background(), nil)

			Convey("Then nothing is returned", func() {
				So(err, ShouldBeNil)
				So(results, ShouldBeEmpty)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			results, err := svc.ConvertAll(ctx, jobs[:2])

			Convey("Then every game fails with the context error", func() {
				So(err, ShouldBeNil)
				for _, r := range results {
					So(r.Status, ShouldEqual, repository.StatusFailed)
				}
			})
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a service that is not started", t, func() {
		svc := service.New()
		j, _ := job(t, "7584", 1)
		_, err := svc.Submit(context.Background(), j)

		Convey("Then submissions are refused", func() {
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(8))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When a game is submitted", func() {
			j, m := job(t, "7584", 1)
			queued, err := svc.Submit(ctx, j)
			So(err, ShouldBeNil)
			So(queued.ID, ShouldNotBeEmpty)

			Convey("Then the worker stores its result", func() {
				r := waitFor(svc, "7584")
				So(r.Status, ShouldEqual, repository.StatusDone)
				So(r.JobID, ShouldEqual, queued.ID)
				So(minutes.Total(r.PlayerGames), ShouldEqual, m.ExpectedMinutes())
				So(svc.Games(ctx), ShouldResemble, []string{"7584"})
			})

			Convey("Then a second submission is a duplicate", func() {
				_, err := svc.Submit(ctx, j)
				So(errors.Is(err, service.ErrDuplicate), ShouldBeTrue)
			})

			Convey("Then discarding allows resubmission", func() {
				waitFor(svc, "7584")
				So(svc.Discard(ctx, "7584"), ShouldBeNil)
				_, err := svc.Submit(ctx, j)
				So(err, ShouldBeNil)
			})
		})

		Convey("When discarding an unknown game", func() {
			err := svc.Discard(ctx, "missing")

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("Then stats describe the running service", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 8)
			So(stats, ShouldContainKey, "queueLength")
		})
	})

	Convey("Given a service that keeps a single result", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1), service.WithMaxGames(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		first, _ := job(t, "g1", 1)
		second, _ := job(t, "g2", 2)
		_, err := svc.Submit(ctx, first)
		So(err, ShouldBeNil)
		So(waitFor(svc, "g1").Status, ShouldEqual, repository.StatusDone)
		_, err = svc.Submit(ctx, second)
		So(err, ShouldBeNil)
		So(waitFor(svc, "g2").Status, ShouldEqual, repository.StatusDone)

		Convey("When the older result has been evicted", func() {
			_, err := svc.Result(ctx, "g1")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			Convey("Then the evicted game can be submitted again", func() {
				_, err := svc.Submit(ctx, first)
				So(err, ShouldBeNil)
				So(waitFor(svc, "g1").Status, ShouldEqual, repository.StatusDone)
			})
		})
	})

	Convey("Given a game remembered without a stored result", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(1), service.WithMaxGames(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		j, _ := job(t, "g3", 3)
		_, err := svc.Submit(ctx, j)
		So(err, ShouldBeNil)
		waitFor(svc, "g3")

		Convey("When it is discarded twice", func() {
			So(svc.Discard(ctx, "g3"), ShouldBeNil)
			err := svc.Discard(ctx, "g3")

			Convey("Then the second discard reports not found and resubmission still works", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err := svc.Submit(ctx, j)
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given a stopped service", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Stop(ctx), ShouldBeNil)

		Convey("Then it reports as stopped and can stop again", func() {
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

func TestService_Validate(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()

		Convey("When validating converted actions", func() {
			j, _ := job(t, "7584", 5)
			r, err := svc.ConvertGame(context.Background(), j)
			So(err, ShouldBeNil)
			rows := schema.ActionRows(r.Actions)
			out, err := svc.Validate(rows)

			Convey("Then they pass unchanged", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, len(rows))
			})

			Convey("And when a coordinate is pushed off the pitch", func() {
				rows[0][schema.ColStartX] = 500.0
				_, err := svc.Validate(rows)

				Convey("Then the violation names the column", func() {
					var v *schema.Violation
					So(errors.As(err, &v), ShouldBeTrue)
					So(v.Has(schema.ColStartX, schema.CheckBounds), ShouldBeTrue)
				})
			})
		})
	})
}
