package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/spadl/internal/domain/model"
	"github.com/okian/spadl/internal/domain/schema"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()

		Convey("When a result is stored", func() {
			err := s.Put(ctx, Result{
				GameID: "7584", Status: StatusDone,
				Actions: []model.Action{{GameID: "7584", ActionID: 0}},
			})
			So(err, ShouldBeNil)

			Convey("Then it can be read back", func() {
				r, err := s.Get(ctx, "7584")
				So(err, ShouldBeNil)
				So(r.Status, ShouldEqual, StatusDone)
				So(r.Actions, ShouldHaveLength, 1)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then storing the same game again replaces it", func() {
				So(s.Put(ctx, Result{GameID: "7584", Status: StatusFailed, ConvertError: "boom"}), ShouldBeNil)
				r, err := s.Get(ctx, "7584")
				So(err, ShouldBeNil)
				So(r.Failed(), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then deleting it makes it unknown", func() {
				s.Delete(ctx, "7584")
				s.Delete(ctx, "7584")
				_, err := s.Get(ctx, "7584")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a result has no game id", func() {
			So(errors.Is(s.Put(ctx, Result{}), ErrInvalidResult), ShouldBeTrue)
		})

		Convey("When listing", func() {
			for _, id := range []string{"3", "1", "2"} {
				So(s.Put(ctx, Result{GameID: id}), ShouldBeNil)
			}
			So(s.List(ctx), ShouldResemble, []string{"1", "2", "3"})
		})
	})

	Convey("Given a bounded store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore(WithMaxGames(2))
		So(s.Put(ctx, Result{GameID: "a"}), ShouldBeNil)
		So(s.Put(ctx, Result{GameID: "b"}), ShouldBeNil)
		So(s.Put(ctx, Result{GameID: "a"}), ShouldBeNil)
		So(s.Put(ctx, Result{GameID: "c"}), ShouldBeNil)

		Convey("Then the least recently stored game is evicted", func() {
			So(s.List(ctx), ShouldResemble, []string{"a", "c"})
		})
	})

	Convey("Given a bounded store with an eviction callback", t, func() {
		ctx := context.Background()
		var evicted []string
		s := NewMemoryStore(WithMaxGames(1), WithOnEvict(func(_ context.Context, gameID string) {
			evicted = append(evicted, gameID)
		}))
		So(s.Put(ctx, Result{GameID: "a"}), ShouldBeNil)
		So(s.Put(ctx, Result{GameID: "a"}), ShouldBeNil)
		So(s.Put(ctx, Result{GameID: "b"}), ShouldBeNil)
		s.Delete(ctx, "b")

		Convey("Then only evictions are reported", func() {
			So(evicted, ShouldResemble, []string{"a"})
		})
	})

	Convey("Given a result that failed validation", t, func() {
		r := Result{GameID: "x", Violations: []schema.Failure{{Column: "start_x", Check: schema.CheckBounds}}}
		So(r.Failed(), ShouldBeTrue)
	})
}

func TestMemoryStoreConcurrent(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					id := fmt.Sprintf("%d-%d", i, j)
					_ = s.Put(ctx, Result{GameID: id})
					_, _ = s.Get(ctx, id)
					_ = s.List(ctx)
				}
			}(i)
		}
		wg.Wait()
		So(s.Count(ctx), ShouldEqual, 400)
	})
}
