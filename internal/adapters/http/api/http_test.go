package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/spadl/internal/adapters/http/api"
	service "github.com/okian/spadl/internal/app"
	"github.com/okian/spadl/internal/domain/schema"
	"github.com/okian/spadl/internal/domain/types"
	"github.com/okian/spadl/internal/testevents"
	"github.com/okian/spadl/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newServer(opts ...api.Option) (http.Handler, *service.Service) {
	svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(4))
	return api.NewServer(svc, svc, opts...).Router(), svc
}

func do(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(sonic.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func payload(gameID string, seed uint64) ([]byte, *testevents.Match) {
	m := testevents.GenerateMatch(gameID, seed)
	data, err := m.Payload()
	So(err, ShouldBeNil)
	return data, m
}

func TestHealthAndMetrics(t *testing.T) {
	Convey("Given the API router", t, func() {
		h, _ := newServer()

		Convey("Then /healthz answers ok", func() {
			w := do(h, http.MethodGet, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"ok"`)
		})

		Convey("Then /metrics exposes the converter metrics", func() {
			do(h, http.MethodGet, "/healthz", nil)
			w := do(h, http.MethodGet, "/metrics", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "spadl_converter_http_requests_total")
		})

		Convey("Then /stats reports the service", func() {
			w := do(h, http.MethodGet, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			stats := decode[map[string]any](w)
			So(stats["started"], ShouldEqual, false)
		})
	})
}

func TestConvertEndpoint(t *testing.T) {
	Convey("Given the API router", t, func() {
		h, _ := newServer()

		Convey("When converting a game synchronously", func() {
			body, m := payload("7584", 4)
			w := do(h, http.MethodPost, "/convert/7584?home_team_id="+m.HomeTeamID, body)

			Convey("Then the actions are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				resp := decode[types.ActionsResponse](w)
				So(resp.GameID, ShouldEqual, "7584")
				So(resp.Status, ShouldEqual, "done")
				So(resp.Count, ShouldEqual, len(resp.Actions))
				So(resp.Count, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the body is empty", func() {
			w := do(h, http.MethodPost, "/convert/7584", nil)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the provider is unknown", func() {
			w := do(h, http.MethodPost, "/convert/7584?provider=opta", []byte("[]"))

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the events cannot be converted", func() {
			w := do(h, http.MethodPost, "/convert/7584", []byte(`{"not":"events"}`))

			Convey("Then the failure is unprocessable", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(decode[types.ActionsResponse](w).Error, ShouldNotBeEmpty)
			})
		})

		Convey("When the body exceeds the limit", func() {
			small, _ := newServer(api.WithMaxBodyBytes(16))
			w := do(small, http.MethodPost, "/convert/7584", []byte(strings.Repeat(" ", 64)))

			Convey("Then it is rejected as too large", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})
	})
}

func TestGamesEndpoints(t *testing.T) {
	Convey("Given a started service behind the router", t, func() {
		ctx := context.Background()
		h, svc := newServer()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		body, m := payload("7584", 9)

		Convey("When a game is submitted", func() {
			w := do(h, http.MethodPost, "/games/7584?home_team_id="+m.HomeTeamID, body)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				ack := decode[types.SubmitResponse](w)
				So(ack.Status, ShouldEqual, types.StatusQueued)
				So(ack.JobID, ShouldNotBeEmpty)
			})

			Convey("Then resubmitting reports a duplicate", func() {
				w := do(h, http.MethodPost, "/games/7584", body)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[types.SubmitResponse](w).Duplicate, ShouldBeTrue)
			})

			Convey("Then actions and minutes become available", func() {
				var w *httptest.ResponseRecorder
				deadline := time.Now().Add(5 * time.Second)
				for {
					w = do(h, http.MethodGet, "/games/7584/actions", nil)
					if w.Code != http.StatusAccepted || time.Now().After(deadline) {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[types.ActionsResponse](w).Count, ShouldBeGreaterThan, 0)

				w = do(h, http.MethodGet, "/games/7584/minutes", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				mins := decode[types.MinutesResponse](w)
				So(mins.TotalMinutes, ShouldEqual, m.ExpectedMinutes())
				So(mins.PlayerGames, ShouldHaveLength, m.Appearances())

				w = do(h, http.MethodGet, "/games", nil)
				So(decode[types.GamesResponse](w).Games, ShouldResemble, []string{"7584"})

				w = do(h, http.MethodDelete, "/games/7584", nil)
				So(w.Code, ShouldEqual, http.StatusNoContent)
				w = do(h, http.MethodGet, "/games/7584/actions", nil)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When asking for an unknown game", func() {
			w := do(h, http.MethodGet, "/games/unknown/minutes", nil)

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		h, _ := newServer()
		body, _ := payload("1", 1)
		w := do(h, http.MethodPost, "/games/1", body)

		Convey("Then submissions are unavailable", func() {
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestValidateEndpoint(t *testing.T) {
	Convey("Given the API router", t, func() {
		h, _ := newServer()

		Convey("When validating a legal batch", func() {
			rows := `[{"game_id":"1","original_event_id":"e1","action_id":0,"period_id":1,"time_seconds":0,
				"team_id":"782","player_id":"3289","start_x":52.5,"start_y":34,"end_x":40,"end_y":30,
				"bodypart_id":0,"type_id":0,"result_id":1}]`
			w := do(h, http.MethodPost, "/validate", []byte(rows))

			Convey("Then it is valid", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				resp := decode[types.ValidateResponse](w)
				So(resp.Valid, ShouldBeTrue)
				So(resp.Rows, ShouldEqual, 1)
			})
		})

		Convey("When the batch breaks the contract", func() {
			rows := `[{"game_id":"1","original_event_id":null,"action_id":0,"period_id":9,"time_seconds":0,
				"team_id":"782","player_id":"3289","start_x":500,"start_y":34,"end_x":40,"end_y":30,
				"bodypart_id":0,"type_id":0,"result_id":1}]`
			w := do(h, http.MethodPost, "/validate", []byte(rows))

			Convey("Then every failing column is listed", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				resp := decode[types.ValidateResponse](w)
				So(resp.Valid, ShouldBeFalse)
				columns := map[string]bool{}
				for _, f := range resp.Violations {
					columns[f.Column] = true
				}
				So(columns[schema.ColPeriodID], ShouldBeTrue)
				So(columns[schema.ColStartX], ShouldBeTrue)
			})
		})

		Convey("When the body is not a list of rows", func() {
			w := do(h, http.MethodPost, "/validate", []byte(`{"x":1}`))

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a router allowing one request per client", t, func() {
		h, _ := newServer(api.WithRateLimit(0.001, 1))

		Convey("Then the second request is throttled", func() {
			So(do(h, http.MethodGet, "/stats", nil).Code, ShouldEqual, http.StatusOK)
			w := do(h, http.MethodGet, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Header().Get("Retry-After"), ShouldNotBeEmpty)
		})

		Convey("Then health checks are never throttled", func() {
			for i := 0; i < 3; i++ {
				So(do(h, http.MethodGet, "/healthz", nil).Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}
