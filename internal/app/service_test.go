package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/okian/platformer/internal/adapters/repository"
	"github.com/okian/platformer/internal/adapters/repository/memstore"
	service "github.com/okian/platformer/internal/app"
	"github.com/okian/platformer/internal/auth"
	"github.com/okian/platformer/internal/domain/model"
	"github.com/okian/platformer/internal/domain/progress"
	"github.com/okian/platformer/internal/domain/ranking"
	"github.com/okian/platformer/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// flakyStore loses the first n leaderboard swaps.
type flakyStore struct {
	*memstore.Store
	mu       sync.Mutex
	failures int
}

func (f *flakyStore) UpdateLeaderboard(ctx context.Context, lb model.Leaderboard) (model.Leaderboard, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return model.Leaderboard{}, repository.ErrConflict
	}
	f.mu.Unlock()
	return f.Store.UpdateLeaderboard(ctx, lb)
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithHasher(auth.NewHasher(4)),
		service.WithIssuer(auth.NewIssuer("test-secret", time.Hour)),
	}
	return service.New(append(base, opts...)...)
}

func register(ctx context.Context, svc *service.Service, name string) model.User {
	sess, err := svc.Register(ctx, name, "pw-"+name)
	So(err, ShouldBeNil)
	return sess.User
}

func TestAccounts(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := newService()

		Convey("When registering", func() {
			sess, err := svc.Register(ctx, "alice", "secret")

			Convey("Then the user and a token come back", func() {
				So(err, ShouldBeNil)
				So(sess.User.ID, ShouldNotBeEmpty)
				So(sess.User.PasswordHash, ShouldNotEqual, "secret")
				So(sess.User.CreatedLevels, ShouldBeEmpty)
				So(sess.Token.Value, ShouldNotBeEmpty)
			})

			Convey("Then the same username is rejected", func() {
				_, err := svc.Register(ctx, "alice", "other")
				So(errors.Is(err, service.ErrUserExists), ShouldBeTrue)
			})

			Convey("Then login checks the password", func() {
				_, err := svc.Login(ctx, "alice", "secret")
				So(err, ShouldBeNil)
				_, err = svc.Login(ctx, "alice", "nope")
				So(errors.Is(err, service.ErrWrongPassword), ShouldBeTrue)
				_, err = svc.Login(ctx, "bob", "secret")
				So(errors.Is(err, service.ErrUserNotFound), ShouldBeTrue)
			})

			Convey("Then the token authenticates until logout", func() {
				claims, err := svc.Authenticate(ctx, sess.Token.Value)
				So(err, ShouldBeNil)
				So(claims.UserID, ShouldEqual, sess.User.ID)

				svc.Logout(ctx, claims)
				_, err = svc.Authenticate(ctx, sess.Token.Value)
				So(errors.Is(err, service.ErrTokenRevoked), ShouldBeTrue)
				So(svc.Stats()["revokedTokens"], ShouldEqual, int64(1))
			})
		})

		Convey("When fields are missing", func() {
			_, err := svc.Register(ctx, "  ", "pw")
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			_, err = svc.Login(ctx, "alice", "")
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the token is forged", func() {
			_, err := svc.Authenticate(ctx, "garbage")
			So(errors.Is(err, auth.ErrInvalidToken), ShouldBeTrue)
		})
	})
}

func TestLevels(t *testing.T) {
	Convey("Given two players", t, func() {
		ctx := context.Background()
		svc := newService(service.WithMaxListLimit(2))
		alice := register(ctx, svc, "alice")
		bob := register(ctx, svc, "bob")

		Convey("When alice creates a level", func() {
			lvl, err := svc.SaveLevel(ctx, alice.ID, service.LevelInput{JSON: `{"tiles":[]}`, Thumbnail: "t.png"})
			So(err, ShouldBeNil)

			Convey("Then she is the creator and it is on her record", func() {
				So(lvl.Creator, ShouldEqual, "alice")
				So(lvl.Version, ShouldEqual, 0)
				u, _ := svc.User(ctx, alice.ID)
				So(u.CreatedLevels, ShouldResemble, []string{lvl.ID})
			})

			Convey("Then she can update it", func() {
				up, err := svc.SaveLevel(ctx, alice.ID, service.LevelInput{ID: lvl.ID, JSON: `{"tiles":[1]}`})
				So(err, ShouldBeNil)
				So(up.ID, ShouldEqual, lvl.ID)
				So(up.Version, ShouldEqual, 1)
				So(up.Thumbnail, ShouldEqual, "t.png")
				So(up.JSON, ShouldEqual, `{"tiles":[1]}`)
			})

			Convey("Then bob cannot update or delete it", func() {
				_, err := svc.SaveLevel(ctx, bob.ID, service.LevelInput{ID: lvl.ID, JSON: "{}"})
				So(errors.Is(err, service.ErrForbidden), ShouldBeTrue)
				So(errors.Is(svc.DeleteLevel(ctx, bob.ID, lvl.ID), service.ErrForbidden), ShouldBeTrue)
			})

			Convey("Then bob can save and unsave it", func() {
				u, err := svc.Subscribe(ctx, bob.ID, lvl.ID)
				So(err, ShouldBeNil)
				So(u.SavedLevels, ShouldResemble, []string{lvl.ID})

				u, err = svc.Subscribe(ctx, bob.ID, lvl.ID)
				So(err, ShouldBeNil)
				So(u.SavedLevels, ShouldHaveLength, 1)

				u, err = svc.Unsubscribe(ctx, bob.ID, lvl.ID)
				So(err, ShouldBeNil)
				So(u.SavedLevels, ShouldBeEmpty)
			})

			Convey("Then deleting removes the level, its leaderboard and the reference", func() {
				_, err := svc.SubmitScore(ctx, bob.ID, service.Submission{LevelID: lvl.ID, Points: 3, Time: 10})
				So(err, ShouldBeNil)

				So(svc.DeleteLevel(ctx, alice.ID, lvl.ID), ShouldBeNil)
				_, err = svc.Level(ctx, lvl.ID)
				So(errors.Is(err, service.ErrLevelNotFound), ShouldBeTrue)
				_, err = svc.Highscore(ctx, lvl.ID)
				So(errors.Is(err, service.ErrLeaderboardNotFound), ShouldBeTrue)
				u, _ := svc.User(ctx, alice.ID)
				So(u.CreatedLevels, ShouldBeEmpty)
			})
		})

		Convey("When a level is saved with an unknown id", func() {
			lvl, err := svc.SaveLevel(ctx, alice.ID, service.LevelInput{ID: "nope", JSON: "{}"})

			Convey("Then a new level is created", func() {
				So(err, ShouldBeNil)
				So(lvl.ID, ShouldNotEqual, "nope")
			})
		})

		Convey("When a level is created without json", func() {
			_, err := svc.SaveLevel(ctx, alice.ID, service.LevelInput{Thumbnail: "x"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When subscribing to an unknown level", func() {
			_, err := svc.Subscribe(ctx, bob.ID, "missing")
			So(errors.Is(err, service.ErrLevelNotFound), ShouldBeTrue)
		})

		Convey("When listing", func() {
			for i := 0; i < 3; i++ {
				_, err := svc.SaveLevel(ctx, alice.ID, service.LevelInput{JSON: fmt.Sprint(i)})
				So(err, ShouldBeNil)
			}
			_, err := svc.SaveLevel(ctx, bob.ID, service.LevelInput{JSON: "b"})
			So(err, ShouldBeNil)

			Convey("Then the limit is capped and the creator filter applies", func() {
				all, err := svc.Levels(ctx, "", 100)
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 2)

				mine, err := svc.Levels(ctx, "bob", 0)
				So(err, ShouldBeNil)
				So(mine, ShouldHaveLength, 1)
				So(mine[0].Creator, ShouldEqual, "bob")
			})
		})
	})
}

func TestSubmitScore(t *testing.T) {
	Convey("Given a level and two players", t, func() {
		ctx := context.Background()
		svc := newService()
		alice := register(ctx, svc, "alice")
		bob := register(ctx, svc, "bob")
		lvl, err := svc.SaveLevel(ctx, alice.ID, service.LevelInput{JSON: "{}"})
		So(err, ShouldBeNil)

		Convey("When alice submits her first score", func() {
			u, err := svc.SubmitScore(ctx, alice.ID, service.Submission{LevelID: lvl.ID, Points: 50, Time: 30})
			So(err, ShouldBeNil)

			Convey("Then progress and leaderboard are created", func() {
				So(u.Progress[lvl.ID], ShouldResemble, progress.Progress{BestPoints: 50, BestTime: 30})
				lb, err := svc.Highscore(ctx, lvl.ID)
				So(err, ShouldBeNil)
				So(lb.TimeRanking, ShouldResemble, []ranking.Entry{{Player: "alice", Score: 30}})
				So(lb.PointsRanking, ShouldResemble, []ranking.Entry{{Player: "alice", Score: 50}})
			})

			Convey("Then a faster but lower run only improves time", func() {
				u, err := svc.SubmitScore(ctx, alice.ID, service.Submission{LevelID: lvl.ID, Points: 40, Time: 25})
				So(err, ShouldBeNil)
				So(u.Progress[lvl.ID], ShouldResemble, progress.Progress{BestPoints: 50, BestTime: 25})

				lb, _ := svc.Highscore(ctx, lvl.ID)
				So(lb.TimeRanking, ShouldHaveLength, 2)
				So(lb.TimeRanking[0].Score, ShouldEqual, 25)
				So(lb.PointsRanking[1].Score, ShouldEqual, 40)
			})

			Convey("Then bob's faster run ranks ahead", func() {
				_, err := svc.SubmitScore(ctx, bob.ID, service.Submission{LevelID: lvl.ID, Points: 10, Time: 9})
				So(err, ShouldBeNil)
				lb, _ := svc.Highscore(ctx, lvl.ID)
				So(lb.TimeRanking[0], ShouldResemble, ranking.Entry{Player: "bob", Score: 9})
				So(lb.PointsRanking[0], ShouldResemble, ranking.Entry{Player: "alice", Score: 50})
			})
		})

		Convey("When the submission is invalid", func() {
			_, err := svc.SubmitScore(ctx, alice.ID, service.Submission{Points: 1, Time: 1})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

			_, err = svc.SubmitScore(ctx, alice.ID, service.Submission{LevelID: lvl.ID, Points: 1, Time: math.Inf(1)})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

			_, err = svc.SubmitScore(ctx, alice.ID, service.Submission{LevelID: "missing", Points: 1, Time: 1})
			So(errors.Is(err, service.ErrLevelNotFound), ShouldBeTrue)

			Convey("Then nothing was written", func() {
				u, _ := svc.User(ctx, alice.ID)
				So(u.Progress, ShouldBeEmpty)
				_, err := svc.Highscore(ctx, lvl.ID)
				So(errors.Is(err, service.ErrLeaderboardNotFound), ShouldBeTrue)
			})
		})

		Convey("When many submissions race on one level", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 60)
			for i := 0; i < 60; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					who := alice.ID
					if i%2 == 0 {
						who = bob.ID
					}
					_, err := svc.SubmitScore(ctx, who, service.Submission{LevelID: lvl.ID, Points: int64(i), Time: float64(100 - i)})
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)

			Convey("Then the leaderboard stays sorted and bounded", func() {
				failed := 0
				for err := range errs {
					if err != nil {
						So(errors.Is(err, service.ErrConflict), ShouldBeTrue)
						failed++
					}
				}
				lb, err := svc.Highscore(ctx, lvl.ID)
				So(err, ShouldBeNil)
				So(len(lb.TimeRanking), ShouldBeLessThanOrEqualTo, ranking.DefaultCapacity)
				So(ranking.Sorted(lb.TimeRanking, ranking.Faster), ShouldBeTrue)
				So(ranking.Sorted(lb.PointsRanking, ranking.Higher), ShouldBeTrue)
				if failed == 0 {
					So(lb.PointsRanking[0].Score, ShouldEqual, 59)
					So(lb.TimeRanking[0].Score, ShouldEqual, 41)
				}
			})
		})
	})
}

func TestSubmitScoreConflicts(t *testing.T) {
	Convey("Given a store that loses leaderboard swaps", t, func() {
		ctx := context.Background()
		store := &flakyStore{Store: memstore.New()}
		svc := newService(service.WithStore(store), service.WithMergeRetries(3))
		alice := register(ctx, svc, "alice")
		lvl, err := svc.SaveLevel(ctx, alice.ID, service.LevelInput{JSON: "{}"})
		So(err, ShouldBeNil)
		_, err = svc.SubmitScore(ctx, alice.ID, service.Submission{LevelID: lvl.ID, Points: 1, Time: 50})
		So(err, ShouldBeNil)

		Convey("When fewer conflicts than retries occur", func() {
			store.failures = 2
			_, err := svc.SubmitScore(ctx, alice.ID, service.Submission{LevelID: lvl.ID, Points: 2, Time: 40})

			Convey("Then the submission lands", func() {
				So(err, ShouldBeNil)
				lb, _ := svc.Highscore(ctx, lvl.ID)
				So(lb.TimeRanking, ShouldHaveLength, 2)
			})
		})

		Convey("When conflicts outlast the retries", func() {
			store.failures = 3
			_, err := svc.SubmitScore(ctx, alice.ID, service.Submission{LevelID: lvl.ID, Points: 2, Time: 40})

			Convey("Then a conflict error surfaces", func() {
				So(errors.Is(err, service.ErrConflict), ShouldBeTrue)
				lb, _ := svc.Highscore(ctx, lvl.ID)
				So(lb.TimeRanking, ShouldHaveLength, 1)
			})
		})
	})
}
