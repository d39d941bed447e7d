package ranking_test

import (
	"math/rand"
	"testing"

	"github.com/okian/platformer/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func pointsList(from, to int) []ranking.Entry {
	var out []ranking.Entry
	for s := from; s >= to; s-- {
		out = append(out, ranking.Entry{Player: "p", Score: float64(s)})
	}
	return out
}

func TestInsert(t *testing.T) {
	Convey("Given an empty time ranking", t, func() {
		var list []ranking.Entry

		Convey("When A then a faster B are inserted", func() {
			list, out := ranking.Insert(list, ranking.Entry{Player: "A", Score: 12.5}, ranking.Faster, 20)
			So(out, ShouldEqual, ranking.Appended)
			So(list, ShouldResemble, []ranking.Entry{{Player: "A", Score: 12.5}})

			list, out = ranking.Insert(list, ranking.Entry{Player: "B", Score: 9.0}, ranking.Faster, 20)

			Convey("Then B ranks first", func() {
				So(out, ShouldEqual, ranking.Inserted)
				So(list, ShouldResemble, []ranking.Entry{{Player: "B", Score: 9.0}, {Player: "A", Score: 12.5}})
			})
		})
	})

	Convey("Given a full points ranking scored 100..81", t, func() {
		list := pointsList(100, 81)
		So(list, ShouldHaveLength, 20)

		Convey("When Z ties last place", func() {
			got, out := ranking.Insert(list, ranking.Entry{Player: "Z", Score: 81}, ranking.Higher, 20)

			Convey("Then Z takes the last slot and the old 81 drops", func() {
				So(out, ShouldEqual, ranking.Inserted)
				So(got, ShouldHaveLength, 20)
				So(got[19], ShouldResemble, ranking.Entry{Player: "Z", Score: 81})
				So(got[18].Score, ShouldEqual, 82)
			})
		})

		Convey("When a score worse than everything arrives", func() {
			got, out := ranking.Insert(list, ranking.Entry{Player: "Z", Score: 10}, ranking.Higher, 20)

			Convey("Then the list is unchanged", func() {
				So(out, ShouldEqual, ranking.Discarded)
				So(got, ShouldResemble, list)
			})
		})

		Convey("When a score beats the last place", func() {
			got, _ := ranking.Insert(list, ranking.Entry{Player: "Z", Score: 90.5}, ranking.Higher, 20)

			Convey("Then it lands at its rank and the last place drops", func() {
				So(got, ShouldHaveLength, 20)
				So(got[10], ShouldResemble, ranking.Entry{Player: "Z", Score: 90.5})
				So(got[19].Score, ShouldEqual, 82)
			})
		})

		Convey("When inserting, the input is not mutated", func() {
			before := pointsList(100, 81)
			ranking.Insert(list, ranking.Entry{Player: "Z", Score: 1000}, ranking.Higher, 20)
			So(list, ShouldResemble, before)
		})
	})

	Convey("Given a ranking with a tie in the middle", t, func() {
		list := []ranking.Entry{{"a", 3}, {"b", 5}, {"c", 5}, {"d", 7}}

		Convey("When an equal time arrives", func() {
			got, _ := ranking.Insert(list, ranking.Entry{Player: "n", Score: 5}, ranking.Faster, 20)

			Convey("Then it goes ahead of the first equal entry", func() {
				So(got, ShouldResemble, []ranking.Entry{{"a", 3}, {"n", 5}, {"b", 5}, {"c", 5}, {"d", 7}})
			})
		})
	})

	Convey("Given a list longer than the capacity", t, func() {
		list := pointsList(30, 1)

		Convey("When a score ranking past the capacity arrives", func() {
			got, out := ranking.Insert(list, ranking.Entry{Player: "z", Score: 2.5}, ranking.Higher, 20)
			So(out, ShouldEqual, ranking.Discarded)
			So(got, ShouldHaveLength, 20)
		})
	})

	Convey("Given random insertion sequences", t, func() {
		rng := rand.New(rand.NewSource(7))

		Convey("Then both rankings stay sorted and bounded", func() {
			var times, points []ranking.Entry
			for i := 0; i < 500; i++ {
				score := float64(rng.Intn(60))
				times, _ = ranking.Insert(times, ranking.Entry{Player: "p", Score: score}, ranking.Faster, 20)
				points, _ = ranking.Insert(points, ranking.Entry{Player: "p", Score: score}, ranking.Higher, 20)
				So(len(times), ShouldBeLessThanOrEqualTo, 20)
				So(len(points), ShouldBeLessThanOrEqualTo, 20)
				So(ranking.Sorted(times, ranking.Faster), ShouldBeTrue)
				So(ranking.Sorted(points, ranking.Higher), ShouldBeTrue)
			}
			So(times, ShouldHaveLength, 20)
		})
	})
}

func TestSubmit(t *testing.T) {
	Convey("Given a level without a leaderboard", t, func() {
		Convey("When the first submission arrives", func() {
			board, res := ranking.Submit(nil, "alice", 40, 25.5, 20)

			Convey("Then both lists hold exactly that entry", func() {
				So(res, ShouldResemble, ranking.Result{Time: ranking.Created, Points: ranking.Created})
				So(board.TimeRanking, ShouldResemble, []ranking.Entry{{Player: "alice", Score: 25.5}})
				So(board.PointsRanking, ShouldResemble, []ranking.Entry{{Player: "alice", Score: 40}})
			})
		})
	})

	Convey("Given an existing leaderboard", t, func() {
		board := &ranking.Board{
			TimeRanking:   []ranking.Entry{{"alice", 25.5}},
			PointsRanking: []ranking.Entry{{"alice", 40}},
		}

		Convey("When bob is faster but scores less", func() {
			next, res := ranking.Submit(board, "bob", 10, 20.0, 20)

			Convey("Then each ranking is updated independently", func() {
				So(res.Time, ShouldEqual, ranking.Inserted)
				So(res.Points, ShouldEqual, ranking.Appended)
				So(next.TimeRanking[0].Player, ShouldEqual, "bob")
				So(next.PointsRanking[0].Player, ShouldEqual, "alice")
				So(board.TimeRanking, ShouldHaveLength, 1)
			})
		})
	})
}
