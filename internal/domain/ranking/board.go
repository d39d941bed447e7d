package ranking

// Board holds the two rankings of one level.
type Board struct {
	TimeRanking   []Entry `json:"timeRanking"   bson:"timeRanking"`
	PointsRanking []Entry `json:"pointsRanking" bson:"pointsRanking"`
}

// Result reports the outcome per ranking.
type Result struct {
	Time   Outcome
	Points Outcome
}

// Submit folds one submission into both rankings. A nil board means the
// level has no leaderboard yet; the new one holds just this entry.
func Submit(board *Board, player string, points int64, time float64, capacity int) (Board, Result) {
	if board == nil {
		return Board{
			TimeRanking:   []Entry{{Player: player, Score: time}},
			PointsRanking: []Entry{{Player: player, Score: float64(points)}},
		}, Result{Time: Created, Points: Created}
	}
	var (
		next Board
		res  Result
	)
	next.TimeRanking, res.Time = Insert(board.TimeRanking, Entry{Player: player, Score: time}, Faster, capacity)
	next.PointsRanking, res.Points = Insert(board.PointsRanking, Entry{Player: player, Score: float64(points)}, Higher, capacity)
	return next, res
}
