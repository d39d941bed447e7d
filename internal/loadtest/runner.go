package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/platformer/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

const levelScene = `{"tiles":[[0,0,1],[1,1,1]],"spawn":[0,0],"goal":[2,0]}`

// Report is the outcome of a run.
type Report struct {
	LevelID     string
	Stats       Stats
	Leaderboard Leaderboard
	Verified    bool
}

type player struct {
	name  string
	token string
}

// Run registers players, creates a level, submits attempts concurrently and
// verifies the leaderboard and progress the API ends up with. Exact checks
// are skipped when any submission failed, since a failed submission may
// have been partly applied.
func Run(ctx context.Context, cfg *Config) (Report, error) {
	log := logger.Get()
	client := NewClient(cfg.BaseURL, cfg.APIPath, cfg.Timeout)
	stats := Stats{StartTime: time.Now()}

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("submissions", cfg.Submissions),
		logger.Int("workers", cfg.Workers))

	if err := client.Health(ctx); err != nil {
		return Report{}, fmt.Errorf("service health check failed: %w", err)
	}

	players, err := registerPlayers(ctx, client, cfg.Players)
	if err != nil {
		return Report{}, fmt.Errorf("registration failed: %w", err)
	}

	levelID, err := client.CreateLevel(ctx, players[0].token, levelScene)
	if err != nil {
		return Report{}, fmt.Errorf("level creation failed: %w", err)
	}
	log.Info(ctx, "level created", logger.String("level_id", levelID))

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.name
	}
	attempts := generateAttempts(names, cfg.Submissions, cfg.Seed)
	stats.Generated = len(attempts)

	accepted := submitAttempts(ctx, cfg, client, players, levelID, attempts, &stats)

	lb, err := client.Highscore(ctx, players[0].token, levelID)
	if err != nil {
		return Report{}, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	rep := Report{LevelID: levelID, Leaderboard: lb}
	if stats.Failed == 0 {
		users := make([]User, 0, len(players))
		for _, p := range players {
			u, err := client.User(ctx, p.token)
			if err != nil {
				return rep, fmt.Errorf("user retrieval failed: %w", err)
			}
			users = append(users, u)
		}
		if err := VerifyLeaderboard(lb, accepted, cfg.Capacity); err != nil {
			return rep, err
		}
		if err := VerifyProgress(levelID, users, accepted); err != nil {
			return rep, err
		}
		rep.Verified = true
		log.Info(ctx, "leaderboard and progress verified")
	} else {
		log.Warn(ctx, "submissions failed; skipping exact verification", logger.Int("failed", stats.Failed))
	}

	if cfg.OutputFile != "" {
		if err := saveAttempts(cfg.OutputFile, attempts); err != nil {
			log.Warn(ctx, "failed to save attempts", logger.Error(err))
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	rep.Stats = stats
	displayFinalStats(ctx, stats)
	return rep, nil
}

func registerPlayers(ctx context.Context, client *Client, n int) ([]player, error) {
	if n < 1 {
		n = 1
	}
	run := uuid.NewString()[:8]
	out := make([]player, n)
	for i := range out {
		name := fmt.Sprintf("load-%s-%03d", run, i)
		u, err := client.Register(ctx, name, "pw-"+name)
		if err != nil {
			return nil, err
		}
		out[i] = player{name: name, token: u.Token}
	}
	return out, nil
}

// submitAttempts fans attempts out to a worker pool and returns the ones the
// API accepted.
func submitAttempts(ctx context.Context, cfg *Config, client *Client, players []player, levelID string, attempts []Attempt, stats *Stats) []Attempt {
	log := logger.Get()
	tokens := make(map[string]string, len(players))
	for _, p := range players {
		tokens[p.name] = p.token
	}

	workers := max(cfg.Workers, 1)
	var (
		submitted, failed int64
		mu                sync.Mutex
		accepted          = make([]Attempt, 0, len(attempts))
		wg                sync.WaitGroup
	)
	ch := make(chan Attempt, workers*2)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range ch {
				err := client.Submit(ctx, tokens[a.Player], levelID, a)
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "submission failed", logger.String("player", a.Player), logger.Error(err))
					}
					continue
				}
				mu.Lock()
				accepted = append(accepted, a)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, a := range attempts {
			select {
			case <-ctx.Done():
				return
			case ch <- a:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted)
	stats.Failed = int(failed)
	stats.Successful = len(accepted)
	return accepted
}

func saveAttempts(filename string, attempts []Attempt) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(attempts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, filePermission)
}

func displayFinalStats(ctx context.Context, stats Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("submissionsPerSecond", perSecond),
	)
}
