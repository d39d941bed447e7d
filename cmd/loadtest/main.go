package main

import (
	"context"
	"os"
	"runtime"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/okian/platformer/internal/loadtest"
)

// Default configuration constants.
const (
	defaultPlayers     = 25
	defaultSubmissions = 2000
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultCapacity    = 20
	defaultTimeout     = 30 * time.Second
	defaultRunTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.StringP("url", "u", "http://localhost:9080", "Base URL of the service")
		apiPath     = flag.String("api-path", "/api", "Prefix of the authenticated routes")
		players     = flag.IntP("players", "p", defaultPlayers, "Accounts to register")
		submissions = flag.IntP("submissions", "n", defaultSubmissions, "Attempts to submit")
		workers     = flag.IntP("workers", "w", runtime.NumCPU()*defaultWorkers, "Concurrent submitters")
		capacity    = flag.Int("capacity", defaultCapacity, "Leaderboard capacity configured on the server")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed        = flag.Uint64("seed", 0, "Attempt generator seed (0 = time based)")
		output      = flag.StringP("output", "o", "", "Write generated attempts here (default attempts_TIMESTAMP.json)")
		noOutput    = flag.Bool("no-output", false, "Do not write the attempts file")
		logFile     = flag.String("log", "", "Also write logs to this file")
		verbose     = flag.BoolP("verbose", "v", false, "Enable debug logging")
	)
	flag.Parse()

	if err := loadtest.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	outFile := *output
	if outFile == "" && !*noOutput {
		outFile = loadtest.DefaultOutputFile(time.Now())
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	rep, err := loadtest.Run(ctx, &loadtest.Config{
		BaseURL:     *baseURL,
		APIPath:     *apiPath,
		Players:     *players,
		Submissions: *submissions,
		Workers:     *workers,
		Capacity:    *capacity,
		Timeout:     *timeout,
		Seed:        *seed,
		OutputFile:  outFile,
		Verbose:     *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("load run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if !rep.Verified {
		os.Exit(2)
	}
}
