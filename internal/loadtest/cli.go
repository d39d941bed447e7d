package loadtest

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/platformer/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWith(w, "text"); err != nil {
		return err
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// DefaultOutputFile names an attempts file after the current time.
func DefaultOutputFile(now time.Time) string {
	return "attempts_" + now.Format("20060102_150405") + ".json"
}
