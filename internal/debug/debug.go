// Package debug provides a gated diagnostic log stream, independent of the
// stdout the CLI uses for phase timings and search results.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnableDebug is a build flag that can be overridden at link time:
// go build -ldflags "-X github.com/standardbeagle/patriciasearch/internal/debug.EnableDebug=true"
var EnableDebug = "false"

var (
	debugOutput io.Writer
	debugFile   *os.File
	debugMutex  sync.Mutex
)

// SetOutput sets a custom writer for debug output. Pass nil to disable.
func SetOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitLogFile opens a timestamped log file under os.TempDir() and routes
// debug output to it. Returns the path. Call CloseLogFile when done.
func InitLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "patricia-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseLogFile closes the debug log file if one is open.
func CloseLogFile() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// Enabled reports whether debug logging is currently turned on.
func Enabled() bool {
	if EnableDebug == "true" {
		return true
	}
	return os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
}

func writer() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Log writes a component-tagged debug line when debug output is enabled
// and configured.
func Log(component, format string, args ...interface{}) {
	if !Enabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}

// LogIngest logs a diagnostic line tagged for the ingestion pipeline.
func LogIngest(format string, args ...interface{}) { Log("INGEST", format, args...) }

// LogBuild logs a diagnostic line tagged for trie/archive construction.
func LogBuild(format string, args ...interface{}) { Log("BUILD", format, args...) }

// LogSearch logs a diagnostic line tagged for query resolution.
func LogSearch(format string, args ...interface{}) { Log("SEARCH", format, args...) }
