package contract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/reposcore/schema"
)

// Color variables for console output.
var (
	StrongColor   = color.New(color.FgGreen, color.Bold) // StrongColor marks A grades and upward trends.
	GoodColor     = color.New(color.FgCyan)              // GoodColor marks B grades.
	FairColor     = color.New(color.FgYellow)            // FairColor marks C grades.
	WeakColor     = color.New(color.FgMagenta)           // WeakColor marks D grades.
	CriticalColor = color.New(color.FgRed, color.Bold)   // CriticalColor marks F grades and downward trends.
)

// Logger is the process-wide structured logger. It writes to stderr so that
// stdout stays reserved for reports and the MCP protocol.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// unsafeFileChars matches characters that are not safe in a file name.
var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SetVerbose switches the logger between warning and debug levels.
func SetVerbose(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger.Error(msg, "err", err)
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger.Warn(msg, "err", err)
}

// LogDebug logs a debug message with optional key/value pairs.
func LogDebug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// GetColorGrade returns a colored grade label for console output.
func GetColorGrade(grade schema.Grade) string {
	text := string(grade)
	switch grade {
	case schema.GradeA:
		return StrongColor.Sprint(text)
	case schema.GradeB:
		return GoodColor.Sprint(text)
	case schema.GradeC:
		return FairColor.Sprint(text)
	case schema.GradeD:
		return WeakColor.Sprint(text)
	default:
		return CriticalColor.Sprint(text)
	}
}

// GetColorTrend returns a colored trend label for console output.
func GetColorTrend(trend string) string {
	switch trend {
	case string(schema.TrendUp), string(schema.TrendImproving):
		return StrongColor.Sprint(trend)
	case string(schema.TrendDown), string(schema.TrendDeclining):
		return CriticalColor.Sprint(trend)
	default:
		return trend
	}
}

// SelectOutputFile returns the appropriate file handle for output. An empty
// path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// SanitizeFileName replaces every path-unsafe character of key with '_'.
func SanitizeFileName(key string) string {
	return unsafeFileChars.ReplaceAllString(key, "_")
}

// homePath joins name onto the user's home directory, falling back to the
// working directory when the home directory is unknown.
func homePath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// GetCacheDirPath returns the default directory for file-backed cache entries.
func GetCacheDirPath() string {
	return homePath(filepath.Join(".reposcore", "cache"))
}

// GetHistoryDirPath returns the default directory for file-backed histories.
func GetHistoryDirPath() string {
	return homePath(filepath.Join(".reposcore", "history"))
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	return homePath(".reposcore_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for history storage.
func GetHistoryDBFilePath() string {
	return homePath(".reposcore_history.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and some content.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
