// Package debug provides category-based debug logging for adminguard.
//
// Categories select which parts of the security pipeline log at DEBUG
// (ADMINGUARD_DEBUG or logging.debug). The level controls how much is
// logged overall (ADMINGUARD_LOG_LEVEL or logging.level). At TRACE every
// stage invocation is logged.
//
//	debug.Log("pipeline", "chain selected", "chain", name, "path", path)
//	debug.Trace("pipeline", "running stage", "stage", s.Name())
package debug

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"
	"unicode/utf8"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// Known lists the categories emitted by adminguard packages. "all" enables
// every category.
var Known = []string{"access", "auth", "config", "directory", "pipeline", "rememberme", "session"}

// categories is written by init and Init only, before serving starts.
var categories = parseCategories(os.Getenv("ADMINGUARD_DEBUG"))

// Init configures categories and the default slog logger. Environment
// variables win over the configured values. It returns the requested
// categories that no package emits, so callers can warn about typos.
func Init(configCategories, configLevel string) (unknown []string) {
	cats := os.Getenv("ADMINGUARD_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("ADMINGUARD_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))

	for _, c := range Categories() {
		if c != "all" && !slices.Contains(Known, c) {
			unknown = append(unknown, c)
		}
	}
	return unknown
}

// Enabled reports whether debug output is active for the category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a DEBUG record tagged with the category, if it is enabled.
func Log(category, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a TRACE record tagged with the category, if it is enabled.
func Trace(category, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// ParseLevel maps ERROR, WARN, INFO, DEBUG and TRACE (any case) to a
// slog level. Anything else is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories, sorted.
func Categories() []string {
	out := make([]string, 0, len(categories))
	for c := range categories {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Truncate shortens s to at most maxRunes runes and appends "..." when
// anything was cut. Used for attacker-controlled values such as submitted
// usernames.
func Truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	i := 0
	for n := range s {
		if i == maxRunes {
			return s[:n] + "..."
		}
		i++
	}
	return s
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, c := range strings.Split(s, ",") {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			m[c] = true
		}
	}
	return m
}
