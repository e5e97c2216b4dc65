package logging

import (
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// LoggerPatternConfig is an instance of a level specification for a given logger.
type LoggerPatternConfig struct {
	Pattern string `json:"pattern"`
	Level   string `json:"level"`
}

const (
	// e.g. "foo".
	validLoggerSectionName = `[a-zA-Z0-9]+([_-]*[a-zA-Z0-9]+)*`
	// e.g. "foo" or "*".
	validLoggerSectionNameWithWildcard = `(` + validLoggerSectionName + `|\*)`
	// e.g. "foo.*.foo".
	validLoggerName = `^` + validLoggerSectionNameWithWildcard + `(\.` + validLoggerSectionNameWithWildcard + `)*$`
)

var (
	loggerPatternRegexp  = regexp.MustCompile(validLoggerName)
	globalLoggerRegistry = newRegistry()
)

// ParseLoggerPatternConfig parses a "pattern=level" pair, e.g. "contactplan.planner.*=debug".
func ParseLoggerPatternConfig(inp string) (LoggerPatternConfig, error) {
	pattern, level, found := strings.Cut(inp, "=")
	if !found {
		return LoggerPatternConfig{}, errors.Errorf("expected pattern=level but got %q", inp)
	}
	if !loggerPatternRegexp.MatchString(pattern) {
		return LoggerPatternConfig{}, errors.Errorf("invalid logger pattern %q", pattern)
	}
	if _, err := LevelFromString(level); err != nil {
		return LoggerPatternConfig{}, err
	}
	return LoggerPatternConfig{Pattern: pattern, Level: level}, nil
}

func buildRegexFromPattern(pattern string) string {
	var matcher strings.Builder
	matcher.WriteRune('^')
	for _, ch := range pattern {
		switch ch {
		case '*':
			matcher.WriteString(`.*`)
		case '.':
			matcher.WriteString(`\.`)
		default:
			matcher.WriteRune(ch)
		}
	}
	matcher.WriteRune('$')
	return matcher.String()
}

type registry struct {
	mu        sync.RWMutex
	loggers   map[string]Logger
	logConfig []LoggerPatternConfig
}

func newRegistry() *registry {
	return &registry{
		loggers: make(map[string]Logger),
	}
}

// levelFor returns the level the last matching pattern assigns to `name`.
func (lr *registry) levelFor(name string) (Level, bool, error) {
	var (
		level   Level
		matched bool
	)
	for _, lpc := range lr.logConfig {
		r, err := regexp.Compile(buildRegexFromPattern(lpc.Pattern))
		if err != nil {
			return level, false, err
		}
		if !r.MatchString(name) {
			continue
		}
		level, err = LevelFromString(lpc.Level)
		if err != nil {
			return level, false, err
		}
		matched = true
	}
	return level, matched, nil
}

// register stores `logger` under `name`, replacing any logger previously registered with that
// name, and applies the matching level pattern to it.
func (lr *registry) register(name string, logger Logger) Logger {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.loggers[name] = logger
	if level, ok, err := lr.levelFor(name); err == nil && ok {
		logger.SetLevel(level)
	}
	return logger
}

func (lr *registry) updateConfig(logConfig []LoggerPatternConfig) error {
	for _, lpc := range logConfig {
		if !loggerPatternRegexp.MatchString(lpc.Pattern) {
			return errors.Errorf("invalid logger pattern %q", lpc.Pattern)
		}
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()
	lr.logConfig = logConfig
	for name, logger := range lr.loggers {
		level, ok, err := lr.levelFor(name)
		if err != nil {
			return err
		}
		if ok {
			logger.SetLevel(level)
		}
	}
	return nil
}

// RegisterLogger registers a logger under `name`. A later registration under the same name wins.
func RegisterLogger(name string, logger Logger) Logger {
	return globalLoggerRegistry.register(name, logger)
}

// UpdateLoggerConfig applies the level patterns to every registered logger and to loggers
// registered afterwards.
func UpdateLoggerConfig(logConfig []LoggerPatternConfig) error {
	return globalLoggerRegistry.updateConfig(logConfig)
}
