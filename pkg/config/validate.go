package config

import (
	"fmt"
	"strings"

	"github.com/japaniel/lexiquiz/pkg/words"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically; call it again after overriding fields.
func (c *Config) Validate() error {
	if err := c.Store.validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Source.validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Quiz.validate(); err != nil {
		return fmt.Errorf("quiz: %w", err)
	}
	return nil
}

func (s *StoreConfig) validate() error {
	if s.Prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if !s.Ephemeral && strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("path is required unless ephemeral")
	}
	return nil
}

func (s *SourceConfig) validate() error {
	s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
	switch s.Kind {
	case SourceHTTP:
		if s.URL == "" {
			return fmt.Errorf("url is required for kind %q", s.Kind)
		}
	case SourceDir:
		if s.Dir == "" {
			return fmt.Errorf("dir is required for kind %q", s.Kind)
		}
	case SourceBuiltin:
	default:
		return fmt.Errorf("unknown kind %q (want http, dir or builtin)", s.Kind)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", s.Timeout)
	}
	return nil
}

func (q *QuizConfig) validate() error {
	if err := words.CheckPair(q.Difficulty, q.Category); err != nil {
		return err
	}
	if q.TimeLimit < 0 {
		return fmt.Errorf("time_limit must be >= 0 (got %v)", q.TimeLimit)
	}
	if q.PreloadWorkers < 1 || q.PreloadWorkers > words.MaxPreloadWorkers {
		return fmt.Errorf("preload_workers must be in 1..%d (got %d)", words.MaxPreloadWorkers, q.PreloadWorkers)
	}
	return nil
}
