package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate performs business-rule validation on the server configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Session.MaxStreams >= int(c.Database.MaxConns) {
		return fmt.Errorf("session.max_streams (%d) must be below database.max_conns (%d)",
			c.Session.MaxStreams, c.Database.MaxConns)
	}

	return c.validateShared()
}

// ValidateLocal validates the sections used by the local client.
func (c *Config) ValidateLocal() error {
	if c.Local.DBPath == "" {
		return fmt.Errorf("local.db_path is required")
	}
	return c.validateShared()
}

func (c *Config) validateShared() error {
	if err := c.Leitner.validate(); err != nil {
		return fmt.Errorf("leitner: %w", err)
	}
	if err := c.Persist.validate(); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (l *LeitnerConfig) validate() error {
	intervals, err := ParseIntervals(l.IntervalsRaw)
	if err != nil {
		return fmt.Errorf("intervals: %w", err)
	}
	l.Intervals = intervals

	for name, order := range map[string]string{"study_order": l.StudyOrder, "training_order": l.TrainingOrder} {
		if order != "INSERTION" && order != "SHUFFLE" {
			return fmt.Errorf("%s must be INSERTION or SHUFFLE (got %q)", name, order)
		}
	}
	return nil
}

func (p *PersistConfig) validate() error {
	if p.BufferSize < 0 {
		return fmt.Errorf("buffer_size must be >= 0 (got %d)", p.BufferSize)
	}
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", p.MaxAttempts)
	}
	if p.InitialWait <= 0 {
		return fmt.Errorf("initial_wait must be > 0 (got %s)", p.InitialWait)
	}
	if p.MaxWait < p.InitialWait {
		return fmt.Errorf("max_wait %s must be >= initial_wait %s", p.MaxWait, p.InitialWait)
	}
	if p.JitterPercent > 100 {
		return fmt.Errorf("jitter_percent must be <= 100 (got %d)", p.JitterPercent)
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.IdleTTL <= 0 {
		return fmt.Errorf("idle_ttl must be > 0 (got %s)", s.IdleTTL)
	}
	if s.MaxActivePerUser < 1 {
		return fmt.Errorf("max_active_per_user must be >= 1 (got %d)", s.MaxActivePerUser)
	}
	if s.RecentLimit < 1 {
		return fmt.Errorf("recent_limit must be >= 1 (got %d)", s.RecentLimit)
	}
	if s.MaxStreams < 1 {
		return fmt.Errorf("max_streams must be >= 1 (got %d)", s.MaxStreams)
	}
	if s.MaxStreamsPerUser < 1 || s.MaxStreamsPerUser > s.MaxStreams {
		return fmt.Errorf("max_streams_per_user must be in [1, max_streams] (got %d)", s.MaxStreamsPerUser)
	}
	return nil
}

// ParseIntervals parses a comma-separated list of day counts (e.g. "1,3,7,14,30").
// An empty string returns a nil slice; shape checks are left to the scheduler.
func ParseIntervals(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	days := make([]int, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid day count %q: %w", p, err)
		}
		days = append(days, d)
	}

	return days, nil
}
