package app

import (
	"fmt"

	"github.com/heartmarshall/memorygym-backend/internal/config"
	"github.com/heartmarshall/memorygym-backend/internal/domain"
	"github.com/heartmarshall/memorygym-backend/internal/service/persist"
	"github.com/heartmarshall/memorygym-backend/internal/service/study"
	"github.com/heartmarshall/memorygym-backend/internal/service/study/leitner"
)

// StudyConfig converts the validated configuration into study.Config.
func StudyConfig(cfg *config.Config) (study.Config, error) {
	intervals, err := leitner.NewIntervalTable(cfg.Leitner.Intervals)
	if err != nil {
		return study.Config{}, fmt.Errorf("leitner intervals: %w", err)
	}
	return study.Config{
		Intervals:        intervals,
		StudyOrder:       domain.OrderPolicy(cfg.Leitner.StudyOrder),
		TrainingOrder:    domain.OrderPolicy(cfg.Leitner.TrainingOrder),
		IdleTTL:          cfg.Session.IdleTTL,
		MaxActivePerUser: cfg.Session.MaxActivePerUser,
		RecentLimit:      cfg.Session.RecentLimit,
	}, nil
}

// PersistConfig converts the persist section into persist.Config.
func PersistConfig(cfg *config.Config) persist.Config {
	p := cfg.Persist
	return persist.Config{
		BufferSize:    p.BufferSize,
		MaxAttempts:   p.MaxAttempts,
		InitialWait:   p.InitialWait,
		MaxWait:       p.MaxWait,
		JitterPercent: p.JitterPercent,
		WriteTimeout:  p.WriteTimeout,
	}
}
