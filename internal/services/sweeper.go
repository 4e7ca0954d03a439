package services

import (
	"time"

	"live-bidding/internal/bidding"
	"live-bidding/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronGroupSweeper closes groups that outlived the configured maximum
// lifetime. This is a deliberate, separate policy from the inactivity
// window: the silence timeout only re-checks the target price, so a group
// nobody bids on would otherwise stay open forever.
type CronGroupSweeper struct {
	cron        *cron.Cron
	registry    *bidding.GroupRegistry
	maxLifetime time.Duration
	log         logger.Logger
}

func NewCronGroupSweeper(registry *bidding.GroupRegistry, maxLifetime time.Duration, log logger.Logger) *CronGroupSweeper {
	return &CronGroupSweeper{
		cron:        cron.New(cron.WithSeconds()),
		registry:    registry,
		maxLifetime: maxLifetime,
		log:         log,
	}
}

func (s *CronGroupSweeper) Start() error {
	s.log.Info("Starting group sweeper", "max_lifetime", s.maxLifetime)

	_, err := s.cron.AddFunc("@every 1m", func() {
		s.sweep()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronGroupSweeper) Stop() error {
	s.log.Info("Stopping group sweeper")
	s.cron.Stop()
	return nil
}

func (s *CronGroupSweeper) sweep() {
	expired := s.registry.GroupsOlderThan(s.maxLifetime)
	for _, group := range expired {
		s.log.Info("Closing expired group", "group", group.GroupName(), "created_at", group.CreatedAt())
		group.Close()
	}
}
