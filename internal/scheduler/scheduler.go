// Package scheduler runs the periodic background jobs of the daemon.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/acctmgr/acctmgr/internal/activation"
)

const statsTimeout = 30 * time.Second

var codeGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "acctmgr",
	Name:      "activation_codes",
	Help:      "Number of activation codes by type and status.",
}, []string{"type", "status"})

// CodeStats counts activation codes per type and status.
type CodeStats interface {
	CountByStatus(ctx context.Context) (map[activation.Type]map[activation.Status]int64, error)
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron  *cron.Cron
	codes CodeStats
	wg    sync.WaitGroup
}

// New creates a scheduler reading code statistics from codes.
func New(codes CodeStats) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		codes: codes,
	}
}

// Start registers the jobs and starts the runner. statsSpec is a cron spec or @every duration.
func (s *Scheduler) Start(statsSpec string) error {
	if _, err := s.cron.AddFunc(statsSpec, s.RefreshCodeStats); err != nil {
		return err
	}

	// fill the gauge before the first tick
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.RefreshCodeStats()
	}()

	s.cron.Start()
	log.Info().Str("stats", statsSpec).Msg("scheduler started")

	return nil
}

// Stop stops the runner and waits for running jobs, including the initial refresh.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Info().Msg("scheduler stopped")
}

// RefreshCodeStats sets the activation code gauge from the database. Every type and
// status pair is written so drained states drop to zero.
func (s *Scheduler) RefreshCodeStats() {
	ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
	defer cancel()

	counts, err := s.codes.CountByStatus(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count activation codes")
		return
	}

	for _, t := range activation.Types() {
		for _, st := range activation.Statuses() {
			codeGauge.WithLabelValues(t.String(), st.String()).Set(float64(counts[t][st]))
		}
	}
}
