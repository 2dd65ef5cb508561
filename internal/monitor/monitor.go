// Package monitor runs periodic housekeeping: occupancy audits of the
// configured lots and pruning of idle rate limiter entries.
package monitor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"valet-parking-backend/internal/occupancy"
)

// Auditor checks a lot's occupancy records.
type Auditor interface {
	Audit(ctx context.Context, lotID string) ([]occupancy.Violation, error)
}

// Sweeper forgets state idle for longer than the given duration.
type Sweeper interface {
	Cleanup(idle time.Duration) int
}

// Service audits lots on a fixed interval.
type Service struct {
	auditor  Auditor
	sweeper  Sweeper
	lots     []string
	interval time.Duration
	log      logrus.FieldLogger
}

// NewService creates a monitor. sweeper may be nil.
func NewService(auditor Auditor, sweeper Sweeper, lots []string, interval time.Duration, log logrus.FieldLogger) *Service {
	return &Service{
		auditor:  auditor,
		sweeper:  sweeper,
		lots:     lots,
		interval: interval,
		log:      log.WithField("component", "monitor"),
	}
}

// Run performs a round immediately and then once per interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	s.log.WithField("interval", s.interval.String()).Info("starting monitor")
	s.RunOnce(ctx)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("monitor shutting down")
			return
		case <-timer.C:
			s.RunOnce(ctx)
			timer.Reset(s.interval)
		}
	}
}

// RunOnce audits every lot and sweeps idle state. It returns the total
// number of violations found.
func (s *Service) RunOnce(ctx context.Context) int {
	total := 0
	for _, lot := range s.lots {
		violations, err := s.auditor.Audit(ctx, lot)
		if err != nil {
			s.log.WithError(err).WithField("lot_id", lot).Warn("audit failed")
			continue
		}
		for _, v := range violations {
			s.log.WithFields(logrus.Fields{
				"lot_id":   lot,
				"spot_id":  v.SpotID,
				"label":    v.SpotLabel,
				"status":   v.Status,
				"vehicles": v.ActiveVehicleIDs,
			}).Error(v.Reason)
		}
		total += len(violations)
	}

	if s.sweeper != nil {
		if n := s.sweeper.Cleanup(2 * s.interval); n > 0 {
			s.log.WithField("removed", n).Debug("pruned idle rate limiters")
		}
	}
	return total
}
