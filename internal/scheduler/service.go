package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pulseboard/feedback-insights/internal/analysis"
	"github.com/pulseboard/feedback-insights/internal/archive"
	"github.com/pulseboard/feedback-insights/internal/config"
	"github.com/pulseboard/feedback-insights/internal/models"
	"github.com/pulseboard/feedback-insights/internal/reports"
	"github.com/pulseboard/feedback-insights/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepBatchSize = 50

// Service runs the background jobs: the pending-classification sweep, the
// periodic digest, and the snapshot export
type Service struct {
	config     *config.Config
	store      *store.Store
	classifier *analysis.Classifier
	digest     reports.DigestInterface
	exporter   archive.Exporter // nil when no archive is configured
	cron       *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, st *store.Store, classifier *analysis.Classifier,
	digest reports.DigestInterface, exporter archive.Exporter) *Service {
	return &Service{
		config:     cfg,
		store:      st,
		classifier: classifier,
		digest:     digest,
		exporter:   exporter,
		cron:       cron.New(cron.WithSeconds()),
	}
}

// Start registers and begins the scheduled jobs
func (s *Service) Start() error {
	sweepMinutes := int(s.config.SweepInterval.Minutes())
	if sweepMinutes < 1 {
		sweepMinutes = 1
	}
	sweepExpr := fmt.Sprintf("0 */%d * * * *", sweepMinutes)
	if _, err := s.cron.AddFunc(sweepExpr, func() {
		if err := s.RunSweep(); err != nil {
			logrus.Errorf("Classification sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if s.config.EnableDigest {
		var digestExpr string
		switch s.config.DigestSchedule {
		case "daily":
			// Every day at 9 AM UTC
			digestExpr = "0 0 9 * * *"
		default:
			// Weekly on Monday at 9 AM UTC
			digestExpr = "0 0 9 * * MON"
		}

		if _, err := s.cron.AddFunc(digestExpr, func() {
			if err := s.RunDigest(); err != nil {
				logrus.Errorf("Digest run failed: %v", err)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	logrus.Infof("Scheduler started (sweep every %v, digest %s enabled=%t)",
		s.config.SweepInterval, s.config.DigestSchedule, s.config.EnableDigest)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}

// RunSweep classifies items that are still unanalyzed. Items that arrive
// through the API are classified inline, so this mostly picks up rows
// seeded out of band or left behind by a crash. The classifier's fallback
// counts as a classification, so each row is swept at most once.
func (s *Service) RunSweep() error {
	pending, err := s.store.ListPending(sweepBatchSize)
	if err != nil {
		return fmt.Errorf("list pending: %w", err)
	}

	if len(pending) == 0 {
		logrus.Debug("No pending feedback to classify")
		return nil
	}

	logrus.Infof("Sweeping %d pending feedback items", len(pending))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	for _, item := range pending {
		result := s.classifier.Classify(ctx, item.Content)
		if err := s.store.ApplyClassification(item.ID, result); err != nil {
			logrus.Errorf("Failed to apply classification to %s: %v", item.ID, err)
			continue
		}
	}

	return nil
}

// RunDigest builds the periodic digest from the aggregate views, delivers
// it, and exports a snapshot when an archive is configured
func (s *Service) RunDigest() error {
	logrus.Info("Building digest report")

	report, err := s.buildDigest()
	if err != nil {
		return err
	}

	if err := s.digest.SendDigest(report); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	if s.exporter != nil {
		if err := s.exportSnapshot(report); err != nil {
			logrus.Errorf("Snapshot export failed: %v", err)
		}
	}

	return nil
}

func (s *Service) buildDigest() (*models.DigestReport, error) {
	overview, err := s.store.Overview()
	if err != nil {
		return nil, fmt.Errorf("digest overview: %w", err)
	}

	topThemes, err := s.store.TopThemes()
	if err != nil {
		return nil, fmt.Errorf("digest top themes: %w", err)
	}

	recent, err := s.store.ListFeedback(store.Filter{Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("digest recent feedback: %w", err)
	}

	return &models.DigestReport{
		GeneratedAt: time.Now().UTC(),
		Period:      s.config.DigestSchedule,
		Overview:    overview,
		TopThemes:   topThemes,
		Recent:      recent,
	}, nil
}

func (s *Service) exportSnapshot(report *models.DigestReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("digest-%s.json", report.GeneratedAt.Format("2006-01-02-15-04-05"))
	return s.exporter.Store(name, data)
}
