package commands

import (
	"context"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/coursebuilder/internal/config"
	"git.home.luguber.info/inful/coursebuilder/internal/daemon"
	"git.home.luguber.info/inful/coursebuilder/internal/events"
	"git.home.luguber.info/inful/coursebuilder/internal/history"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/metrics"
	"git.home.luguber.info/inful/coursebuilder/internal/publish"
)

// services holds the components shared by convert and sync: metrics,
// run history, event publishing and the optional git committer.
type services struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *prom.Registry
	recorder  *metrics.PrometheusRecorder
	history   history.Store
	publisher events.Publisher
	committer *publish.Committer
	server    *daemon.MetricsServer
}

// openServices wires the services named in cfg. serve starts the metrics
// HTTP server when metrics.listen_addr is set; one-shot runs rely on the
// textfile export instead.
func openServices(cfg *config.Config, logger *slog.Logger, serve bool) (*services, error) {
	reg := prom.NewRegistry()
	s := &services{
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		recorder:  metrics.NewPrometheusRecorder(reg),
		publisher: events.NoopPublisher{},
	}

	if cfg.History.Database != "" {
		store, err := history.NewSQLiteStore(cfg.History.Database)
		if err != nil {
			return nil, err
		}
		s.history = store
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Subject, logger)
		if err != nil {
			logger.Warn("Event publishing disabled", logfields.URL(cfg.Events.NATSURL), logfields.Error(err))
		} else {
			s.publisher = pub
		}
	}

	if cfg.Publish.Commit {
		s.committer = publish.NewCommitter(publish.Author{
			Name:  cfg.Publish.AuthorName,
			Email: cfg.Publish.AuthorEmail,
		}, logger)
	}

	if serve && cfg.Metrics.ListenAddr != "" {
		reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
		srv, err := daemon.StartMetricsServer(cfg.Metrics.ListenAddr, metrics.HTTPHandler(reg), logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.server = srv
	}
	return s, nil
}

// finishRun stores run in the history and refreshes the metrics textfile.
// Neither failure affects the command's outcome.
func (s *services) finishRun(ctx context.Context, run history.Run) {
	if s.history != nil {
		if err := s.history.Record(ctx, run); err != nil {
			s.logger.Warn("Failed to record run history", slog.String("run_id", run.ID), logfields.Error(err))
		}
	}
	if err := metrics.WriteTextfile(s.cfg.Metrics.Textfile, s.registry); err != nil {
		s.logger.Warn("Failed to write metrics textfile", logfields.Path(s.cfg.Metrics.Textfile), logfields.Error(err))
	}
}

// commit records the output directory in git when publishing is enabled.
func (s *services) commit(ctx context.Context, dir string, succeeded, failed int) error {
	if s.committer == nil || succeeded == 0 {
		return nil
	}
	_, err := s.committer.Commit(ctx, dir, publish.Message(succeeded, failed))
	return err
}

func (s *services) Close() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
		cancel()
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("Failed to close event publisher", logfields.Error(err))
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Warn("Failed to close history store", logfields.Error(err))
		}
	}
}
