package main

import (
	"log/slog"
	"strings"
	"sync"

	"radioscribe/internal/catalog"
	"radioscribe/internal/config"
	"radioscribe/internal/download"
	"radioscribe/internal/ingest"
	"radioscribe/internal/logging"
	"radioscribe/internal/services/getiplayer"
	"radioscribe/internal/services/whisper"
	"radioscribe/internal/transcribe"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the catalog for one command invocation and closes it on
// return.
func (c *commandContext) withStore(fn func(*config.Config, *catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func (c *commandContext) logger(cfg *config.Config) *slog.Logger {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func (c *commandContext) fetchClient(cfg *config.Config) *getiplayer.Client {
	return getiplayer.New(cfg.Fetch)
}

func (c *commandContext) refresher(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *ingest.Refresher {
	ingestor := ingest.NewIngestor(store, logger)
	return ingest.NewRefresher(c.fetchClient(cfg), ingestor, store, cfg, logger)
}

func (c *commandContext) scheduler(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *download.Scheduler {
	return download.NewScheduler(store, c.fetchClient(cfg), cfg, logger)
}

func (c *commandContext) poller(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *transcribe.Poller {
	return transcribe.NewPoller(store, whisper.New(cfg.Transcription), cfg, logger)
}
