package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/revampbot/revampbot/internal/api"
	"github.com/revampbot/revampbot/internal/config"
	"github.com/revampbot/revampbot/internal/discord"
	"github.com/revampbot/revampbot/internal/leveling"
	"github.com/revampbot/revampbot/internal/logging"
	"github.com/revampbot/revampbot/internal/storage"
)

type app struct {
	ctx    context.Context
	cancel context.CancelFunc

	log    *logging.Logger
	logger *zap.Logger

	config *config.Config

	storage *storage.Storage
	tracker *leveling.Tracker
	discord *discord.Discord
	api     *api.API
}

func newApp(ctx context.Context, log *logging.Logger) (*app, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &app{ctx: ctx, cancel: cancel, log: log, logger: log.Logger}
	var err error

	a.logger.Debug("Loading configuration.")
	a.config, err = config.Read()
	if err != nil {
		return nil, fmt.Errorf("couldn't load configuration: %w", err)
	}

	a.logger.Debug("Successfully loaded configuration (also switching log level and file.)")
	log.Level.SetLevel(a.config.Logging.Level)
	log.SetFile(a.config.Logging.File)
	a.logger = log.Logger

	a.logger.Debug("Initializing Storage struct.")
	a.storage = storage.NewStorage(a.logger)

	a.tracker = leveling.NewTracker(a.logger, a.storage, leveling.Config{
		MaxXPPerMessage: a.config.XP.MaxPerMessage,
		Cooldown:        a.config.XP.Cooldown,
	})

	a.logger.Debug("Initializing Discord struct.")
	dc := discord.NewConfig(a.config.Bot.Prefix, a.config.XP.IgnoreChannels, a.config.XP.IgnoreRegexp)
	a.discord, err = discord.NewDiscord(ctx, a.logger, a.config.Discord.Token, dc, a.storage, a.tracker)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize Discord struct: %w", err)
	}

	if a.config.Api.Port != 0 {
		a.logger.Debug("Initializing API struct.")
		a.api = api.NewAPI(ctx, a.logger.Sugar(), a.storage, api.NewConfig(a.config.Api.Port))
	}

	return a, nil
}

func (a *app) Run() error {
	a.logger.Sugar().Debugf("Opening SQLite storage at %s.", a.config.Storage.Path)
	if err := a.storage.Connect(a.config.Storage.Path); err != nil {
		return fmt.Errorf("couldn't connect to storage: %w", err)
	}
	defer func() {
		a.logger.Debug("Closing SQLite storage.")
		if err := a.storage.Close(); err != nil {
			a.logger.Sugar().Errorf("Couldn't close storage: %s.", err)
		}
		a.logger.Debug("Closed SQLite storage.")
	}()
	if err := a.storage.InitSchema(a.ctx); err != nil {
		return fmt.Errorf("couldn't initialize storage schema: %w", err)
	}
	a.logger.Debug("Successfully opened SQLite storage.")

	if a.api != nil {
		a.api.Listen()
		defer func() {
			if err := a.api.Close(); err != nil {
				a.logger.Sugar().Errorf("Couldn't close API server: %s.", err)
			}
		}()
	}

	a.logger.Debug("Connecting to Discord API gateway.")
	if err := a.discord.Connect(); err != nil {
		return fmt.Errorf("couldn't connect to Discord: %w", err)
	}
	defer func() {
		a.logger.Debug("Closing connection with Discord API gateway.")
		// the maintenance loop only stops once the context is done
		a.cancel()
		if err := a.discord.Close(); err != nil {
			a.logger.Sugar().Errorf("Couldn't close Discord: %s.", err)
		}
		a.logger.Debug("Closed connection with Discord API gateway.")
	}()
	a.logger.Debug("Successfully connected to Discord API gateway.")

	a.logger.Info("Launch complete. Send SIGINT to gracefully terminate.")
	<-a.ctx.Done()
	a.logger.Info("Termination signal received, shutting down.")

	return a.ctx.Err()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// the file sink is attached once the configuration has been read
	log := logging.New("")
	defer log.Close()

	log.Info("Initializing application.")
	a, err := newApp(ctx, log)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Sugar().Errorf("Couldn't initialize application: %s.", err)
			_ = log.Close()
			os.Exit(1)
		}

		return
	}

	log.Debug("Initialization tasks complete, continuing with launch.")
	if err := a.Run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Sugar().Errorf("Application crashed: %s.", err)
			_ = log.Close()
			os.Exit(1)
		}
	}
}
