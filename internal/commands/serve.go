package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/moneytag/moneytag/internal/config"
	"github.com/moneytag/moneytag/internal/consumer"
	"github.com/moneytag/moneytag/internal/handler"
	"github.com/moneytag/moneytag/internal/repository"
	"github.com/moneytag/moneytag/internal/service"
)

var errMissingCredentials = errors.New("database credentials are required: pass --user-db and --secret-db or set DB_USER and DB_SECRET")

func newServeCommand() *cobra.Command {
	var userDB, secretDB string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if userDB != "" {
				cfg.Mongo.User, cfg.Postgres.User = userDB, userDB
			}
			if secretDB != "" {
				cfg.Mongo.Secret, cfg.Postgres.Secret = secretDB, secretDB
			}
			if err = initLogging(cfg); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&userDB, "user-db", "u", "", "database username (DB_USER)")
	cmd.Flags().StringVarP(&secretDB, "secret-db", "s", "", "database secret (DB_SECRET)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, os.Interrupt)
	defer stop()

	repo, closeRepo, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	recorder := service.NewRecorder(repo)
	reporter := service.NewReporter(repo)

	logrus.Info("configuring router")
	router, err := handler.NewRouter(handler.NewHandler(recorder), cfg.Owner, cfg.HTTP.AssetsDir)
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}

	if cfg.Telegram.Token != "" {
		if err = startTelegram(ctx, cfg, recorder, reporter); err != nil {
			return err
		}
	}

	logrus.Infof("setting up listener on %s", cfg.HTTP.Addr)
	lis, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.HTTP.Addr, err)
	}
	srv := &http.Server{Handler: router}

	serveErr := make(chan error, 1)
	go func() {
		logrus.Infof("starting server on %s", lis.Addr())
		serveErr <- srv.Serve(lis)
	}()

	select {
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config) (repository.Records, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logrus.Warn("using in-memory storage, records are lost on restart")
		return repository.NewLocalStorage(), func() {}, nil
	case config.StoragePostgres:
		if cfg.Postgres.User == "" || cfg.Postgres.Secret == "" {
			return nil, nil, errMissingCredentials
		}
		pool, err := repository.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err = repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgres(pool), pool.Close, nil
	default:
		if cfg.Mongo.User == "" || cfg.Mongo.Secret == "" {
			return nil, nil, errMissingCredentials
		}
		cli, err := repository.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMongo(cli, cfg.Mongo.Database), func() {
			if err := cli.Disconnect(context.Background()); err != nil {
				logrus.Errorf("mongo couldn't Disconnect: %v", err)
			}
		}, nil
	}
}

func startTelegram(ctx context.Context, cfg *config.Config, recorder *service.Recorder, reporter *service.Reporter) error {
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("creating telegram bot: %w", err)
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.Telegram.Timeout
	updates := bot.GetUpdatesChan(u)

	go consumer.NewTelegram(bot, updates, cfg.Owner, recorder, reporter).Consume(ctx)
	go func() {
		<-ctx.Done()
		bot.StopReceivingUpdates()
	}()
	logrus.Infof("telegram bot %s started", bot.Self.UserName)
	return nil
}
