package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"github.com/urfave/cli/v3"

	"carrental/internal/auth"
	"carrental/internal/config"
	"carrental/internal/events"
	"carrental/internal/repositories"
	"carrental/internal/seed"
	"carrental/internal/server"
	"carrental/pkg/rabbitmq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		grip.Error(message.WrapError(err, message.Fields{
			"message": "command failed",
		}))
		stop()
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:   "carrental",
		Usage:  "Car rental catalog API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create tables or indexes for the configured store",
				Action: migrate,
			},
			{
				Name:  "seed",
				Usage: "Insert sample brands, categories and cars into an empty catalog",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "fake",
						Usage: "additionally insert `N` generated cars",
					},
				},
				Action: seedCatalog,
			},
			{
				Name:  "issue-token",
				Usage: "Mint a bearer token for local auth mode",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.BoolFlag{Name: "admin", Usage: "set the admin claim"},
				},
				Action: issueToken,
			},
			{
				Name:   "watch-events",
				Usage:  "Consume and log catalog events",
				Action: watchEvents,
			},
		},
	}
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	repos, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		grip.Warning(message.WrapError(repos.Close(context.Background()), message.Fields{
			"message": "closing store",
		}))
	}()

	// admin routes stay closed when no identity provider can be built
	var verifier auth.Verifier
	if v, err := auth.FromConfig(cfg.Auth); err != nil {
		grip.Error(message.WrapError(err, message.Fields{
			"message": "identity provider unavailable, admin routes will reject requests",
			"mode":    cfg.Auth.Mode,
		}))
	} else {
		verifier = v
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return errors.Wrap(err, "connecting to rabbitmq")
		}
		defer mq.Close()
		publisher = events.NewAMQPPublisher(mq)
	}

	app := server.New(server.Deps{
		Config:    cfg,
		Repos:     repos,
		Verifier:  verifier,
		Publisher: publisher,
		AccessLog: true,
	})
	return server.Run(ctx, app, cfg.Addr())
}

// openStore connects the repositories for the configured driver.
func openStore(ctx context.Context, cfg *config.Config) (*repositories.Repositories, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		db, err := repositories.ConnectMongo(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return repositories.NewMongoRepositories(db), nil
	default:
		db, err := repositories.OpenGORM(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return repositories.NewGORMRepositories(db), nil
	}
}

func migrate(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Store.Driver == config.DriverMongo {
		db, err := repositories.ConnectMongo(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return err
		}
		defer db.Client().Disconnect(context.Background())
		return repositories.EnsureMongoIndexes(ctx, db)
	}

	db, err := repositories.OpenGORM(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return err
	}
	if err := repositories.Migrate(db); err != nil {
		return err
	}
	grip.Info(message.Fields{
		"message": "migration complete",
		"driver":  cfg.Store.Driver,
	})
	return nil
}

func seedCatalog(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	repos, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close(context.Background())

	seeder := seed.New(repos)
	if _, err := seeder.Sample(ctx); err != nil {
		return errors.Wrap(err, "seeding sample catalog")
	}
	if n := int(cmd.Int("fake")); n > 0 {
		if _, err := seeder.Fake(ctx, n); err != nil {
			return errors.Wrap(err, "seeding fake cars")
		}
	}
	return nil
}

func issueToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Auth.Mode != config.AuthModeLocal {
		return errors.Errorf("issue-token needs AUTH_MODE=%s, got %q", config.AuthModeLocal, cfg.Auth.Mode)
	}

	verifier, err := auth.NewLocalVerifier(cfg.Auth.LocalSecret, auth.DefaultLocalTokenTTL)
	if err != nil {
		return err
	}
	token, err := verifier.IssueToken(cmd.String("email"), cmd.Bool("admin"))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func watchEvents(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL must be set to watch events")
	}

	mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
	if err != nil {
		return errors.Wrap(err, "connecting to rabbitmq")
	}
	defer mq.Close()

	grip.Info(message.Fields{
		"message": "watching catalog events",
		"queue":   mq.Queue(),
	})
	return mq.Consume(ctx, func(d amqp.Delivery) error {
		e, err := events.Decode(d.Body)
		if err != nil {
			return err
		}
		grip.Info(message.Fields{
			"message": "catalog event",
			"type":    e.Type,
			"id":      e.ID,
			"at":      e.At,
			"fields":  e.Fields,
		})
		return nil
	})
}
