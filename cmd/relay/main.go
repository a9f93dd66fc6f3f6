package main

import (
	"context"
	"log/slog"
	"os"

	"pushrelay/config"
	"pushrelay/internal/delivery"
	"pushrelay/internal/delivery/api"
	"pushrelay/internal/delivery/api/router/handler"
	"pushrelay/internal/delivery/sweeper"
	"pushrelay/internal/domain/constants"
	"pushrelay/internal/domain/repository"
	logs "pushrelay/internal/infra/log"
	"pushrelay/internal/infra/persistence/badger"
	"pushrelay/internal/infra/persistence/postgres"
	"pushrelay/internal/infra/qrcode"
	"pushrelay/internal/infra/webpush"
	"pushrelay/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

type storageParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

type repositories struct {
	fx.Out

	SubscriptionRepo repository.SubscriptionRepository
	MessageRepo      repository.MessageRepository
}

// newRepositories opens the configured backend and hands out its repositories
func newRepositories(params storageParams) (repositories, error) {
	if params.Config.Storage.Driver == constants.StorageDriverPostgres {
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return repositories{}, err
		}

		return repositories{
			SubscriptionRepo: postgres.NewSubscriptionRepository(db),
			MessageRepo:      postgres.NewMessageRepository(db),
		}, nil
	}

	store, err := badger.New(badger.Params{
		Lifecycle: params.Lifecycle,
		Config:    params.Config,
		Logger:    params.Logger,
	})
	if err != nil {
		return repositories{}, err
	}

	return repositories{
		SubscriptionRepo: badger.NewSubscriptionRepository(store),
		MessageRepo:      badger.NewMessageRepository(store),
	}, nil
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newRepositories,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			webpush.New,
			qrcode.New,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSubscriptionService,
			impl.NewMessageService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewRelayHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				sweeper.New,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startServer launches every delivery once the stores have started
func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						slog.Error("Failed to start server", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
