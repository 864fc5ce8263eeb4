package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mkrupp/clickcard/internal/infra/config"
	"github.com/mkrupp/clickcard/internal/infra/logging"
	"github.com/mkrupp/clickcard/internal/infra/transport/http"
	"github.com/mkrupp/clickcard/internal/repo/asset"
	"github.com/mkrupp/clickcard/internal/repo/card"
	"github.com/mkrupp/clickcard/internal/svc/cardsvc"
)

const (
	appName = "clickcard"
	svcName = "cardsvc"
)

type Config struct {
	config.EnvConfig

	Log      logging.LoggerConfig        `envPrefix:"LOG_"`
	Card     cardsvc.CardConfig          `envPrefix:"CARD_"`
	Preview  cardsvc.PreviewConfig       `envPrefix:"PREVIEW_"`
	CardHTTP cardsvc.HTTPTransportConfig `envPrefix:"HTTP_"`
	DB       card.RepositoryConfig       `envPrefix:"DB_"`
	Asset    asset.FileSystemStoreConfig `envPrefix:"ASSET_"`
}

// Validate implements config.Validator.
func (cfg Config) Validate() error {
	//nolint:wrapcheck
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Card),
		validation.Field(&cfg.Preview),
		validation.Field(&cfg.DB),
		validation.Field(&cfg.Asset),
	)
}

func main() {
	var (
		cfg Config

		configPrefix = strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, svcName}, "."))
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadEnvFiles(".env"); err != nil {
		panic(err)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		panic(err)
	}

	logging.Configure(ctx, cfg.Log, loggerName)

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.cardsvc")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	repoFactory, err := card.NewRepositoryFactory(cfg.DB)
	if err != nil {
		return fmt.Errorf("card repository: %w", err)
	}

	storeFactory := asset.FileSystemStoreFactory(cfg.Asset)

	transcoder, err := cardsvc.NewImageTranscoder(cfg.Card)
	if err != nil {
		return fmt.Errorf("new image transcoder: %w", err)
	}

	cardSvc, err := cardsvc.NewRepoCardService(ctx, repoFactory, storeFactory, transcoder, cfg.Card)
	if err != nil {
		return fmt.Errorf("new card service: %w", err)
	}

	defer func() {
		err = errors.Join(err, cardSvc.Close())
	}()

	assetServer, err := cardsvc.NewAssetServer(ctx, storeFactory)
	if err != nil {
		return fmt.Errorf("new asset server: %w", err)
	}

	httpTransport := cardsvc.NewHTTPTransport(
		cardSvc,
		assetServer,
		cardsvc.NewPreviewRenderer(cfg.Preview),
		cfg.CardHTTP,
	)

	log.InfoContext(ctx, "starting", logging.Group("config",
		"db", cfg.DB.Driver,
		"assets", cfg.Asset.Basedir,
		"base_url", cfg.Preview.BaseURL,
	))

	if err := http.ListenAndServe(ctx, httpTransport, cfg.CardHTTP.HTTPTransportConfig); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
