package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/checkout"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/config"
	orderControllers "github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/controllers/order"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/gateway"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/logger"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/routes"
	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/store"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(opts *options) *cobra.Command {
	var fixtures string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the checkout and order API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}
			log := logger.New(logger.Options{
				Service:   "storefront",
				Env:       cfg.AppEnv,
				Level:     cfg.LogLevel,
				AddSource: true,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, fixtures, log)
		},
	}
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "Seed users and products from this YAML file before serving")
	return cmd
}

type app struct {
	store store.Store
	hub   *orderControllers.Hub
	http  *http.Server
}

// build wires the store, gateway, checkout service and router.
func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	s, err := store.Open(ctx, store.Config{
		Driver:        cfg.Store.Driver,
		MongoURI:      cfg.Store.MongoURI,
		MongoDatabase: cfg.Store.MongoDatabase,
		PostgresDSN:   cfg.Store.PostgresDSN,
		Timeout:       cfg.Store.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	gw, err := gateway.New(gateway.BraintreeConfig{
		Environment: cfg.Braintree.Environment,
		MerchantID:  cfg.Braintree.MerchantID,
		PublicKey:   cfg.Braintree.PublicKey,
		PrivateKey:  cfg.Braintree.PrivateKey,
	}, cfg.Gateway.Timeout)
	if err != nil {
		_ = s.Close(context.Background())
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	hub := orderControllers.NewHub(log)
	svc := checkout.NewService(gw, s, checkout.Config{
		PersistAttempts: cfg.Order.PersistAttempts,
		RetryDelay:      cfg.Order.RetryDelay,
		Notifier:        hub,
	}, log)

	policy := models.TransitionPolicy(models.AnyTransition)
	if cfg.Order.StrictTransitions {
		policy = models.StrictTransitions
	}

	if cfg.AppEnv == "prod" || cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(routes.Deps{
		Store:       s,
		Checkout:    svc,
		Hub:         hub,
		Policy:      policy,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	return &app{
		store: s,
		hub:   hub,
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Leaves room for the gateway call inside a payment request.
			WriteTimeout: cfg.Gateway.Timeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

func serve(ctx context.Context, cfg config.Config, fixtures string, log *slog.Logger) error {
	a, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.store.Close(context.Background()); err != nil {
			log.Error("close store", slog.Any("err", err))
		}
	}()

	if fixtures != "" {
		f, err := LoadFixtures(fixtures)
		if err != nil {
			return err
		}
		res, err := Seed(ctx, a.store, f)
		if err != nil {
			return err
		}
		log.Info("fixtures loaded", slog.Int("users", res.Users), slog.Int("products", res.Products), slog.Int("skipped", res.Skipped))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", a.http.Addr), slog.String("store", cfg.Store.Driver))
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.hub.Close()
		if err := a.http.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}
		return nil
	})

	err = g.Wait()
	log.Info("bye")
	return err
}
