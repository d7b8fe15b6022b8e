package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/silovra/silovra-api/internal/analytics"
	"github.com/silovra/silovra-api/internal/auth"
	"github.com/silovra/silovra-api/internal/billing"
	"github.com/silovra/silovra-api/internal/config"
	"github.com/silovra/silovra-api/internal/database"
	"github.com/silovra/silovra-api/internal/logging"
	"github.com/silovra/silovra-api/internal/profiles"
	"github.com/silovra/silovra-api/internal/server"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "silovra-api",
		Short: "Silovra link-in-bio backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("gumroad-product", defaults.GetString("gumroad.product_permalink"), "Gumroad product permalink accepted by the webhook")
	cmd.PersistentFlags().String("session-issuer", defaults.GetString("session.issuer"), "Issuer expected on dashboard session tokens")
	cmd.PersistentFlags().String("session-cookie", defaults.GetString("session.cookie_name"), "Cookie name carrying the dashboard session")
	cmd.PersistentFlags().String("session-secret", "", "Session signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "gumroad.product_permalink", "gumroad-product")
	bindFlag(cmd, "session.issuer", "session-issuer")
	bindFlag(cmd, "session.cookie_name", "session-cookie")
	bindFlag(cmd, "session.signing_secret", "session-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	resolver, err := profiles.NewResolver(profiles.ResolverConfig{
		Database: db,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ingestor, err := analytics.NewIngestor(analytics.IngestorConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: analytics.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	reconciler, err := billing.NewReconciler(billing.ReconcilerConfig{
		Database:         db,
		ProductPermalink: appConfig.ProductPermalink,
		Clock:            time.Now,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	sessionValidator, err := auth.NewSessionValidator(auth.SessionValidatorConfig{
		SigningSecret: []byte(appConfig.SessionSecret),
		Issuer:        appConfig.SessionIssuer,
		CookieName:    appConfig.SessionCookie,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Resolver:   resolver,
		Ingestor:   ingestor,
		Reconciler: reconciler,
		Sessions:   sessionValidator,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Let handed-off analytics writes land before the DB closes.
		if err := ingestor.Drain(shutdownCtx); err != nil {
			logger.Warn("analytics drain timed out", zap.Error(err))
		}
		return nil
	case err := <-errCh:
		return err
	}
}
