package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/jmcleod/gatehouse/account"
	"github.com/jmcleod/gatehouse/api"
	"github.com/jmcleod/gatehouse/internal/secrets"
	"github.com/jmcleod/gatehouse/internal/util"
	"github.com/jmcleod/gatehouse/storage"
	bboltstorage "github.com/jmcleod/gatehouse/storage/bbolt"
	"github.com/jmcleod/gatehouse/storage/memory"
	"github.com/jmcleod/gatehouse/storage/postgres"
)

var (
	port        int
	backend     string
	dataDir     string
	postgresDSN string
	tlsCert     string
	tlsKey      string
)

// Environment variables holding process secrets. Secrets never travel
// through flags so they stay out of shell history and process listings.
const (
	envPepper      = "GATEHOUSE_PEPPER"
	envSigningKey  = "GATEHOUSE_SIGNING_KEY"
	envPostgresDSN = "GATEHOUSE_POSTGRES_DSN"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the account service server",
	RunE: func(cmd *cobra.Command, args []string) error {
		pepper, err := secrets.New(os.Getenv(envPepper))
		if err != nil {
			return fmt.Errorf("%s must be set: %w", envPepper, err)
		}
		signingKey, err := secrets.New(os.Getenv(envSigningKey))
		if err != nil {
			return fmt.Errorf("%s must be set: %w", envSigningKey, err)
		}

		ctx := cmd.Context()

		store, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		svc := account.NewService(store,
			account.NewHasher(pepper),
			account.NewTokenService(signingKey, 0),
		)
		a := api.New(svc)

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		var tlsConfig *tls.Config
		if tlsCert != "" && tlsKey != "" {
			cert, err := tls.LoadX509KeyPair(tlsCert, tlsKey)
			if err != nil {
				return fmt.Errorf("failed to load TLS key pair: %w", err)
			}
			tlsConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
		} else {
			cert, err := util.GenerateSelfSignedCert()
			if err != nil {
				return fmt.Errorf("failed to generate self-signed certificate: %w", err)
			}
			tlsConfig = &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			}
			fmt.Println("Using self-signed runtime generated certificate for TLS")
		}

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			TLSConfig:         tlsConfig,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d (backend: %s)...\n", port, backend)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// openStore builds the configured storage backend. The returned closer is
// always safe to call.
func openStore(ctx context.Context) (storage.Repository, func(), error) {
	switch backend {
	case "bbolt":
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := bboltstorage.NewRepositoryFromFile(dataDir+"/accounts.db", nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open account storage: %w", err)
		}
		return store, func() { store.Close() }, nil

	case "postgres":
		dsn := postgresDSN
		if dsn == "" {
			dsn = os.Getenv(envPostgresDSN)
		}
		if dsn == "" {
			return nil, nil, fmt.Errorf("postgres backend requires --postgres-dsn or %s", envPostgresDSN)
		}
		store, err := postgres.NewRepositoryFromDSN(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		return store, store.Close, nil

	case "memory":
		// Volatile; accounts vanish on restart. Useful for local testing.
		return memory.NewRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want bbolt, postgres or memory)", backend)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8443, "Port to listen on")
	serverCmd.Flags().StringVar(&backend, "backend", "bbolt", "Storage backend (bbolt, postgres or memory)")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data (bbolt backend)")
	serverCmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "PostgreSQL DSN (postgres backend)")
	serverCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
}
