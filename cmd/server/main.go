package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meur/civatlas/internal/api"
	"github.com/meur/civatlas/internal/catalog"
	"github.com/meur/civatlas/internal/config"
	"github.com/meur/civatlas/internal/logging"
	"github.com/meur/civatlas/internal/session"
	"github.com/meur/civatlas/internal/storage"
	"github.com/meur/civatlas/internal/viewsync"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	v       = config.New()
	logger  *zap.Logger
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "civatlas",
	Short: "Serve the Civ Atlas catalog API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Dev)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	flags.String("port", "", "Server port")
	flags.String("db", "", "SQLite database path")
	flags.String("data", "", "Dataset directory")
	flags.String("source", "", "Dataset source (sqlite|files)")
	flags.String("static", "", "Frontend directory to serve")
	flags.String("log-level", "", "Log level")
	flags.Bool("dev", false, "Human-readable logs")

	for key, name := range map[string]string{
		"server.port":       "port",
		"database.path":     "db",
		"datasets.dir":      "data",
		"datasets.source":   "source",
		"server.static_dir": "static",
		"log.level":         "log-level",
		"log.dev":           "dev",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	table, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	source, closeSource, err := openSource(table)
	if err != nil {
		return err
	}
	defer closeSource()

	registry := session.NewRegistry(source, table, cfg.Sessions.TTL, logger.Named("sessions"))
	go registry.Run(ctx)

	srv := api.New(source, registry, logger.Named("api"), api.Options{AllowedOrigins: cfg.Server.AllowedOrigins})
	if cfg.Server.StaticDir != "" {
		FileServer(srv.Router(), "/", http.Dir(cfg.Server.StaticDir))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("civatlas API starting",
			zap.String("addr", "http://localhost:"+cfg.Server.Port),
			zap.String("source", cfg.Datasets.Source))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openSource(table *catalog.Table) (viewsync.Source, func(), error) {
	switch cfg.Datasets.Source {
	case config.SourceFiles:
		validator, err := catalog.NewValidator()
		if err != nil {
			return nil, nil, fmt.Errorf("compile dataset schema: %w", err)
		}
		logger.Info("reading datasets from files", zap.String("dir", cfg.Datasets.Dir))
		return storage.NewFileSource(cfg.Datasets.Dir, table, validator), func() {}, nil
	default:
		store, err := storage.New(cfg.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize storage: %w", err)
		}
		logger.Info("reading datasets from sqlite", zap.String("db", cfg.Database.Path))
		return store, func() { store.Close() }, nil
	}
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
