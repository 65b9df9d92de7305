package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"bdintel-engine/internal/events"
	"bdintel-engine/internal/httpapi"
	"bdintel-engine/internal/pipeline"
	"bdintel-engine/internal/scheduler"
	"bdintel-engine/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		dict  string
		inbox string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve analysis results over HTTP and rescan the inbox on a timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()

			d, err := loadDictionary(dict, log)
			if err != nil {
				return err
			}

			db, err := store.Open(filepath.Join(dir, "bdintel.db"))
			if err != nil {
				return err
			}
			defer db.Close()

			hub := events.NewHub()
			runner := pipeline.Runner{
				Engine:  pipeline.Engine{Cfg: cfg, Dict: d, Log: log},
				DB:      db,
				Hub:     hub,
				DataDir: dir,
				OutDir:  dir,
			}

			jobsPath := inbox
			if jobsPath == "" {
				jobsPath = cfg.Serve.InboxDir
			}
			if jobsPath == "" {
				jobsPath = filepath.Join(dir, "normalized_jobs.json")
			}

			runAnalysis := func(ctx context.Context) (pipeline.Result, error) {
				return runner.AnalyzeFile(ctx, jobsPath)
			}

			var status atomic.Value
			status.Store(httpapi.AnalysisStatus{})

			mux := httpapi.NewMux(httpapi.Deps{
				DB:             db,
				Hub:            hub,
				AnalysisStatus: &status,
				RunAnalysis:    runAnalysis,
				AnalyzeLimiter: rate.NewLimiter(rate.Limit(cfg.Serve.AnalyzePerMinute/60.0), cfg.Serve.AnalyzeBurst),
			})

			ctx := cmd.Context()
			go scheduler.Every(ctx, time.Duration(cfg.Serve.RescanSeconds)*time.Second, "rescan", log, func(tctx context.Context) error {
				_, err := runAnalysis(tctx)
				return err
			})

			addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			log.Infof("[serve] listening on http://%s (jobs=%s)", addr, jobsPath)

			srv := &http.Server{
				Handler: httpapi.Chain(mux,
					httpapi.RequestID,
					httpapi.Recover(log),
					httpapi.AccessLog(log),
					httpapi.Cors,
				),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return srv.Serve(ln)
		},
	}

	cmd.Flags().StringVarP(&dict, "dictionary", "d", "config/programs.json", "program dictionary JSON")
	cmd.Flags().StringVar(&inbox, "jobs", "", "normalized jobs file to rescan (default <data-dir>/normalized_jobs.json)")
	return cmd
}
