package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/syncodes/financial-news-aggregator/internal/config"
	"github.com/syncodes/financial-news-aggregator/internal/pipeline"
	"github.com/syncodes/financial-news-aggregator/internal/server"
	"github.com/syncodes/financial-news-aggregator/internal/store"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "finnews",
	Short:   "Financial news aggregation with sentiment analysis",
	Long:    "finnews collects financial news from REST APIs and RSS feeds, scores each article for sentiment, and serves the results over a JSON API.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pruneCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("finnews", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/finnews/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, API key variables, and the store.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		articles, err := st.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("reading store: %w", err)
		}

		counts := map[string]int{}
		sources := map[string]int{}
		for _, a := range articles {
			if a.Sentiment != nil {
				counts[a.Sentiment.Label]++
			}
			if a.Source.Name != "" {
				sources[a.Source.Name]++
			}
		}

		fmt.Printf("Backend: %s\n\n", st.Backend())
		fmt.Println("Articles:")
		fmt.Printf("  Total stored: %d\n", len(articles))
		fmt.Printf("  Positive: %d\n", counts["positive"])
		fmt.Printf("  Neutral: %d\n", counts["neutral"])
		fmt.Printf("  Negative: %d\n", counts["negative"])

		if len(sources) > 0 {
			fmt.Println("\nArticles by source:")
			names := make([]string, 0, len(sources))
			for name := range sources {
				names = append(names, name)
			}
			sort.Slice(names, func(i, j int) bool { return sources[names[i]] > sources[names[j]] })
			for _, name := range names {
				fmt.Printf("  %s: %d\n", name, sources[name])
			}
		}
		return nil
	},
}

// --- fetch command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one ingestion cycle: collect, score, persist",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		pipe, err := pipeline.New(cfg, st)
		if err != nil {
			return fmt.Errorf("building pipeline: %w", err)
		}

		fmt.Println("Collecting articles from sources...")
		result := pipe.Run(ctx)

		fmt.Println("\nCycle complete:")
		fmt.Printf("  Unique articles: %d\n", result.Fetched)
		fmt.Printf("  Scored here: %d\n", result.Scored)
		fmt.Printf("  Saved: %d\n", result.Saved)
		fmt.Printf("  Failed: %d\n", result.Failed)
		return nil
	},
}

// --- serve command ---

var (
	servePort int
	noIngest  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and the periodic ingestion loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		if !noIngest {
			pipe, err := pipeline.New(cfg, st)
			if err != nil {
				return fmt.Errorf("building pipeline: %w", err)
			}
			go runIngestLoop(pipe, cfg.UpdateInterval())
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(st, port, cacheTTL)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
	serveCmd.Flags().BoolVar(&noIngest, "no-ingest", false, "Serve stored articles without periodic ingestion")
}

// runIngestLoop runs one cycle immediately, then one per interval. Cycles
// run on this single goroutine, so they never overlap.
func runIngestLoop(pipe *pipeline.Pipeline, interval time.Duration) {
	runCycle := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		pipe.Run(ctx)
	}

	runCycle()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		runCycle()
	}
}

// --- prune command ---

var pruneDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete articles older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close(ctx)

		days := pruneDays
		if days == 0 {
			days = cfg.Ingest.RetentionDays
		}
		if days <= 0 {
			days = 30
		}

		removed, err := st.DeleteOlderThan(ctx, days)
		if err != nil {
			return fmt.Errorf("pruning store: %w", err)
		}
		fmt.Printf("Removed %d articles older than %d days\n", removed, days)
		return nil
	},
}

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", 0, "Retention window in days (overrides config)")
}

func openStore(ctx context.Context) (*store.Store, error) {
	return store.New(ctx, store.Config{
		MongoURI:   cfg.MongoURI(),
		Database:   cfg.Store.Database,
		Collection: cfg.Store.Collection,
		DataDir:    cfg.GetDataDir(),
	})
}
