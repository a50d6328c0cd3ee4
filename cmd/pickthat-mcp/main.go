package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/agile-geoscience/pickthat/internal/api"
	"github.com/agile-geoscience/pickthat/internal/heatmap"
	"github.com/agile-geoscience/pickthat/internal/server"
	"github.com/agile-geoscience/pickthat/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// config is read from the environment.
type config struct {
	Debug   bool
	APIURL  string
	CacheDB string
	Retries int
}

func loadConfig() config {
	cfg := config{
		Debug:   os.Getenv("PICKTHAT_LOG_LEVEL") == "debug",
		APIURL:  os.Getenv("PICKTHAT_API_URL"),
		CacheDB: os.Getenv("PICKTHAT_CACHE_DB"),
		Retries: 3,
	}
	if v := os.Getenv("PICKTHAT_HTTP_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("Ignoring invalid PICKTHAT_HTTP_RETRIES=%q", v)
		} else {
			cfg.Retries = n
		}
	}
	return cfg
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and returns the process exit code. Errors
// are logged and reported as 1 so that deferred cleanup, such as closing
// the cache database, still runs.
func run(args []string) int {
	// Handle --version and -v flags
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("pickthat-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printHelp()
			return 0
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := loadConfig()
	if cfg.Debug {
		log.Printf("Pickthat MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := api.New(api.Options{BaseURL: cfg.APIURL, Retries: cfg.Retries})
	if err != nil {
		log.Printf("Client error: %v", err)
		return 1
	}

	cache, closeCache, err := openCache(cfg.CacheDB)
	if err != nil {
		log.Printf("Cache error: %v", err)
		return 1
	}
	defer closeCache()

	if len(args) > 0 && args[0] == "render" {
		if err := runRender(ctx, client, cache, cfg, args[1:]); err != nil {
			log.Printf("Render error: %v", err)
			return 1
		}
		return 0
	}

	srv := server.New(server.Options{
		Client:  client,
		Cache:   cache,
		Version: Version,
		Debug:   cfg.Debug,
	})
	if err := srv.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		return 1
	}
	return 0
}

func printHelp() {
	fmt.Println("pickthat-mcp - MCP server for Pick This heatmaps")
	fmt.Println()
	fmt.Println("Usage: pickthat-mcp [options]")
	fmt.Println("       pickthat-mcp render -image ID [-cohort NAME] [-out FILE]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PICKTHAT_LOG_LEVEL=debug     Enable debug logging")
	fmt.Println("  PICKTHAT_API_URL=URL         Pick This service (default " + api.DefaultURL + ")")
	fmt.Println("  PICKTHAT_CACHE_DB=PATH       SQLite heatmap cache (default in-memory)")
	fmt.Println("  PICKTHAT_HTTP_RETRIES=N      Retries for transient HTTP failures (default 3)")
	fmt.Println()
	fmt.Println("Without a subcommand the server speaks MCP over stdin/stdout.")
}

func openCache(path string) (store.LayerCache, func(), error) {
	if path == "" {
		return store.NewMemoryCache(), func() {}, nil
	}
	c, err := store.OpenSQLiteCache(path)
	if err != nil {
		return nil, nil, err
	}
	return c, func() {
		if err := c.Close(); err != nil {
			log.Printf("Failed to close cache: %v", err)
		}
	}, nil
}

// runRender writes one composite heatmap to a PNG file.
func runRender(ctx context.Context, client *api.Client, cache store.LayerCache, cfg config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	imageID := fs.String("image", "", "image id on the Pick This service")
	cohort := fs.String("cohort", "", "only include picks from this cohort")
	out := fs.String("out", "heatmap.png", "output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imageID == "" {
		return api.ErrImageIDRequired
	}

	rec, err := client.Image(ctx, *imageID)
	if err != nil {
		return err
	}
	spec, err := rec.Spec()
	if err != nil {
		return err
	}
	raw, err := client.Picks(ctx, *imageID)
	if err != nil {
		return err
	}
	picks := make([]heatmap.Pick, 0, len(raw))
	for _, r := range raw {
		p, err := r.HeatmapPick()
		if err != nil {
			log.Printf("Skipping pick: %v", err)
			continue
		}
		picks = append(picks, p)
	}

	compositor := heatmap.NewCompositor(cache)
	compositor.Debug = cfg.Debug
	res, err := compositor.Heatmap(ctx, *imageID, spec, picks, *cohort)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, res.PNG, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	log.Printf("Wrote %s (%d layers, %d skipped)", *out, res.Layers, len(res.Skipped))
	return nil
}
