package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"newshub/adapter/postgres"
	"newshub/adapter/redisq"
	"newshub/adapter/rss"
	"newshub/app"
	clicontrol "newshub/cli/control"
	"newshub/internal/config"
	"newshub/internal/control"
	"newshub/internal/logger"
	"newshub/internal/probe"
	"newshub/internal/seed"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	commands := map[string]func([]string) error{
		"run":          cmdRun,
		"serve":        cmdServe,
		"trigger":      cmdTrigger,
		"add":          cmdAdd,
		"import":       cmdImport,
		"list":         cmdList,
		"delete":       cmdDelete,
		"articles":     cmdArticles,
		"set-interval": cmdSetInterval,
		"set-workers":  cmdSetWorkers,
	}

	switch cmd {
	case "--help", "-h", "help":
		printHelp()
		return
	default:
		fn, ok := commands[cmd]
		if !ok {
			fmt.Printf("unknown command: %s\n\n", cmd)
			printHelp()
			os.Exit(1)
		}
		if err := fn(args); err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
	}
}

func printHelp() {
	fmt.Print(`Usage:
  newshub COMMAND [OPTIONS]

Common Commands:
   add             register a news source (--url, optional --name)
   import          register sources from a YAML file (--file)
   list            list registered sources
   delete          delete a source (--name)
   articles        show latest articles of a source (--source, --num)
   run             ingest all sources once and print the report
   serve           start the background ingestion service
   trigger         ask a running service to ingest now
   set-interval    set the background ingestion interval
   set-workers     set the number of ingestion workers
`)
}

func buildPipeline(cfg config.Config, repo *postgres.Repository, lg *logger.Logger) (*app.Pipeline, func()) {
	fetcher := rss.NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent)
	pipeline := app.NewPipeline(repo, repo, fetcher, lg).
		WithThrottle(app.NewThrottle(cfg.SourceThrottle))
	cleanup := func() {}
	if cfg.RedisAddr != "" {
		queue := redisq.New(cfg.RedisAddr, cfg.QueueKey)
		pipeline.WithNotifier(queue)
		cleanup = func() { _ = queue.Close() }
	}
	return pipeline, cleanup
}

func cmdRun(args []string) error {
	cfg := config.Load()
	lg := logger.New(cfg.LogLevel)

	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		return fmt.Errorf("db ensure failed: %w", err)
	}

	pipeline, cleanup := buildPipeline(cfg, repo, lg)
	defer cleanup()

	report := pipeline.Run(context.Background())
	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
	if !report.Success {
		return errors.New(report.Message)
	}
	return nil
}

func cmdServe(args []string) error {
	cfg := config.Load()
	lg := logger.New(cfg.LogLevel)

	listener, err := control.TryListen(cfg.ControlAddr)
	if err != nil {
		if errors.Is(err, control.ErrAlreadyRunning) {
			fmt.Println("Background process is already running")
			return err
		}
		return err
	}
	defer listener.Close()

	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		return fmt.Errorf("db ensure failed: %w", err)
	}

	pipeline, cleanup := buildPipeline(cfg, repo, lg)
	defer cleanup()

	svc := app.NewIngestService(pipeline, repo, cfg.DefaultInterval, cfg.DefaultWorkers, lg)
	ctrl := control.NewServer(pipeline, svc)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		_ = http.Serve(listener, ctrl)
	}()

	if err := svc.Start(ctx); err != nil {
		return err
	}

	fmt.Printf("The background ingestion service has started (interval = %s, workers = %d)\n", cfg.DefaultInterval.String(), cfg.DefaultWorkers)

	<-ctx.Done()
	_ = svc.Stop()
	fmt.Println("Graceful shutdown: ingestion service stopped")
	return nil
}

func cmdTrigger(args []string) error {
	c := clicontrol.NewClient(config.Load().ControlAddr)
	report, err := c.Trigger()
	if err != nil {
		return err
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
	return nil
}

func cmdAdd(args []string) error {
	fset := flag.NewFlagSet("add", flag.ContinueOnError)
	var name string
	var url string
	var doProbe bool
	fset.StringVar(&name, "name", "", "source display name (defaults to the feed title)")
	fset.StringVar(&url, "url", "", "feed URL")
	fset.BoolVar(&doProbe, "probe", true, "validate the feed before registering")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("--url is required")
	}
	if doProbe {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		title, err := probe.Check(ctx, url)
		if err != nil {
			return err
		}
		if strings.TrimSpace(name) == "" {
			name = title
		}
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("--name is required when the feed reports no title")
	}

	cfg := config.Load()
	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		return err
	}
	if err := repo.AddSource(context.Background(), name, url); err != nil {
		return err
	}
	fmt.Printf("Registered source %q (%s)\n", name, url)
	return nil
}

func cmdImport(args []string) error {
	fset := flag.NewFlagSet("import", flag.ContinueOnError)
	var path string
	fset.StringVar(&path, "file", "", "YAML source list")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("--file is required")
	}
	entries, err := seed.Load(path)
	if err != nil {
		return err
	}

	cfg := config.Load()
	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		return err
	}
	for _, e := range entries {
		if err := repo.AddSource(context.Background(), e.Name, e.URL); err != nil {
			return fmt.Errorf("import %q: %w", e.Name, err)
		}
	}
	fmt.Printf("Imported %d sources\n", len(entries))
	return nil
}

func cmdList(args []string) error {
	cfg := config.Load()
	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		return err
	}
	sources, err := repo.ListSources(context.Background())
	if err != nil {
		return err
	}
	fmt.Print("# Registered Sources\n\n")
	for i, s := range sources {
		fmt.Printf("%d. Name: %s\n   URL: %s\n   Added: %s\n\n", i+1, s.Name, s.RSSURL, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func cmdDelete(args []string) error {
	fset := flag.NewFlagSet("delete", flag.ContinueOnError)
	var name string
	fset.StringVar(&name, "name", "", "source name")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("--name is required")
	}
	cfg := config.Load()
	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		return err
	}
	n, err := repo.DeleteSource(context.Background(), name)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no source named %q", name)
	}
	return nil
}

func cmdArticles(args []string) error {
	fset := flag.NewFlagSet("articles", flag.ContinueOnError)
	var sourceName string
	var num int
	fset.StringVar(&sourceName, "source", "", "source name")
	fset.IntVar(&num, "num", 3, "number of articles")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(sourceName) == "" {
		return fmt.Errorf("--source is required")
	}
	cfg := config.Load()
	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()
	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		return err
	}
	src, err := repo.GetSourceByName(context.Background(), sourceName)
	if err != nil {
		return err
	}
	arts, err := repo.ListArticlesBySource(context.Background(), src.ID, num)
	if err != nil {
		return err
	}
	fmt.Printf("Source: %s\n\n", src.Name)
	for i, a := range arts {
		fmt.Printf("%d. [%s] %s\n   %s\n\n", i+1, a.PublishedAt.Format("2006-01-02"), a.Title, a.URL)
	}
	return nil
}

func cmdSetInterval(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: newshub set-interval DURATION (e.g., 2m)")
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	c := clicontrol.NewClient(config.Load().ControlAddr)
	old, err := c.SetInterval(d)
	if err != nil {
		return err
	}
	fmt.Printf("Ingestion interval changed from %s to %s\n", old.String(), d.String())
	return nil
}

func cmdSetWorkers(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: newshub set-workers COUNT")
	}
	var n int
	_, err := fmt.Sscanf(args[0], "%d", &n)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid workers count: %v", args[0])
	}
	c := clicontrol.NewClient(config.Load().ControlAddr)
	old, err := c.SetWorkers(n)
	if err != nil {
		return err
	}
	fmt.Printf("Number of workers changed from %d to %d\n", old, n)
	return nil
}

func openDB(cfg config.Config) (*sql.DB, error) {
	pgURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDatabase,
	)
	dbConn, err := sql.Open("postgres", pgURL)
	if err != nil {
		return nil, err
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetMaxIdleConns(10)
	dbConn.SetConnMaxLifetime(30 * time.Minute)
	if err := dbConn.Ping(); err != nil {
		return nil, err
	}
	return dbConn, nil
}
