package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// options are the command line settings that are not part of Config
type options struct {
	configPath string
	outFile    string
	dbPath     string
	feedPath   string
	feedSize   int
	minScore   int
}

// apply copies the flag overrides onto cfg
func (o options) apply(cfg *Config) {
	if o.outFile != "" {
		cfg.OutputFile = o.outFile
	}
}

// writeFeed saves the Atom digest built from the database or, without one,
// from the rows of this run
func writeFeed(opts options, db *sql.DB, collector *FeedCollector) error {
	var rows []ResultRow
	if db != nil {
		var err error
		rows, err = getTopPosts(db, opts.feedSize, opts.minScore)
		if err != nil {
			return err
		}
	} else {
		rows = collector.Top(opts.feedSize, opts.minScore)
	}

	atom, err := generateFeed(rows, opts.minScore)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(opts.feedPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(opts.feedPath, []byte(atom), 0644); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"count":    len(rows),
		"filename": opts.feedPath,
	}).Info("Atom feed saved")
	return nil
}

// run scrapes every configured pair from source into the CSV file and the
// optional database and feed
func run(ctx context.Context, cfg *Config, opts options, source Source) error {
	subreddits := normalizeSubreddits(cfg.Subreddits)
	if len(subreddits) == 0 {
		log.Warn("No subreddits configured")
		return nil
	}
	log.WithFields(log.Fields{
		"count":      len(subreddits),
		"subreddits": strings.Join(subreddits, ", "),
	}).Info("Subreddits will be scanned")

	out, err := CreateCSVFile(cfg.OutputFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.WithError(err).Error("Failed to close output file")
		}
	}()

	runID := uuid.New().String()
	var mirrors []RowWriter

	var db *sql.DB
	if opts.dbPath != "" {
		db, err = initDB(opts.dbPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := startRun(db, runID, time.Now()); err != nil {
			return err
		}
		mirrors = append(mirrors, NewPostStore(db, runID))
	}

	collector := &FeedCollector{}
	if opts.feedPath != "" && db == nil {
		mirrors = append(mirrors, collector)
	}

	scraper := NewScraper(cfg, source, out, mirrors...)
	stats, runErr := scraper.RunWithID(ctx, runID)

	if db != nil {
		if err := finishRun(db, stats, time.Now()); err != nil {
			log.WithError(err).Warn("Failed to record run")
		}
	}

	if opts.feedPath != "" {
		if err := writeFeed(opts, db, collector); err != nil {
			log.WithError(err).Error("Failed to write Atom feed")
		}
	}

	fields := log.Fields{
		"run_id":         stats.RunID,
		"subreddits":     stats.Boards,
		"queries":        stats.Queries,
		"failed_queries": stats.FailedQueries,
		"rows":           stats.RowsWritten,
		"skipped":        stats.RowsSkipped,
		"filename":       cfg.OutputFile,
	}
	if runErr != nil {
		log.WithFields(fields).WithError(runErr).Warn("Scraping interrupted")
		if errors.Is(runErr, context.Canceled) {
			return nil
		}
		return runErr
	}
	log.WithFields(fields).Info("Scraping complete")
	return nil
}

func main() {
	// Configure log
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetLevel(log.WarnLevel) // Only show warnings and above by default

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML file overriding the built-in subreddits, keywords and limits")
	flag.StringVar(&opts.outFile, "out", "", "CSV output file (default from config: "+DefaultOutputFile+")")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite database recording runs and collected posts")
	flag.StringVar(&opts.feedPath, "feed", "", "write an Atom digest of the top posts to this file")
	flag.IntVar(&opts.feedSize, "feed-size", 30, "number of posts in the Atom digest")
	flag.IntVar(&opts.minScore, "min-score", 0, "minimum score for posts in the Atom digest")
	verbose := flag.Bool("verbose", false, "log progress")
	debug := flag.Bool("debug", false, "log API details")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.InfoLevel)
	}
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		log.Fatal(err)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.Credentials.ValidateCredentials(); err != nil {
		log.Fatalf("Missing Reddit credentials: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, NewRedditClient(ctx, cfg)); err != nil {
		log.Fatal(err)
	}
}
