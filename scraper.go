package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Source is the discussion board the scraper reads from
type Source interface {
	Search(ctx context.Context, subreddit, query string, limit int) ([]Submission, error)
	Comments(ctx context.Context, sub Submission) ([]Comment, error)
}

// RowWriter receives every processed row
type RowWriter interface {
	WriteRow(row ResultRow) error
}

// Scraper runs the subreddit × keyword batch
type Scraper struct {
	cfg    *Config
	source Source
	out    RowWriter
	// mirrors get a copy of every written row; their failures never skip a row
	mirrors []RowWriter
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewScraper creates a scraper writing rows to out
func NewScraper(cfg *Config, source Source, out RowWriter, mirrors ...RowWriter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		source:  source,
		out:     out,
		mirrors: mirrors,
		sleep:   sleepContext,
	}
}

// sleepContext pauses for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// normalizeSubreddits trims names, drops blanks and duplicates and sorts the rest
func normalizeSubreddits(names []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Run scans every subreddit for every keyword. Failures of single searches
// or submissions are logged and skipped; only context cancellation stops
// the run early.
func (s *Scraper) Run(ctx context.Context) (RunStats, error) {
	return s.RunWithID(ctx, uuid.New().String())
}

// RunWithID is Run with a caller-provided run identifier
func (s *Scraper) RunWithID(ctx context.Context, runID string) (RunStats, error) {
	stats := RunStats{RunID: runID}
	runLog := log.WithField("run_id", runID)

	for _, subreddit := range normalizeSubreddits(s.cfg.Subreddits) {
		stats.Boards++
		runLog.WithField("subreddit", subreddit).Info("Scraping subreddit")

		for _, kw := range s.cfg.Keywords {
			stats.Queries++
			queryLog := runLog.WithFields(log.Fields{"subreddit": subreddit, "query": kw})
			queryLog.Info("Searching")

			submissions, err := s.source.Search(ctx, subreddit, kw, s.cfg.SearchLimit)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return stats, ctxErr
				}
				stats.FailedQueries++
				queryLog.WithError(err).Error("Error during search")
				if err := s.sleep(ctx, s.cfg.ErrorDelay); err != nil {
					return stats, err
				}
				continue
			}

			for _, sub := range submissions {
				if err := s.handleSubmission(ctx, sub, subreddit, kw, &stats); err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return stats, ctxErr
					}
					stats.RowsSkipped++
					queryLog.WithError(err).WithField("post_id", sub.ID).Warn("Skipping submission")
				}
			}

			if err := s.sleep(ctx, s.cfg.RequestDelay); err != nil {
				return stats, err
			}
		}
	}

	return stats, nil
}

// handleSubmission summarizes one submission and writes its row
func (s *Scraper) handleSubmission(ctx context.Context, sub Submission, subreddit, kw string, stats *RunStats) error {
	row, err := s.processSubmission(ctx, sub, subreddit, kw)
	if err != nil {
		return err
	}
	if row.DiscussionSummary == "" {
		stats.EmptyDiscussions++
	}

	if err := s.out.WriteRow(row); err != nil {
		return err
	}
	stats.RowsWritten++

	for _, m := range s.mirrors {
		if err := m.WriteRow(row); err != nil {
			log.WithError(err).WithField("post_id", row.PostID).Warn("Failed to mirror row")
		}
	}
	return nil
}

// errIncomplete marks a submission that lacks a field every row needs
var errIncomplete = errors.New("incomplete submission")

// processSubmission builds the row of a submission. A failure to load the
// comments only empties the discussion summary, unless the run was cancelled.
func (s *Scraper) processSubmission(ctx context.Context, sub Submission, subreddit, kw string) (ResultRow, error) {
	if err := ctx.Err(); err != nil {
		return ResultRow{}, err
	}
	if sub.ID == "" {
		return ResultRow{}, fmt.Errorf("%w: missing id", errIncomplete)
	}
	if sub.URL == "" {
		return ResultRow{}, fmt.Errorf("%w: missing url", errIncomplete)
	}

	title := strings.TrimSpace(sub.Title)
	postSummary := truncateWords(title+" "+sub.Body, s.cfg.PostWords)

	discussion := ""
	comments, err := s.source.Comments(ctx, sub)
	if err != nil {
		// A cancelled run must not leave rows with a blanked discussion behind
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ResultRow{}, ctxErr
		}
		log.WithError(err).WithField("post_id", sub.ID).Debug("Comment flattening failed, leaving discussion empty")
	} else {
		bodies := make([]string, 0, len(comments))
		for _, c := range comments {
			bodies = append(bodies, c.Body)
		}
		discussion = truncateWords(strings.Join(bodies, " "), s.cfg.DiscussionWords)
	}

	return ResultRow{
		PostID:            sub.ID,
		Board:             subreddit,
		Query:             kw,
		Title:             title,
		PostSummary:       postSummary,
		DiscussionSummary: discussion,
		Score:             sub.Score,
		URL:               sub.URL,
		CreatedUTC:        sub.CreatedUTC,
	}, nil
}
