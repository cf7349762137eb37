package main

import (
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,                -- uuid of the scrape run
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	boards INTEGER DEFAULT 0,
	queries INTEGER DEFAULT 0,
	failed_queries INTEGER DEFAULT 0,
	rows_written INTEGER DEFAULT 0,
	rows_skipped INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id TEXT NOT NULL,                  -- Reddit submission id
	subreddit TEXT NOT NULL,
	search_query TEXT NOT NULL,
	title TEXT NOT NULL,
	post_summary TEXT,
	discussion_summary TEXT,
	score INTEGER DEFAULT 0,
	url TEXT NOT NULL,
	created_utc REAL,
	run_id TEXT,                            -- last run that saw the post
	first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(post_id, search_query)
);

CREATE INDEX IF NOT EXISTS idx_posts_score ON posts(score);
CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_utc);
`

// initDB opens the SQLite database at path and creates the schema
func initDB(path string) (*sql.DB, error) {
	log.WithField("path", path).Debug("Initializing database")

	db, err := sql.Open("sqlite", path) // Use "sqlite" driver name
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug("Database initialized successfully")
	return db, nil
}

// startRun records the beginning of a scrape run
func startRun(db *sql.DB, runID string, startedAt time.Time) error {
	_, err := db.Exec(`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`, runID, startedAt)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// finishRun stores the counters of a completed run
func finishRun(db *sql.DB, stats RunStats, finishedAt time.Time) error {
	_, err := db.Exec(`
		UPDATE runs SET
			finished_at = ?,
			boards = ?,
			queries = ?,
			failed_queries = ?,
			rows_written = ?,
			rows_skipped = ?
		WHERE run_id = ?`,
		finishedAt, stats.Boards, stats.Queries, stats.FailedQueries, stats.RowsWritten, stats.RowsSkipped, stats.RunID)
	if err != nil {
		return fmt.Errorf("failed to record run end: %w", err)
	}
	return nil
}

// PostStore mirrors written rows into the posts table
type PostStore struct {
	db    *sql.DB
	runID string
}

// NewPostStore returns a store tagging every row with runID
func NewPostStore(db *sql.DB, runID string) *PostStore {
	return &PostStore{db: db, runID: runID}
}

// WriteRow inserts the row, or refreshes it when the post was already
// collected for the same query
func (p *PostStore) WriteRow(row ResultRow) error {
	_, err := p.db.Exec(`
		INSERT INTO posts (post_id, subreddit, search_query, title, post_summary, discussion_summary, score, url, created_utc, run_id, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id, search_query) DO UPDATE SET
			subreddit = excluded.subreddit,
			title = excluded.title,
			post_summary = excluded.post_summary,
			discussion_summary = excluded.discussion_summary,
			score = excluded.score,
			url = excluded.url,
			run_id = excluded.run_id,
			last_seen = excluded.last_seen`, // first_seen is kept on conflict
		row.PostID, row.Board, row.Query, row.Title, row.PostSummary, row.DiscussionSummary,
		row.Score, row.URL, row.CreatedUTC, p.runID, time.Now(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to store post %s: %w", row.PostID, err)
	}
	return nil
}

// getTopPosts returns the highest scoring stored posts with at least minScore
func getTopPosts(db *sql.DB, limit int, minScore int) ([]ResultRow, error) {
	log.WithFields(log.Fields{"limit": limit, "minScore": minScore}).Debug("Querying database for posts")
	rows, err := db.Query(`
		SELECT post_id, subreddit, search_query, title, post_summary, discussion_summary, score, url, created_utc
		FROM posts
		WHERE score >= ?
		ORDER BY score DESC, created_utc DESC
		LIMIT ?`, minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []ResultRow
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.PostID, &r.Board, &r.Query, &r.Title, &r.PostSummary, &r.DiscussionSummary, &r.Score, &r.URL, &r.CreatedUTC); err != nil {
			log.WithError(err).Error("Error scanning row")
			continue
		}
		posts = append(posts, r)
	}

	return posts, rows.Err()
}
