package main

import (
	"fmt"
	"html"
	"sort"
	"time"

	"github.com/gorilla/feeds"
	log "github.com/sirupsen/logrus"
)

// FeedCollector keeps the rows of the current run for the Atom digest
type FeedCollector struct {
	rows []ResultRow
}

// WriteRow implements RowWriter
func (fc *FeedCollector) WriteRow(row ResultRow) error {
	fc.rows = append(fc.rows, row)
	return nil
}

// Top returns up to limit collected rows with at least minScore, best first.
// A post found by several queries appears once.
func (fc *FeedCollector) Top(limit, minScore int) []ResultRow {
	seen := make(map[string]bool)
	var rows []ResultRow
	for _, r := range fc.rows {
		if r.Score < minScore || seen[r.PostID] {
			continue
		}
		seen[r.PostID] = true
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].CreatedUTC > rows[j].CreatedUTC
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// generateFeed creates an Atom feed of the given rows
func generateFeed(rows []ResultRow, minScore int) (string, error) {
	log.WithField("itemCount", len(rows)).Debug("Generating Atom feed")
	now := time.Now()

	feed := &feeds.Feed{
		Title:       "Subreddit keyword digest",
		Description: "Top matching posts from the scanned subreddits",
		Link:        &feeds.Link{Href: "https://www.reddit.com/", Rel: "self", Type: "text/html"},
		Id:          "tag:reddit.com,2024:keyword-digest",
		Created:     now,
		Updated:     now,
	}

	for _, row := range rows {
		createdAt := epochTime(row.CreatedUTC)
		categories := append(categorizePost(row), categorizeByScore(row.Score, minScore))

		tags := ""
		for _, cat := range categories {
			tags += fmt.Sprintf(`<span style="display: inline-block; background: #e5e5e5; color: #666; padding: 2px 6px; border-radius: 12px; font-size: 12px; margin-right: 4px;">%s</span>`, html.EscapeString(cat))
		}

		discussion := ""
		if row.DiscussionSummary != "" {
			discussion = fmt.Sprintf(`<blockquote style="margin: 8px 0; padding-left: 8px; border-left: 3px solid #ccc; color: #555;">%s</blockquote>`, html.EscapeString(row.DiscussionSummary))
		}

		description := fmt.Sprintf(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.5;">
			<div style="margin-bottom: 12px; padding: 8px; background-color: #f6f7f8; border-left: 4px solid #ff4500;">
				<strong style="color: #ff4500;">%d points</strong> •
				<span style="color: #828282;">%s</span>
			</div>
			<div style="margin-bottom: 8px;">%s</div>
			<p>%s</p>
			%s
			<div style="margin-top: 16px; padding-top: 12px; border-top: 1px solid #e5e5e5;">
				<a href="%s">🔗 Open</a>
			</div>
		</div>`,
			row.Score,
			calculatePostAge(createdAt),
			tags,
			html.EscapeString(row.PostSummary),
			discussion,
			html.EscapeString(row.URL))

		feed.Items = append(feed.Items, &feeds.Item{
			Title:       row.Title,
			Link:        &feeds.Link{Href: row.URL, Rel: "alternate", Type: "text/html"},
			Id:          fmt.Sprintf("tag:reddit.com,2024:%s", row.PostID),
			Description: description,
			Created:     createdAt,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return "", fmt.Errorf("failed to generate feed: %w", err)
	}

	log.WithField("feedSize", len(atom)).Debug("Atom feed generated successfully")
	return atom, nil
}
