package main

import "encoding/json"

// Submission represents a single subreddit post returned by a search
type Submission struct {
	ID         string
	Name       string // fullname, e.g. "t3_abc123"
	Subreddit  string
	Title      string
	Body       string
	Author     string
	Score      int
	URL        string
	Permalink  string
	CreatedUTC float64
}

// Comment represents a single comment of a submission's discussion
type Comment struct {
	ID       string
	Name     string // fullname, e.g. "t1_xyz789"
	ParentID string
	Author   string
	Body     string
}

// ResultRow is one output row, built per submission and written immediately
type ResultRow struct {
	PostID            string
	Board             string
	Query             string
	Title             string
	PostSummary       string
	DiscussionSummary string
	Score             int
	URL               string
	CreatedUTC        float64
}

// RunStats summarizes a single scrape run
type RunStats struct {
	RunID            string
	Boards           int
	Queries          int
	FailedQueries    int
	RowsWritten      int
	RowsSkipped      int
	EmptyDiscussions int
}

// redditThing is the generic kind/data envelope used by the Reddit API
type redditThing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// redditListing represents a Listing thing
type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string        `json:"after"`
		Before   string        `json:"before"`
		Children []redditThing `json:"children"`
	} `json:"data"`
}

// redditLink is the data of a t3 thing
type redditLink struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Subreddit    string  `json:"subreddit"`
	Title        string  `json:"title"`
	Selftext     string  `json:"selftext"`
	SelftextHTML *string `json:"selftext_html"`
	Author       string  `json:"author"`
	Score        int     `json:"score"`
	URL          string  `json:"url"`
	Permalink    string  `json:"permalink"`
	CreatedUTC   float64 `json:"created_utc"`
}

// redditComment is the data of a t1 thing
type redditComment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
	LinkID   string `json:"link_id"`
	Author   string `json:"author"`
	Body     string `json:"body"`
	BodyHTML string `json:"body_html"`
	// Replies is either an empty string or a Listing
	Replies json.RawMessage `json:"replies"`
}

// redditMore is the data of a "more" placeholder thing
type redditMore struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parent_id"`
	Count    int      `json:"count"`
	Depth    int      `json:"depth"`
	Children []string `json:"children"`
}

// moreChildrenResponse is the body returned by /api/morechildren
type moreChildrenResponse struct {
	JSON struct {
		Errors [][]string `json:"errors"`
		Data   struct {
			Things []redditThing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}
