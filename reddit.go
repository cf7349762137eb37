package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	redditTokenURL = "https://www.reddit.com/api/v1/access_token"
	redditAPIURL   = "https://oauth.reddit.com"
)

// RedditClient talks to the Reddit API with application-only OAuth
type RedditClient struct {
	httpClient  *http.Client
	baseURL     string
	sort        string
	timeFilter  string
	stripMarkup bool
}

// userAgentTransport sets the User-Agent header on every outgoing request
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// NewRedditClient creates a client authenticated with the client credentials grant
func NewRedditClient(ctx context.Context, cfg *Config) *RedditClient {
	base := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: cfg.Credentials.UserAgent,
		},
	}

	oauthCfg := &clientcredentials.Config{
		ClientID:     cfg.Credentials.ClientID,
		ClientSecret: cfg.Credentials.ClientSecret,
		TokenURL:     redditTokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// The token endpoint also requires the User-Agent header
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, base)
	authed := oauthCfg.Client(tokenCtx)
	authed.Timeout = base.Timeout

	return newRedditClientWithHTTP(authed, redditAPIURL, cfg)
}

func newRedditClientWithHTTP(httpClient *http.Client, baseURL string, cfg *Config) *RedditClient {
	return &RedditClient{
		httpClient:  httpClient,
		baseURL:     baseURL,
		sort:        cfg.Sort,
		timeFilter:  cfg.TimeFilter,
		stripMarkup: cfg.StripMarkup,
	}
}

// getJSON performs a GET against the API and decodes the JSON body into out
func (c *RedditClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	query.Set("raw_json", "1")
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s failed: %w", path, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusTooManyRequests {
		log.WithFields(log.Fields{
			"path":      path,
			"remaining": res.Header.Get("X-Ratelimit-Remaining"),
			"reset":     res.Header.Get("X-Ratelimit-Reset"),
		}).Error("Rate limit exceeded (429) from Reddit API")
		return fmt.Errorf("rate limit exceeded (429)")
	}

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("HTTP error %d from %s: %s", res.StatusCode, path, body)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// Search returns up to limit submissions of the subreddit matching query.
// Only the first result page is requested.
func (c *RedditClient) Search(ctx context.Context, subreddit, query string, limit int) ([]Submission, error) {
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("restrict_sr", "1")
	params.Set("sort", c.sort)
	params.Set("t", c.timeFilter)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("syntax", "lucene")

	var listing redditListing
	if err := c.getJSON(ctx, "/r/"+url.PathEscape(subreddit)+"/search", params, &listing); err != nil {
		return nil, err
	}

	var submissions []Submission
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var link redditLink
		if err := json.Unmarshal(child.Data, &link); err != nil {
			return nil, fmt.Errorf("failed to decode submission: %w", err)
		}
		submissions = append(submissions, c.toSubmission(link))
		if len(submissions) == limit {
			break
		}
	}

	log.WithFields(log.Fields{
		"subreddit": subreddit,
		"query":     query,
		"count":     len(submissions),
	}).Debug("Search finished")
	return submissions, nil
}

func (c *RedditClient) toSubmission(link redditLink) Submission {
	body := link.Selftext
	if c.stripMarkup && link.SelftextHTML != nil {
		if text, err := htmlToText(*link.SelftextHTML); err == nil {
			body = text
		} else {
			log.WithError(err).WithField("post_id", link.ID).Debug("Failed to strip post markup")
		}
	}

	return Submission{
		ID:         link.ID,
		Name:       link.Name,
		Subreddit:  link.Subreddit,
		Title:      link.Title,
		Body:       body,
		Author:     link.Author,
		Score:      link.Score,
		URL:        link.URL,
		Permalink:  link.Permalink,
		CreatedUTC: link.CreatedUTC,
	}
}

func (c *RedditClient) toComment(rc redditComment) Comment {
	body := rc.Body
	if c.stripMarkup && rc.BodyHTML != "" {
		if text, err := htmlToText(rc.BodyHTML); err == nil {
			body = text
		} else {
			log.WithError(err).WithField("comment_id", rc.ID).Debug("Failed to strip comment markup")
		}
	}
	return Comment{
		ID:       rc.ID,
		Name:     rc.Name,
		ParentID: rc.ParentID,
		Author:   rc.Author,
		Body:     body,
	}
}
