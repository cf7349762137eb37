package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// categorizePost returns the feed categories of a collected row
func categorizePost(row ResultRow) []string {
	categories := []string{"r/" + row.Board}
	if row.Query != "" {
		categories = append(categories, row.Query)
	}

	switch domain := linkDomain(row.URL); {
	case domain == "":
	case strings.HasSuffix(domain, "reddit.com"):
		categories = append(categories, "Self post")
	case strings.HasSuffix(domain, "redd.it"):
		categories = append(categories, "Media")
	case strings.Contains(domain, "youtube.com") || domain == "youtu.be":
		categories = append(categories, "Video")
	default:
		categories = append(categories, domain)
	}

	if strings.HasSuffix(strings.ToLower(row.URL), ".pdf") {
		categories = append(categories, "PDF")
	}

	return categories
}

// linkDomain returns the host of rawURL without a leading www.
func linkDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// categorizeByScore returns a category label based on score and threshold
func categorizeByScore(score int, minScore int) string {
	switch {
	case score >= 1000:
		return "Viral 1000+"
	case score >= 250:
		return "Hot 250+"
	case score >= 100:
		return "High Score 100+"
	case minScore > 0 && score >= minScore*2:
		return fmt.Sprintf("High Score %d+", minScore*2)
	case minScore > 0 && score >= minScore:
		return fmt.Sprintf("Popular %d+", minScore)
	default:
		return "Rising"
	}
}

// calculatePostAge returns a human-readable time difference from createdAt to now
func calculatePostAge(createdAt time.Time) string {
	diff := time.Since(createdAt)

	switch {
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes < 1 {
			return "just now"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	case diff < 365*24*time.Hour:
		return fmt.Sprintf("%d weeks ago", int(diff.Hours()/(24*7)))
	default:
		return fmt.Sprintf("%d years ago", int(diff.Hours()/(24*365)))
	}
}

// epochTime converts Reddit's created_utc float seconds to a time
func epochTime(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
