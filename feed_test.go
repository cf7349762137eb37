package main

import (
	"strings"
	"testing"
)

func TestGenerateFeed_EmptyItems(t *testing.T) {
	atom, err := generateFeed(nil, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(atom, "Subreddit keyword digest") {
		t.Error("Feed should contain the title")
	}
	if !strings.Contains(atom, "xmlns=\"http://www.w3.org/2005/Atom\"") {
		t.Error("Feed should be Atom format")
	}
	if strings.Contains(atom, "<entry>") {
		t.Error("Empty items should not generate any entries")
	}
}

func TestGenerateFeed_SingleItem(t *testing.T) {
	row := ResultRow{
		PostID:            "p1",
		Board:             "ROV",
		Query:             "ROV innovation",
		Title:             "Tether management <system>",
		PostSummary:       "A new tether design ...",
		DiscussionSummary: "Looks great & cheap",
		Score:             321,
		URL:               "https://www.reddit.com/r/ROV/comments/p1/",
		CreatedUTC:        1700000000,
	}

	atom, err := generateFeed([]ResultRow{row}, 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if strings.Count(atom, "<entry>") != 1 {
		t.Error("Feed should contain exactly one entry")
	}
	for _, want := range []string{"Tether management", "321 points", "r/ROV", "ROV innovation", "Hot 250+", "Self post", "tag:reddit.com,2024:p1"} {
		if !strings.Contains(atom, want) {
			t.Errorf("Feed should contain %q", want)
		}
	}
	if strings.Contains(atom, "<system>") {
		t.Error("Title markup should be escaped")
	}
}

func TestGenerateFeed_NoDiscussion(t *testing.T) {
	row := ResultRow{PostID: "p2", Board: "robotics", Title: "Quiet post", URL: "https://example.com/x", Score: 1, CreatedUTC: 1700000000}

	atom, err := generateFeed([]ResultRow{row}, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(atom, "blockquote") {
		t.Error("Empty discussion should not render a quote")
	}
}

func TestFeedCollector_Top(t *testing.T) {
	fc := &FeedCollector{}
	rows := []ResultRow{
		{PostID: "a", Query: "q1", Score: 10, CreatedUTC: 1},
		{PostID: "b", Query: "q1", Score: 300, CreatedUTC: 1},
		{PostID: "a", Query: "q2", Score: 10, CreatedUTC: 1},
		{PostID: "c", Query: "q1", Score: 10, CreatedUTC: 5},
		{PostID: "d", Query: "q1", Score: 2, CreatedUTC: 9},
	}
	for _, r := range rows {
		if err := fc.WriteRow(r); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	top := fc.Top(10, 5)
	var ids []string
	for _, r := range top {
		ids = append(ids, r.PostID)
	}

	expected := []string{"b", "c", "a"}
	if strings.Join(ids, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected %v, got %v", expected, ids)
	}

	if limited := fc.Top(1, 0); len(limited) != 1 || limited[0].PostID != "b" {
		t.Errorf("Expected only the best post, got %+v", limited)
	}
}
