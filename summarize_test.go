package main

import (
	"strings"
	"testing"
)

func TestTruncateWords_WithinLimit(t *testing.T) {
	testCases := []string{
		"",
		"single",
		"a few words here",
		"  spacing   is\tkept\nas is  ",
	}

	for _, text := range testCases {
		if result := truncateWords(text, 5); result != text {
			t.Errorf("Expected %q unchanged, got %q", text, result)
		}
	}
}

func TestTruncateWords_ExactLimit(t *testing.T) {
	text := "one two  three"
	if result := truncateWords(text, 3); result != text {
		t.Errorf("Expected text at the limit to be unchanged, got %q", result)
	}
}

func TestTruncateWords_ExceedsLimit(t *testing.T) {
	result := truncateWords("one  two\tthree\nfour five", 3)
	expected := "one two three ..."

	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
	if !strings.HasSuffix(result, truncationMarker) {
		t.Error("Truncated text should end with the marker")
	}
}

func TestTruncateWords_Idempotent(t *testing.T) {
	testCases := []struct {
		text     string
		maxWords int
	}{
		{"", 5},
		{"short text", 5},
		{strings.Repeat("word ", 100), 80},
		{"a b c d e f g", 1},
		{"already cut ...", 2},
	}

	for _, tc := range testCases {
		once := truncateWords(tc.text, tc.maxWords)
		twice := truncateWords(once, tc.maxWords)
		if once != twice {
			t.Errorf("truncateWords not idempotent for %q: %q then %q", tc.text, once, twice)
		}
	}
}

func TestTruncateWords_PostSummaryScenario(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("word ", 60))
	result := truncateWords("Hello World "+body, 50)

	expected := "Hello World " + strings.TrimSpace(strings.Repeat("word ", 48)) + " ..."
	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
	if n := len(strings.Fields(strings.TrimSuffix(result, truncationMarker))); n != 50 {
		t.Errorf("Expected 50 words before the marker, got %d", n)
	}
}

func TestHTMLToText(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "Paragraphs",
			html:     `<div class="md"><p>First line</p><p>Second <a href="https://example.com">link</a></p></div>`,
			expected: "First line Second link",
		},
		{
			name:     "List items",
			html:     `<ul><li>one</li><li>two</li></ul>`,
			expected: "one two",
		},
		{
			name:     "Inline formatting",
			html:     `<p>This is <strong>bold</strong> and <em>italic</em></p>`,
			expected: "This is bold and italic",
		},
		{
			name:     "Empty",
			html:     ``,
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := htmlToText(tc.html)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}
