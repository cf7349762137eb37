package main

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// truncationMarker is appended to text cut down to its word budget
const truncationMarker = " ..."

// truncateWords keeps text unchanged when it has at most maxWords
// whitespace-delimited words, otherwise returns the first maxWords words
// joined by single spaces followed by truncationMarker
func truncateWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + truncationMarker
}

// htmlToText reduces rendered Reddit HTML to its text content
func htmlToText(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	// Block elements are separated so words on adjacent lines do not merge
	doc.Find("p, li, br, pre, blockquote, h1, h2, h3, h4, h5, h6, tr").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
