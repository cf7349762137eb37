package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// moreChildrenBatch is the largest number of ids /api/morechildren accepts
const moreChildrenBatch = 100

// commentTree collects comments of one submission while placeholders are expanded
type commentTree struct {
	linkName string
	order    []*Comment
	byName   map[string]*Comment
	pending  []redditMore
	seenMore map[string]bool
}

func newCommentTree(linkName string) *commentTree {
	return &commentTree{
		linkName: linkName,
		byName:   make(map[string]*Comment),
		seenMore: make(map[string]bool),
	}
}

// addThings records comments and queues placeholders, recursing into replies
func (t *commentTree) addThings(c *RedditClient, things []redditThing) error {
	for _, thing := range things {
		switch thing.Kind {
		case "t1":
			var rc redditComment
			if err := json.Unmarshal(thing.Data, &rc); err != nil {
				return fmt.Errorf("failed to decode comment: %w", err)
			}
			t.addComment(c.toComment(rc))

			replies, err := decodeReplies(rc.Replies)
			if err != nil {
				return fmt.Errorf("failed to decode replies of %s: %w", rc.Name, err)
			}
			if err := t.addThings(c, replies); err != nil {
				return err
			}
		case "more":
			var more redditMore
			if err := json.Unmarshal(thing.Data, &more); err != nil {
				return fmt.Errorf("failed to decode placeholder: %w", err)
			}
			key := more.ParentID + "/" + more.ID + "/" + strings.Join(more.Children, ",")
			if t.seenMore[key] {
				continue
			}
			t.seenMore[key] = true
			t.pending = append(t.pending, more)
		}
	}
	return nil
}

func (t *commentTree) addComment(comment Comment) {
	if comment.Name == "" {
		comment.Name = "t1_" + comment.ID
	}
	if _, exists := t.byName[comment.Name]; exists {
		return
	}
	cm := comment
	t.byName[cm.Name] = &cm
	t.order = append(t.order, &cm)
}

// flatten returns every comment once, breadth first from the top-level comments.
// Comments whose parent never showed up are treated as top-level.
func (t *commentTree) flatten() []Comment {
	children := make(map[string][]*Comment)
	var queue []*Comment
	for _, cm := range t.order {
		if _, ok := t.byName[cm.ParentID]; ok && cm.ParentID != cm.Name {
			children[cm.ParentID] = append(children[cm.ParentID], cm)
			continue
		}
		queue = append(queue, cm)
	}

	flat := make([]Comment, 0, len(t.order))
	for len(queue) > 0 {
		cm := queue[0]
		queue = queue[1:]
		flat = append(flat, *cm)
		queue = append(queue, children[cm.Name]...)
	}
	return flat
}

// decodeReplies handles the replies field, which is "" when a comment has none
func decodeReplies(raw json.RawMessage) ([]redditThing, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var listing redditListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, err
	}
	return listing.Data.Children, nil
}

// Comments returns the fully expanded discussion of a submission
func (c *RedditClient) Comments(ctx context.Context, sub Submission) ([]Comment, error) {
	linkName := sub.Name
	if linkName == "" {
		linkName = "t3_" + sub.ID
	}
	tree := newCommentTree(linkName)

	listings, err := c.fetchCommentPage(ctx, sub.ID, "")
	if err != nil {
		return nil, err
	}
	if err := tree.addThings(c, listings); err != nil {
		return nil, err
	}

	for len(tree.pending) > 0 {
		more := tree.pending[0]
		tree.pending = tree.pending[1:]

		if err := c.expandMore(ctx, tree, sub.ID, more); err != nil {
			return nil, err
		}
	}

	comments := tree.flatten()
	log.WithFields(log.Fields{
		"post_id":  sub.ID,
		"comments": len(comments),
	}).Debug("Flattened comments")
	return comments, nil
}

// fetchCommentPage loads the comment listing of a submission, optionally
// focused on a single comment and its replies
func (c *RedditClient) fetchCommentPage(ctx context.Context, postID, focus string) ([]redditThing, error) {
	params := url.Values{}
	if focus != "" {
		params.Set("comment", focus)
	}

	// The response is [submission listing, comment listing]
	var pages []redditListing
	if err := c.getJSON(ctx, "/comments/"+url.PathEscape(postID), params, &pages); err != nil {
		return nil, err
	}
	if len(pages) < 2 {
		return nil, fmt.Errorf("unexpected comment response with %d listings", len(pages))
	}
	return pages[1].Data.Children, nil
}

// expandMore replaces a placeholder with the comments it stands for
func (c *RedditClient) expandMore(ctx context.Context, tree *commentTree, postID string, more redditMore) error {
	if len(more.Children) == 0 {
		// "continue this thread": reload the parent comment with its replies
		parent := strings.TrimPrefix(more.ParentID, "t1_")
		if parent == "" || more.ParentID == tree.linkName {
			return nil
		}
		log.WithFields(log.Fields{"post_id": postID, "parent": parent}).Debug("Continuing comment thread")
		things, err := c.fetchCommentPage(ctx, postID, parent)
		if err != nil {
			return err
		}
		return tree.addThings(c, things)
	}

	for start := 0; start < len(more.Children); start += moreChildrenBatch {
		end := min(start+moreChildrenBatch, len(more.Children))
		batch := more.Children[start:end]

		params := url.Values{}
		params.Set("api_type", "json")
		params.Set("link_id", tree.linkName)
		params.Set("children", strings.Join(batch, ","))
		params.Set("sort", "confidence")

		log.WithFields(log.Fields{"post_id": postID, "count": len(batch)}).Debug("Loading more comments")

		var resp moreChildrenResponse
		if err := c.getJSON(ctx, "/api/morechildren", params, &resp); err != nil {
			return err
		}
		if len(resp.JSON.Errors) > 0 {
			return fmt.Errorf("morechildren failed: %v", resp.JSON.Errors)
		}
		if err := tree.addThings(c, resp.JSON.Data.Things); err != nil {
			return err
		}
	}
	return nil
}
