package model

import "time"

// Post is one sticky note on the fan board.  Visibility rule: a public post
// is visible to everyone; a private post is visible to a viewer iff the
// viewer's uid is the author's uid or appears in VisibleTo.  VisibleTo
// always includes the author when the post is private.  ToNames carries the
// recipient display names and is informational only.
type Post struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	From      string    `json:"from"`
	FromUID   string    `json:"fromUid"`
	IsPublic  bool      `json:"isPublic"`
	VisibleTo []string  `json:"visibleTo"`
	ToNames   []string  `json:"toNames"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a reply under a board post.
type Comment struct {
	ID        uint64    `json:"id"`
	PostID    uint64    `json:"postId"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	AuthorUID string    `json:"authorUid"`
	CreatedAt time.Time `json:"createdAt"`
}
