package types

import (
	"time"
)

// Feed is a decoded feed document, reduced to what posts are built from
type Feed struct {
	Title   string
	Entries []Entry
}

// Entry represents a single item in a feed. Nil fields were absent in the document.
type Entry struct {
	Title     *string
	Published *time.Time
	Updated   *time.Time
	Links     []Link
}

// Link is a reference from an entry. Rel is empty when the format has no relations.
type Link struct {
	Href string
	Rel  string
}
