package post

import (
	"errors"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/P1n3appl3/rssfetch/config"
	"github.com/P1n3appl3/rssfetch/fetcher/types"
)

// Post is the normalized record emitted for one feed entry
type Post struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	BlogTitle string     `json:"blog_title"`
	BlogURL   string     `json:"blog_url"`
	Date      civil.Date `json:"date"` // Marshals as YYYY-MM-DD
}

// Errors returned when an entry can not become a Post.
// They only ever abort a single entry.
var (
	ErrMissingTitle = errors.New("missing title")
	ErrMissingDate  = errors.New("missing date")
	ErrMissingLink  = errors.New("missing link")
)

const alternateRel = "alternate"

// FromEntry normalizes a decoded feed entry published by source
func FromEntry(e types.Entry, source config.Source) (Post, error) {
	href, err := selectLink(e.Links)
	if err != nil {
		return Post{}, err
	}

	if e.Title == nil {
		return Post{}, ErrMissingTitle
	}

	var date civil.Date
	switch {
	case e.Published != nil:
		date = civil.DateOf(e.Published.UTC())
	case e.Updated != nil:
		date = civil.DateOf(e.Updated.UTC())
	default:
		return Post{}, ErrMissingDate
	}

	return Post{
		Title:     *e.Title,
		URL:       resolveLink(href, source.URL),
		BlogTitle: source.Title,
		BlogURL:   source.URL,
		Date:      date,
	}, nil
}

// selectLink picks the article link out of an entry's links:
//
//	no links       -> ErrMissingLink
//	one link       -> that link, whatever its relation
//	several links  -> the first with rel "alternate", else ErrMissingLink
func selectLink(links []types.Link) (string, error) {
	switch len(links) {
	case 0:
		return "", ErrMissingLink
	case 1:
		return links[0].Href, nil
	}

	// Blogger lists the feed's self link next to the article link
	for _, l := range links {
		if l.Rel == alternateRel {
			return l.Href, nil
		}
	}
	return "", ErrMissingLink
}

// resolveLink joins host-relative hrefs onto the blog URL with a single "/".
// No path cleaning is done.
func resolveLink(href, baseURL string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + "/" + href
}
