package fetcher

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"

	"github.com/P1n3appl3/rssfetch/fetcher/types"
)

// Decoder turns raw feed documents into types.Feed using gofeed.
// Atom goes through the atom parser directly because the universal
// gofeed.Item drops link relations.
type Decoder struct {
	parser *gofeed.Parser
	atom   *atom.Parser
}

// NewDecoder creates a new feed decoder, safe for concurrent use
func NewDecoder() *Decoder {
	parser := gofeed.NewParser()
	// gofeed assigns missing translators lazily on first Parse
	parser.RSSTranslator = &gofeed.DefaultRSSTranslator{}
	parser.AtomTranslator = &gofeed.DefaultAtomTranslator{}
	parser.JSONTranslator = &gofeed.DefaultJSONTranslator{}

	return &Decoder{
		parser: parser,
		atom:   &atom.Parser{},
	}
}

// Decode parses an Atom, RSS or JSON feed document
func (d *Decoder) Decode(body []byte) (types.Feed, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(body)) {
	case gofeed.FeedTypeAtom:
		return d.decodeAtom(body)
	case gofeed.FeedTypeRSS, gofeed.FeedTypeJSON:
		return d.decodeUniversal(body)
	default:
		return types.Feed{}, gofeed.ErrFeedTypeNotDetected
	}
}

func (d *Decoder) decodeAtom(body []byte) (types.Feed, error) {
	var feed types.Feed

	atomFeed, err := d.atom.Parse(bytes.NewReader(body))
	if err != nil {
		return feed, fmt.Errorf("failed to parse Atom feed: %w", err)
	}

	feed.Title = atomFeed.Title
	feed.Entries = make([]types.Entry, 0, len(atomFeed.Entries))
	for _, e := range atomFeed.Entries {
		entry := types.Entry{
			Title:     optional(e.Title),
			Published: e.PublishedParsed,
			Updated:   e.UpdatedParsed,
			Links:     make([]types.Link, 0, len(e.Links)),
		}
		for _, l := range e.Links {
			if l == nil {
				continue
			}
			entry.Links = append(entry.Links, types.Link{Href: l.Href, Rel: l.Rel})
		}
		feed.Entries = append(feed.Entries, entry)
	}

	return feed, nil
}

func (d *Decoder) decodeUniversal(body []byte) (types.Feed, error) {
	var feed types.Feed

	gofeedFeed, err := d.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return feed, fmt.Errorf("failed to parse feed: %w", err)
	}

	feed.Title = gofeedFeed.Title
	feed.Entries = make([]types.Entry, 0, len(gofeedFeed.Items))
	for _, item := range gofeedFeed.Items {
		if item == nil {
			continue
		}
		entry := types.Entry{
			Title:     optional(item.Title),
			Published: item.PublishedParsed,
			Updated:   item.UpdatedParsed,
		}

		// RSS and JSON Feed items name their article link directly
		hrefs := item.Links
		if item.Link != "" {
			hrefs = []string{item.Link}
		}
		for _, href := range hrefs {
			entry.Links = append(entry.Links, types.Link{Href: href})
		}

		feed.Entries = append(feed.Entries, entry)
	}

	return feed, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
