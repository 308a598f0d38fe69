package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/P1n3appl3/rssfetch/config"
	"github.com/P1n3appl3/rssfetch/post"
)

// Outcome is what a single source contributed to a run. Err is set when the
// feed could not be fetched or decoded; Posts is empty in that case.
type Outcome struct {
	Source  config.Source
	Entries int
	Posts   []post.Post
	Skipped int
	Err     error
}

// Fetcher downloads and normalizes feeds. One Fetcher is shared by all
// concurrent fetches.
type Fetcher struct {
	client  *Client
	decoder *Decoder
	logger  *slog.Logger
}

func New(client *Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  client,
		decoder: NewDecoder(),
		logger:  logger,
	}
}

// Fetch retrieves the source's feed and converts its entries into posts.
// Failures are logged and absorbed into the Outcome; nothing is retried.
func (f *Fetcher) Fetch(ctx context.Context, source config.Source) Outcome {
	outcome := Outcome{Source: source}

	url := source.FeedURL()
	body, err := f.client.Get(ctx, url)
	if err != nil {
		outcome.Err = fmt.Errorf("'%s' fetch failed with %w", url, err)
		f.logger.Error("feed fetch failed", "source", source.Title, "error", outcome.Err)
		return outcome
	}

	feed, err := f.decoder.Decode(body)
	if err != nil {
		outcome.Err = fmt.Errorf("'%s' decode failed with %w", url, err)
		f.logger.Error("feed decode failed", "source", source.Title, "error", outcome.Err)
		return outcome
	}

	outcome.Entries = len(feed.Entries)
	f.logger.Info("feed fetched", "source", source.Title, "entries", outcome.Entries)

	outcome.Posts = make([]post.Post, 0, len(feed.Entries))
	for i, entry := range feed.Entries {
		p, err := post.FromEntry(entry, source)
		if err != nil {
			outcome.Skipped++
			f.logger.Warn("feed entry skipped", "source", source.Title, "entry", i, "reason", err)
			continue
		}
		outcome.Posts = append(outcome.Posts, p)
	}

	return outcome
}

// Status summarizes the outcome for logs and the fetch log
func (o Outcome) Status() string {
	if o.Err != nil {
		return "failed"
	}
	return "ok"
}
