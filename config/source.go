package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Source is one blog to poll. Feed is either an absolute URL or a path
// appended to URL.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Feed  string `json:"feed"`
}

// FeedURL returns the location the feed is fetched from
func (s Source) FeedURL() string {
	if strings.HasPrefix(s.Feed, "/") {
		return s.URL + s.Feed
	}
	return s.Feed
}

// ReadSources loads the line-delimited source list at path
func ReadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources at '%s' with %w", path, err)
	}
	defer f.Close()

	sources, err := DecodeSources(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources at '%s' with %w", path, err)
	}
	return sources, nil
}

// DecodeSources decodes one JSON object per line. Lines that do not decode
// into a Source are skipped on purpose: a bad line never fails the run.
func DecodeSources(r io.Reader) ([]Source, error) {
	var sources []Source
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		s, err := decodeSource(scanner.Bytes())
		if err != nil {
			slog.Debug("skipping malformed source line", "line", line, "error", err)
			continue
		}
		sources = append(sources, s)
	}
	if err := scanner.Err(); err != nil {
		return sources, err
	}
	return sources, nil
}

// rawSource tells a missing key apart from an empty value
type rawSource struct {
	Title *string `json:"title"`
	URL   *string `json:"url"`
	Feed  *string `json:"feed"`
}

func decodeSource(line []byte) (Source, error) {
	var raw rawSource
	if err := json.Unmarshal(line, &raw); err != nil {
		return Source{}, err
	}
	switch {
	case raw.Title == nil:
		return Source{}, errors.New("missing field 'title'")
	case raw.URL == nil:
		return Source{}, errors.New("missing field 'url'")
	case raw.Feed == nil:
		return Source{}, errors.New("missing field 'feed'")
	}
	return Source{Title: *raw.Title, URL: *raw.URL, Feed: *raw.Feed}, nil
}
