package filter

import (
	"log/slog"
	"regexp"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"

	"github.com/P1n3appl3/rssfetch/config"
	"github.com/P1n3appl3/rssfetch/post"
)

// Pipeline decides which posts are emitted
type Pipeline struct {
	cutoff          civil.Date
	excludePatterns []*regexp.Regexp
}

// NewPipeline creates a filter pipeline keeping posts dated strictly after cutoff
func NewPipeline(filterCfg config.Filter, cutoff civil.Date) (*Pipeline, error) {
	p := &Pipeline{
		cutoff:          cutoff,
		excludePatterns: make([]*regexp.Regexp, 0, len(filterCfg.ExcludeTitlePatterns)),
	}

	// Compile regex patterns
	for _, pattern := range filterCfg.ExcludeTitlePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			slog.Warn("invalid regex pattern in filter", "pattern", pattern, "error", err)
			continue
		}
		p.excludePatterns = append(p.excludePatterns, re)
	}

	return p, nil
}

// ShouldInclude returns true if the post passes every filter, otherwise the
// name of the filter that dropped it
func (p *Pipeline) ShouldInclude(item post.Post) (bool, string) {
	// 1. Check cutoff, the same day is already too old
	if !item.Date.After(p.cutoff) {
		return false, "cutoff"
	}

	// 2. Check exclude patterns
	for _, pattern := range p.excludePatterns {
		if pattern.MatchString(item.Title) {
			return false, "exclude_pattern[" + pattern.String() + "]"
		}
	}

	return true, ""
}

// Apply keeps the posts that pass, in their original order
func (p *Pipeline) Apply(posts []post.Post) []post.Post {
	return lo.Filter(posts, func(item post.Post, _ int) bool {
		include, reason := p.ShouldInclude(item)
		if !include {
			slog.Debug("post filtered out", "title", item.Title, "reason", reason, "url", item.URL)
		}
		return include
	})
}
