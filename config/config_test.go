package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFeedURL(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   string
	}{
		{
			name:   "path is appended to url",
			source: Source{Title: "Blog A", URL: "http://a.com", Feed: "/feed.xml"},
			want:   "http://a.com/feed.xml",
		},
		{
			name:   "absolute feed is used verbatim",
			source: Source{Title: "Blog B", URL: "http://b.com", Feed: "https://feeds.b.com/atom"},
			want:   "https://feeds.b.com/atom",
		},
		{
			name:   "no slash means absolute",
			source: Source{Title: "Blog C", URL: "http://c.com", Feed: "feed.xml"},
			want:   "feed.xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.source.FeedURL())
		})
	}
}

func TestDecodeSources_SkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"title":"Blog A","url":"http://a.com","feed":"/feed.xml"}`,
		`not json at all`,
		``,
		`{"title":"Missing feed","url":"http://x.com"}`,
		`{"title":null,"url":"http://y.com","feed":"/rss"}`,
		`{"title":"Blog B","url":"http://b.com","feed":"http://b.com/atom.xml","extra":1}`,
	}, "\n")

	sources, err := DecodeSources(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []Source{
		{Title: "Blog A", URL: "http://a.com", Feed: "/feed.xml"},
		{Title: "Blog B", URL: "http://b.com", Feed: "http://b.com/atom.xml"},
	}, sources)
}

func TestDecodeSources_Empty(t *testing.T) {
	sources, err := DecodeSources(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestReadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogs.jsonl")
	err := os.WriteFile(path, []byte(`{"title":"Blog A","url":"http://a.com","feed":"/feed.xml"}`+"\n"), 0644)
	require.NoError(t, err)

	sources, err := ReadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Blog A", sources[0].Title)
}

func TestReadSources_MissingFile(t *testing.T) {
	_, err := ReadSources(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "expected ErrNotExist, got %v", err)
}

func TestDefault(t *testing.T) {
	conf := Default()
	require.NoError(t, conf.Validate())

	timeout, err := conf.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, timeout)

	cutoff, err := conf.CutoffDate()
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2015, Month: time.January, Day: 1}, cutoff)

	assert.True(t, conf.SkipVerify(), "TLS validation should be disabled by default")
	assert.Empty(t, conf.DatabasePath)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
timeout = "3s"
cutoff = "2020-06-30"
insecure_skip_verify = false
user_agent = "rssfetch-test"
database_path = "/tmp/fetch.db"

[filters]
exclude_title_patterns = ["^Weekly links"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	conf, err := Read(path)
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	timeout, _ := conf.RequestTimeout()
	assert.Equal(t, 3*time.Second, timeout)
	cutoff, _ := conf.CutoffDate()
	assert.Equal(t, civil.Date{Year: 2020, Month: time.June, Day: 30}, cutoff)
	assert.False(t, conf.SkipVerify())
	assert.Equal(t, "rssfetch-test", conf.UserAgent)
	assert.Equal(t, "/tmp/fetch.db", conf.DatabasePath)
	assert.Equal(t, []string{"^Weekly links"}, conf.Filter.ExcludeTitlePatterns)
}

func TestRead_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`user_agent = "x"`), 0644))

	conf, err := Read(path)
	require.NoError(t, err)

	timeout, err := conf.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, timeout)
	assert.Equal(t, DefaultCutoff, conf.Cutoff)
	assert.True(t, conf.SkipVerify())
}

func TestRead_MissingFile(t *testing.T) {
	conf, err := Read(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, Default(), conf)
}

func TestRead_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`timeout = `), 0644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		conf    Config
		wantErr string
	}{
		{name: "bad timeout", conf: Config{Timeout: "soon"}, wantErr: "invalid timeout"},
		{name: "negative timeout", conf: Config{Timeout: "-1s"}, wantErr: "must be positive"},
		{name: "bad cutoff", conf: Config{Cutoff: "2015-13-01"}, wantErr: "invalid cutoff"},
		{
			name:    "bad pattern",
			conf:    Config{Filter: Filter{ExcludeTitlePatterns: []string{"("}}},
			wantErr: "invalid exclude pattern",
		},
		{name: "empty config uses defaults", conf: Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, "/xdg/rssfetch/config.toml", DefaultPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/someone")
	assert.Equal(t, "/home/someone/.config/rssfetch/config.toml", DefaultPath())
}
