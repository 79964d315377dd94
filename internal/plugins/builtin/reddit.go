package builtin

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pders01/sowestart/internal/plugins"
	"github.com/pders01/sowestart/internal/storage"
)

// RedditPlugin turns subreddit links into their RSS feed.
type RedditPlugin struct{}

func NewRedditPlugin() *RedditPlugin {
	return &RedditPlugin{}
}

func (p *RedditPlugin) Name() string {
	return "reddit"
}

func (p *RedditPlugin) Priority() int {
	return 50
}

func (p *RedditPlugin) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Hostname()) {
	case "reddit.com", "www.reddit.com", "old.reddit.com":
	default:
		return false
	}
	return subreddit(u.Path) != ""
}

func (p *RedditPlugin) Resolve(rawURL string) (*plugins.FeedInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	sub := subreddit(u.Path)
	if sub == "" {
		return nil, fmt.Errorf("no subreddit in %q", rawURL)
	}

	feedURL := rawURL
	if !strings.HasSuffix(u.Path, ".rss") {
		u.Host = "www.reddit.com"
		u.Path = strings.TrimSuffix(u.Path, "/") + ".rss"
		u.RawQuery = ""
		u.Fragment = ""
		feedURL = u.String()
	}

	return &plugins.FeedInfo{
		OriginalURL: rawURL,
		FeedURL:     feedURL,
		Title:       "Reddit - r/" + sub,
		Kind:        storage.KindNews,
		Metadata:    map[string]string{"subreddit": sub},
	}, nil
}

func subreddit(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "r" {
		return ""
	}
	return strings.TrimSuffix(parts[1], ".rss")
}
