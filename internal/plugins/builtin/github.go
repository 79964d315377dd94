package builtin

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pders01/sowestart/internal/plugins"
	"github.com/pders01/sowestart/internal/storage"
)

// GitHubPlugin subscribes to a repository's releases Atom feed.
type GitHubPlugin struct{}

func NewGitHubPlugin() *GitHubPlugin {
	return &GitHubPlugin{}
}

func (p *GitHubPlugin) Name() string {
	return "github"
}

func (p *GitHubPlugin) Priority() int {
	return 50
}

func (p *GitHubPlugin) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || strings.ToLower(u.Hostname()) != "github.com" {
		return false
	}
	_, _, ok := repoPath(u.Path)
	return ok
}

func (p *GitHubPlugin) Resolve(rawURL string) (*plugins.FeedInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	owner, repo, ok := repoPath(u.Path)
	if !ok {
		return nil, fmt.Errorf("no repository in %q", rawURL)
	}

	return &plugins.FeedInfo{
		OriginalURL: rawURL,
		FeedURL:     fmt.Sprintf("https://github.com/%s/%s/releases.atom", owner, repo),
		Title:       fmt.Sprintf("GitHub - %s/%s releases", owner, repo),
		Kind:        storage.KindNews,
		Metadata:    map[string]string{"owner": owner, "repo": repo},
	}, nil
}

// repoPath accepts /owner/repo, /owner/repo/releases and any .atom feed
// under a repository.
func repoPath(path string) (owner, repo string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	switch {
	case len(parts) == 2:
	case len(parts) == 3 && parts[2] == "releases":
	case strings.HasSuffix(parts[len(parts)-1], ".atom"):
	default:
		return "", "", false
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), true
}
