package plugins

import (
	"fmt"

	"github.com/pders01/sowestart/internal/storage"
)

// FeedInfo is what a plugin learned about a link the user pasted.
type FeedInfo struct {
	// OriginalURL is the link as given, after validation.
	OriginalURL string
	// FeedURL is the subscribable endpoint (RSS, Atom or iCalendar).
	FeedURL string
	// Title is a display name suggestion, e.g. "Reddit - r/golang".
	Title string
	// Kind is set when the plugin knows which widget the feed belongs to.
	Kind     storage.Kind
	Metadata map[string]string
}

// Plugin turns a site-specific page link into the feed behind it.
type Plugin interface {
	Name() string

	// CanHandle reports whether rawURL points at a page this plugin understands.
	CanHandle(rawURL string) bool

	// Resolve returns the feed for rawURL. It is only called when CanHandle
	// returned true.
	Resolve(rawURL string) (*FeedInfo, error)

	// Priority breaks ties when several plugins match (higher wins).
	Priority() int
}

// Registry holds the plugins consulted when a subscription is added.
type Registry struct {
	plugins []Plugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make([]Plugin, 0)}
}

func (r *Registry) Register(plugin Plugin) {
	r.plugins = append(r.plugins, plugin)
}

// FindPlugin returns the highest priority plugin that can handle rawURL,
// or nil. Registration order decides between equal priorities.
func (r *Registry) FindPlugin(rawURL string) Plugin {
	var best Plugin
	highest := -1

	for _, p := range r.plugins {
		if p.CanHandle(rawURL) && p.Priority() > highest {
			best = p
			highest = p.Priority()
		}
	}
	return best
}

// Resolve maps rawURL to its feed. Links no plugin recognises are
// returned unchanged.
func (r *Registry) Resolve(rawURL string) (*FeedInfo, error) {
	p := r.FindPlugin(rawURL)
	if p == nil {
		return &FeedInfo{
			OriginalURL: rawURL,
			FeedURL:     rawURL,
			Metadata:    make(map[string]string),
		}, nil
	}

	info, err := p.Resolve(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s plugin: %w", p.Name(), err)
	}
	if info.Metadata == nil {
		info.Metadata = make(map[string]string)
	}
	info.Metadata["plugin"] = p.Name()
	return info, nil
}

func (r *Registry) ListPlugins() []Plugin {
	return append([]Plugin(nil), r.plugins...)
}
