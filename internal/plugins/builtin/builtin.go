// Package builtin holds the link plugins shipped with sowestart.
package builtin

import "github.com/pders01/sowestart/internal/plugins"

// Register adds every built-in plugin to r.
func Register(r *plugins.Registry) {
	r.Register(NewRedditPlugin())
	r.Register(NewGitHubPlugin())
	r.Register(NewGoogleCalendarPlugin())
}

// NewRegistry returns a registry with the built-in plugins.
func NewRegistry() *plugins.Registry {
	r := plugins.NewRegistry()
	Register(r)
	return r
}
