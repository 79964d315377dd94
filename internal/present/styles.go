package present

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/sowestart/internal/config"
)

const (
	AppName     = "sowestart"
	CompactLogo = AppName + " ›"
)

// Styles holds the lipgloss styles for CLI output, built from the
// configured colours.
type Styles struct {
	Logo    lipgloss.Style
	Header  lipgloss.Style
	Title   lipgloss.Style
	Feed    lipgloss.Style
	Time    lipgloss.Style
	Muted   lipgloss.Style
	Badge   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

func NewStyles(colors config.UIColors) Styles {
	primary := lipgloss.Color(colors.Primary)
	secondary := lipgloss.Color(colors.Secondary)
	accent := lipgloss.Color(colors.Accent)
	muted := lipgloss.Color(colors.Muted)

	return Styles{
		Logo: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		Header: lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true),
		Title: lipgloss.NewStyle().
			Bold(true),
		Feed: lipgloss.NewStyle().
			Foreground(accent),
		Time: lipgloss.NewStyle().
			Foreground(muted).
			Faint(true),
		Muted: lipgloss.NewStyle().
			Foreground(muted).
			Italic(true),
		Badge: lipgloss.NewStyle().
			Foreground(primary),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors.Error)).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colors.Success)),
	}
}

// Banner is the one-line header printed above command output.
func (s Styles) Banner(version string) string {
	tag := version
	if tag != "" && tag != "dev" && tag[0] != 'v' && tag[0] != 'V' {
		tag = "v" + tag
	}
	if tag == "" {
		return s.Logo.Render(CompactLogo)
	}
	return fmt.Sprintf("%s %s", s.Logo.Render(CompactLogo), s.Time.Render(tag))
}
