// ABOUTME: Shared lipgloss styles for consistent terminal output
// ABOUTME: Defines colors, panels and status badges used by the CLI and browser

package render

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light
	Accent    = lipgloss.Color("#8B5CF6") // Lighter purple for highlights
	Info      = lipgloss.Color("#3B82F6") // Blue

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	Selected = lipgloss.NewStyle().
			Foreground(Text).
			Background(Primary).
			Bold(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	NoticeText = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	Author = lipgloss.NewStyle().
		Foreground(Info).
		Bold(true)
)

// badge renders text on a colored background
func badge(text string, bg lipgloss.Color) string {
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(lipgloss.Color("#FFFFFF")).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// StatusBadge renders a comment moderation or post publication status
func StatusBadge(status string) string {
	switch status {
	case "approved", "published":
		return badge(status, Secondary)
	case "pending", "draft":
		return badge(status, Warning)
	case "rejected", "archived":
		return badge(status, Danger)
	default:
		return badge(status, Muted)
	}
}

// RoleBadge renders a user role
func RoleBadge(role string) string {
	switch role {
	case "superadmin":
		return badge(role, Danger)
	case "writer":
		return badge(role, Primary)
	default:
		return badge(role, Muted)
	}
}
