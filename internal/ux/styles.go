package ux

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/pmagent/internal/domain"
)

// Styles holds the lipgloss styles used for text output
type Styles struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	ID      lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	noColor bool
}

// NewStyles returns the output styles. With noColor every style is plain.
func NewStyles(noColor bool) *Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return &Styles{
			Title:   plain,
			Header:  plain,
			ID:      plain,
			Muted:   plain,
			Success: plain,
			Warning: plain,
			Error:   plain,
			noColor: true,
		}
	}
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		ID: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true),
	}
}

// NoColor reports whether the styles are plain
func (s *Styles) NoColor() bool {
	return s.noColor
}

// Priority returns the style for a priority label
func (s *Styles) Priority(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityCritical:
		return s.Error
	case domain.PriorityHigh:
		return s.Warning
	case domain.PriorityLow:
		return s.Muted
	default:
		return s.ID
	}
}

// Status returns the style for a status label
func (s *Styles) Status(st domain.Status) lipgloss.Style {
	switch st {
	case domain.StatusCompleted:
		return s.Success
	case domain.StatusBlocked:
		return s.Error
	case domain.StatusInProgress, domain.StatusReview:
		return s.Warning
	default:
		return s.ID
	}
}
