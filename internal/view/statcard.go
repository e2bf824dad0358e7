package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const cardWidth = 24

// StatCard is a headline number with a title and an optional hint.
type StatCard struct {
	Title   string
	Value   string
	Hint    string
	Variant Variant
}

// Render draws the card.
func (c StatCard) Render() string {
	value := lipgloss.NewStyle().Bold(true)
	if color, ok := variantColors[c.Variant]; ok {
		value = value.Foreground(color)
	}

	lines := []string{MutedStyle.Render(c.Title), value.Render(c.Value)}
	if c.Hint != "" {
		lines = append(lines, MutedStyle.Render(c.Hint))
	}

	return CardStyle.Width(cardWidth).Render(strings.Join(lines, "\n"))
}

// JoinCards lays cards out side by side.
func JoinCards(cards ...StatCard) string {
	rendered := make([]string, len(cards))
	for i, card := range cards {
		rendered[i] = card.Render()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
