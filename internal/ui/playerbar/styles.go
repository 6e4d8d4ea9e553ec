package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavesconnect/internal/ui/styles"
)

func barStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().Border)
}

func titleStyle() lipgloss.Style {
	return styles.T().S().Title
}

func metaStyle() lipgloss.Style {
	return styles.T().S().Muted
}

func progressTimeStyle() lipgloss.Style {
	return styles.T().S().Subtle
}
