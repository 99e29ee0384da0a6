package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rdv0011/NonPlanarInfill/pkg/pipeline"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// LayerListModel - Interactive layer browser
// =============================================================================

// LayerListModel is the bubbletea model for browsing the layers of a scanned
// G-code file: each row shows a layer's Z height, its solid bounds and the
// amplitude scaling the modulation would apply there.
type LayerListModel struct {
	Report *pipeline.Report
	Cursor int
	Height int
	Offset int
}

// NewLayerListModel creates a new layer list model.
func NewLayerListModel(report *pipeline.Report) LayerListModel {
	return LayerListModel{
		Report: report,
		Cursor: 0,
		Height: 15,
		Offset: 0,
	}
}

func (m LayerListModel) Init() tea.Cmd {
	return nil
}

func (m LayerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc", "enter":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Report.Layers)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LayerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layers"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(m.Report.Path))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Report.Layers) {
		end = len(m.Report.Layers)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		l := m.Report.Layers[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		top := "—"
		if !math.IsInf(l.Top, 1) {
			top = fmt.Sprintf("%.3f", l.Top)
		}

		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%.3f", l.Z),
			fmt.Sprintf("%.3f", l.Bottom),
			top,
			fmt.Sprintf("%.2f", l.Scaling),
			scalingBar(l.Scaling),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Z", "Bottom", "Top", "Scale", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Report.Layers) {
				return lipgloss.NewStyle()
			}
			l := m.Report.Layers[actualIdx]
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if isCurrent {
				if l.Scaling > 0 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Foreground(colorDim).Bold(true)
			}
			if l.Scaling > 0 {
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorDim)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Report.Layers))))

	return b.String()
}

// scalingBar renders a small proportional bar for a layer's scaling factor.
func scalingBar(scaling float64) string {
	const width = 10
	if scaling < 0 {
		scaling = 0
	}
	if scaling > 1 {
		scaling = 1
	}
	filled := int(scaling*width + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// browseLayers runs the interactive layer browser over an inspection report.
func browseLayers(report *pipeline.Report) error {
	if len(report.Layers) == 0 {
		printInfo("No layers found")
		return nil
	}
	p := tea.NewProgram(NewLayerListModel(report))
	_, err := p.Run()
	return err
}
