package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/strandlab/motifmerge/pkg/jaspar"
)

// matrixListModel is the bubbletea model for interactive matrix
// selection from JASPAR search results. Space toggles, enter
// confirms, q aborts with nothing selected.
type matrixListModel struct {
	hits    []jaspar.MatrixSummary
	checked map[int]bool
	cursor  int
	height  int
	offset  int
	aborted bool
}

func newMatrixListModel(hits []jaspar.MatrixSummary) matrixListModel {
	return matrixListModel{
		hits:    hits,
		checked: make(map[int]bool),
		height:  15,
	}
}

func (m matrixListModel) Init() tea.Cmd { return nil }

func (m matrixListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.hits)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case " ":
			m.checked[m.cursor] = !m.checked[m.cursor]
		case "enter":
			if len(m.checked) == 0 {
				m.checked[m.cursor] = true
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m matrixListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Matrices"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  space toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.hits) {
		end = len(m.hits)
	}
	for i := m.offset; i < end; i++ {
		h := m.hits[i]

		cursor := "  "
		if i == m.cursor {
			cursor = StyleTitle.Render("> ")
		}
		check := "[ ]"
		if m.checked[i] {
			check = "[x]"
		}
		line := fmt.Sprintf("%s%s %s  %s", cursor, check,
			StyleValue.Render(h.MatrixID), h.Name)
		if h.Species != "" {
			line += "  " + StyleDim.Render(h.Species)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// selected returns the chosen hits in list order, or nil if aborted.
func (m matrixListModel) selected() []jaspar.MatrixSummary {
	if m.aborted {
		return nil
	}
	var out []jaspar.MatrixSummary
	for i, h := range m.hits {
		if m.checked[i] {
			out = append(out, h)
		}
	}
	return out
}
