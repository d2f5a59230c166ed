package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/lernbruecke/internal/orgs"
)

// OrgPicker is the overlay for switching organizations. All lifecycle
// state lives in the Switch machine; the picker only holds the cursor
// and renders whatever phase the machine is in.
type OrgPicker struct {
	Switch  *orgs.Switch
	Cursor  int
	Current string // currently selected organization id, for the marker
	Width   int
	Height  int
}

func NewOrgPicker(sw *orgs.Switch, current string) OrgPicker {
	return OrgPicker{Switch: sw, Current: current}
}

func (m *OrgPicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *OrgPicker) MoveDown() {
	if m.Cursor < len(m.Switch.Organizations())-1 {
		m.Cursor++
	}
}

func (m OrgPicker) View(spinner string) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Switch organization:") + "\n\n")

	switch m.Switch.Phase() {
	case orgs.Loading:
		b.WriteString(dimStyle.Render(spinner+" loading organizations...") + "\n")

	case orgs.Failed:
		b.WriteString(errStyle.Render(m.Switch.Message()) + "\n")
		b.WriteString("\n" + dimStyle.Render("esc close"))
		return boxStyle.Render(b.String())

	case orgs.Ready:
		for i, org := range m.Switch.Organizations() {
			marker := "  "
			if org.ID == m.Current {
				marker = "* "
			}
			label := fmt.Sprintf("%s%s (%s)", marker, org.Label(), org.Membership.Role)
			if i == m.Cursor {
				label = selectedStyle.Render("> " + label)
			} else {
				label = normalStyle.Render("  " + label)
			}
			b.WriteString(label + "\n")
		}
		if len(m.Switch.Organizations()) == 0 {
			b.WriteString(dimStyle.Render("no organizations") + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("↑↓ navigate · enter select · esc cancel"))

	return boxStyle.Render(b.String())
}
