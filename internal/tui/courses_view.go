package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lotas/lernbruecke/internal/types"
)

// CoursesView is the read-only courses list: fetch, render, nothing
// else.
type CoursesView struct {
	Courses []types.Course
	Cursor  int
	Loading bool
	Err     error
	Width   int
	Height  int
}

func (m *CoursesView) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *CoursesView) MoveDown() {
	if m.Cursor < len(m.Courses)-1 {
		m.Cursor++
	}
}

func (m CoursesView) Selected() *types.Course {
	if m.Cursor >= 0 && m.Cursor < len(m.Courses) {
		return &m.Courses[m.Cursor]
	}
	return nil
}

func (m CoursesView) View(spinner string) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Courses") + "\n\n")

	switch {
	case m.Loading:
		b.WriteString(dimStyle.Render(spinner + " loading courses..."))

	case m.Err != nil:
		b.WriteString(errStyle.Render("Error: " + m.Err.Error()))

	case len(m.Courses) == 0:
		b.WriteString(dimStyle.Render("No courses in this organization."))

	default:
		for i, c := range m.Courses {
			label := c.Title
			if c.IsEnrolled {
				label += fmt.Sprintf(" · enrolled (%.0f%%)", c.Progress)
			}
			meta := fmt.Sprintf("%s · %d lessons", c.Difficulty, c.LessonsCount)
			line := fmt.Sprintf("%-44s %s", truncate(label, 44), meta)
			if i == m.Cursor {
				b.WriteString(selectedStyle.Render("> "+line) + "\n")
			} else {
				b.WriteString(normalStyle.Render("  "+line) + "\n")
			}
		}
	}

	b.WriteString("\n" + dimStyle.Render("↑↓/jk navigate · enter details · r reload · esc back"))
	return b.String()
}

// CourseDetailView renders one course with its outline.
type CourseDetailView struct {
	Detail    *types.CourseDetail
	Loading   bool
	Enrolling bool
	Err       error
	Notice    string
	Width     int
	Height    int
}

func (m CourseDetailView) View(spinner string) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	normalStyle := lipgloss.NewStyle().Padding(0, 1)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)

	var b strings.Builder

	switch {
	case m.Loading:
		b.WriteString(dimStyle.Render(spinner + " loading course..."))

	case m.Err != nil:
		b.WriteString(errStyle.Render("Error: " + m.Err.Error()))

	case m.Detail == nil:
		b.WriteString(dimStyle.Render("No course selected."))

	default:
		d := m.Detail
		b.WriteString(titleStyle.Render(d.Title) + "\n")
		instructor := d.Instructor.FirstName + " " + d.Instructor.LastName
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s · %s · %d enrolled", instructor, d.Difficulty, d.EnrollmentCount)) + "\n\n")
		if d.Description != "" {
			b.WriteString(normalStyle.Render(truncate(d.Description, 400)) + "\n\n")
		}

		b.WriteString(titleStyle.Render("Outline") + "\n")
		for _, s := range d.Sections {
			b.WriteString(normalStyle.Render(fmt.Sprintf("%2d. %s", s.OrderIndex+1, s.Title)) + "\n")
		}
		if len(d.Sections) == 0 {
			b.WriteString(dimStyle.Render("  no sections yet") + "\n")
		}
		b.WriteString("\n")

		switch {
		case m.Enrolling:
			b.WriteString(dimStyle.Render(spinner+" enrolling...") + "\n")
		case m.Notice != "":
			b.WriteString(normalStyle.Render(m.Notice) + "\n")
		case d.IsEnrolled:
			b.WriteString(dimStyle.Render(fmt.Sprintf("Enrolled · %.0f%% complete", d.Progress)) + "\n")
		default:
			b.WriteString(dimStyle.Render("e enroll") + "\n")
		}
	}

	b.WriteString("\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1).Render("esc back · q quit"))
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
