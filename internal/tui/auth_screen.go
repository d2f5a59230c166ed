package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// field indexes for the two auth forms.
const (
	loginUser = iota
	loginPassword
	loginFieldCount
)

const (
	signupFirst = iota
	signupLast
	signupUsername
	signupEmail
	signupPassword
	signupFieldCount
)

// AuthForm is the login/signup screen. While a request is in flight the
// submit action is disabled, so a second enter press cannot start a
// duplicate request.
type AuthForm struct {
	SignupMode bool
	Inputs     []textinput.Model
	Focus      int
	Pending    bool
	ErrMsg     string
	Width      int
	Height     int
}

func NewAuthForm() AuthForm {
	f := AuthForm{}
	f.build()
	return f
}

func (f *AuthForm) build() {
	labels := []string{"username or email", "password"}
	if f.SignupMode {
		labels = []string{"first name", "last name", "username", "email", "password"}
	}

	f.Inputs = make([]textinput.Model, len(labels))
	for i := range f.Inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.CharLimit = 128
		in.Width = 36
		if labels[i] == "password" {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.Inputs[i] = in
	}
	f.Focus = 0
	f.Inputs[0].Focus()
}

// ToggleMode switches between the login and the signup form, clearing
// any half-typed values.
func (f *AuthForm) ToggleMode() {
	if f.Pending {
		return
	}
	f.SignupMode = !f.SignupMode
	f.ErrMsg = ""
	f.build()
}

func (f *AuthForm) Next() { f.setFocus((f.Focus + 1) % len(f.Inputs)) }
func (f *AuthForm) Prev() { f.setFocus((f.Focus - 1 + len(f.Inputs)) % len(f.Inputs)) }

func (f *AuthForm) Value(i int) string {
	return strings.TrimSpace(f.Inputs[i].Value())
}

func (f *AuthForm) setFocus(i int) {
	f.Inputs[f.Focus].Blur()
	f.Focus = i
	f.Inputs[f.Focus].Focus()
}

// CanSubmit reports whether every field is filled and no request is in
// flight.
func (f *AuthForm) CanSubmit() bool {
	if f.Pending {
		return false
	}
	for i := range f.Inputs {
		if f.Value(i) == "" {
			return false
		}
	}
	return true
}

// UpdateInputs forwards key events to the focused input.
func (f *AuthForm) UpdateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(f.Inputs))
	for i := range f.Inputs {
		f.Inputs[i], cmds[i] = f.Inputs[i].Update(msg)
	}
	return tea.Batch(cmds...)
}

func (f AuthForm) View(spinner string) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	title := "Sign in to LearningBases"
	if f.SignupMode {
		title = "Create a LearningBases account"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	for i := range f.Inputs {
		b.WriteString("  " + f.Inputs[i].View() + "\n")
	}
	b.WriteString("\n")

	if f.Pending {
		b.WriteString(hintStyle.Render(spinner+" contacting platform...") + "\n")
	} else if f.ErrMsg != "" {
		b.WriteString(errStyle.Render(f.ErrMsg) + "\n")
	}

	switchHint := "ctrl+s signup"
	if f.SignupMode {
		switchHint = "ctrl+s login"
	}
	b.WriteString("\n" + hintStyle.Render("tab next · enter submit · "+switchHint+" · ctrl+c quit"))

	return boxStyle.Render(b.String())
}
