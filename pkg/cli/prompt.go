package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrPromptCancelled is returned when the operator leaves the prompt with
// Esc or Ctrl+C.
var ErrPromptCancelled = errors.New("prompt cancelled")

// passwordModel is a single masked input field.
type passwordModel struct {
	title     string
	hint      string
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newPasswordModel(title, hint string) passwordModel {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40
	ti.Placeholder = "password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return passwordModel{title: title, hint: hint, input: ti}
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			if m.input.Value() == "" {
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m passwordModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	var s strings.Builder
	s.WriteString(titleStyle.Render(m.title) + "\n")
	if m.hint != "" {
		s.WriteString(subtitleStyle.Render(m.hint) + "\n\n")
	}
	s.WriteString(m.input.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Enter to confirm • Esc to cancel"))
	s.WriteString("\n")
	return s.String()
}

// PromptPassword shows a masked password field on out and returns what the
// operator typed.
func PromptPassword(title, hint string, in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(newPasswordModel(title, hint), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(passwordModel)
	if !ok || m.cancelled || !m.submitted {
		return "", ErrPromptCancelled
	}
	return m.input.Value(), nil
}
