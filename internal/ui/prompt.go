package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/danhigham/autotele/internal/telegram"
)

// ErrCancelled is returned when the user leaves a prompt without submitting.
var ErrCancelled = errors.New("prompt cancelled")

type field struct {
	label    string
	input    textinput.Model
	optional bool
}

func newField(label, placeholder string, optional bool) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	return field{label: label, input: ti, optional: optional}
}

func newPasswordField(label string) field {
	f := newField(label, "", false)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

// promptModel asks for one or more values, one field at a time.
type promptModel struct {
	title  string
	fields []field
	focus  int

	err       string
	done      bool
	cancelled bool

	width  int
	height int
}

func newPromptModel(title string, fields ...field) promptModel {
	m := promptModel{title: title, fields: fields}
	if len(m.fields) > 0 {
		m.fields[0].input.Focus()
	}
	return m
}

func (m promptModel) Init() tea.Cmd {
	return nil
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "shift+tab", "up":
			if m.focus > 0 {
				m.fields[m.focus].input.Blur()
				m.focus--
				return m, m.fields[m.focus].input.Focus()
			}
			return m, nil
		}
	}

	if len(m.fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

func (m promptModel) submit() (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		m.done = true
		return m, tea.Quit
	}
	f := m.fields[m.focus]
	if !f.optional && strings.TrimSpace(f.input.Value()) == "" {
		m.err = f.label + " is required"
		return m, nil
	}
	m.err = ""
	if m.focus == len(m.fields)-1 {
		m.done = true
		return m, tea.Quit
	}
	m.fields[m.focus].input.Blur()
	m.focus++
	return m, m.fields[m.focus].input.Focus()
}

// Values returns the trimmed field values in order.
func (m promptModel) Values() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = strings.TrimSpace(f.input.Value())
	}
	return out
}

func (m promptModel) View() tea.View {
	return tea.NewView(m.render())
}

func (m promptModel) render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	for i, f := range m.fields {
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString("\n")
		b.WriteString(fieldBox(i == m.focus).Render(f.input.View()))
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("enter: next • shift+tab: back • esc: cancel"))

	out := b.String()
	if m.height > 0 {
		out = clampLines(out, m.height)
	}
	return out
}

// Prompter asks the user on the terminal for the details a login may need.
type Prompter struct {
	// Input and Output default to the process's terminal.
	Input  io.Reader
	Output io.Writer
}

var _ telegram.Prompter = Prompter{}

func (p Prompter) run(ctx context.Context, m promptModel) (promptModel, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}
	if p.Output != nil {
		opts = append(opts, tea.WithOutput(p.Output))
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return promptModel{}, fmt.Errorf("prompt %q: %w", m.title, err)
	}
	res, ok := final.(promptModel)
	if !ok || !res.done {
		return promptModel{}, ErrCancelled
	}
	return res, nil
}

// Name asks for the first and last name of a new account.
func (p Prompter) Name(ctx context.Context) (string, string, error) {
	m, err := p.run(ctx, newPromptModel("Register a new account",
		newField("First name", "Maria", false),
		newField("Last name", "optional", true),
	))
	if err != nil {
		return "", "", err
	}
	v := m.Values()
	return v[0], v[1], nil
}

// Password asks for the two-step verification password.
func (p Prompter) Password(ctx context.Context) (string, error) {
	m, err := p.run(ctx, newPromptModel("Two-step verification",
		newPasswordField("Password"),
	))
	if err != nil {
		return "", err
	}
	return m.fields[0].input.Value(), nil
}
