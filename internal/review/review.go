// Package review walks the unmatched rows of an aligned CSV in a terminal UI
// so each one can be translated and stored.
package review

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"phrasebook/internal/dictionary"
	"phrasebook/internal/phrasecsv"
)

// Saver stores one reviewed translation.
type Saver func(ctx context.Context, in dictionary.Input) error

// Result summarizes a review session.
type Result struct {
	Saved     int
	Skipped   int
	Remaining int
}

// Pending returns the parsed rows that still need a translation.
func Pending(sheet *phrasecsv.Sheet, marker string) []phrasecsv.Row {
	if sheet == nil {
		return nil
	}
	var rows []phrasecsv.Row
	for _, row := range sheet.Rows {
		if row.Err == nil && row.Skippable(marker) {
			rows = append(rows, row)
		}
	}
	return rows
}

type savedMsg struct {
	err error
}

// Model is the bubbletea model for a review session.
type Model struct {
	ctx    context.Context
	rows   []phrasecsv.Row
	save   Saver
	index  int
	input  textinput.Model
	status string
	failed bool
	saving bool
	done   bool
	result Result
}

// NewModel builds a model over rows.
func NewModel(ctx context.Context, rows []phrasecsv.Row, save Saver) Model {
	input := textinput.New()
	input.Placeholder = "translation"
	input.Prompt = "> "
	input.CharLimit = 500
	input.Width = 72
	input.Focus()

	m := Model{ctx: ctx, rows: rows, save: save, input: input}
	if len(rows) == 0 {
		m.done = true
	}
	return m
}

// Result reports the counts so far. Rows not yet reached count as remaining.
func (m Model) Result() Result {
	r := m.result
	r.Remaining = max(len(m.rows)-m.index, 0)
	return r
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.done {
		return tea.Quit
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
			m.failed = true
			return m, nil
		}
		m.result.Saved++
		m.status = "saved"
		m.failed = false
		return m.advance()

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		case "tab":
			m.result.Skipped++
			m.status = "skipped"
			m.failed = false
			return m.advance()
		case "enter":
			target := strings.TrimSpace(m.input.Value())
			if target == "" {
				m.status = "type a translation, or press tab to skip"
				m.failed = true
				return m, nil
			}
			m.saving = true
			return m, m.saveCmd(m.rows[m.index], target)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) saveCmd(row phrasecsv.Row, target string) tea.Cmd {
	in := row.Phrase
	in.Target = target
	in.Tags = dropTag(in.Tags, phrasecsv.UnmatchedTag)
	ctx, save := m.ctx, m.save
	return func() tea.Msg {
		return savedMsg{err: save(ctx, in)}
	}
}

func dropTag(tags, drop string) string {
	var kept []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" && tag != drop {
			kept = append(kept, tag)
		}
	}
	return strings.Join(kept, ",")
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	m.index++
	m.input.Reset()
	if m.index >= len(m.rows) {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#93C5FD"))
	sourceStyle  = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Italic(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#06D6A0"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF476F"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.done {
		r := m.Result()
		return fmt.Sprintf("Saved %d, skipped %d, remaining %d\n", r.Saved, r.Skipped, r.Remaining)
	}
	row := m.rows[m.index]

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Review %d/%d  (line %d)", m.index+1, len(m.rows), row.Line)))
	b.WriteString("\n")
	b.WriteString(sourceStyle.Render(row.Phrase.Source))
	b.WriteString("\n")
	if row.Phrase.Context != "" {
		b.WriteString(contextStyle.Render(row.Phrase.Context))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.status != "" {
		style := okStyle
		if m.failed {
			style = errStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter: save • tab: skip • esc/ctrl+c: quit"))
	b.WriteString("\n")
	return b.String()
}

// Options configures Run. Nil readers and writers use the terminal.
type Options struct {
	Input  io.Reader
	Output io.Writer
}

// Run drives an interactive session until every row is handled or the user
// quits.
func Run(ctx context.Context, rows []phrasecsv.Row, save Saver, opts Options) (Result, error) {
	if len(rows) == 0 {
		return Result{}, nil
	}
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	final, err := tea.NewProgram(NewModel(ctx, rows, save), programOpts...).Run()
	if err != nil {
		return Result{}, fmt.Errorf("run review: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("run review: unexpected model %T", final)
	}
	return m.Result(), nil
}
