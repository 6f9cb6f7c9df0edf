package repl

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/moustache/cli/cmd"
	"github.com/ardnew/moustache/lang"
	"github.com/ardnew/moustache/log"
)

const prompt = "» "

const helpMessage = `
Each line is rendered as a template against one environment, so variables
and blocks defined on earlier lines stay defined.

  :vars     List variables
  :blocks   List blocks
  :unset    Remove the named variables
  :clear    Clear the screen
  :help     Print this help
  :quit     Exit (also Ctrl+D, or Ctrl+C on an empty line)

  Tab / Shift-Tab   cycle through completions
  Up / Down         navigate history
`

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	nameStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// REPL renders template lines interactively.
type REPL struct {
	cmd.EngineFlags `embed:""`

	History string `default:"${cache}/history.utf8" help:"History file (empty to disable)" type:"path"`
}

// Run executes the repl command.
func (r *REPL) Run(ctx context.Context) error {
	if !term.IsTerminal(os.Stdin.Fd()) {
		return ErrNotTerminal
	}

	env, err := r.Environment()
	if err != nil {
		return err
	}

	logger := log.Default()

	history := NewHistory(r.History)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", r.History),
			slog.String("error", err.Error()),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", r.History),
		slog.Int("entries", history.Len()),
		slog.Int("vars", env.Len()),
	)

	// The engine must not log while the program owns the terminal.
	engine := r.Engine(env, lang.WithLogger(log.Logger{}))

	_, err = tea.NewProgram(
		newModel(ctx, engine, history),
		tea.WithContext(ctx),
	).Run()

	return err
}

const defaultWidth = 80

// model is the Bubble Tea model of the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	engine       *lang.Engine
	history      *History
	historyIdx   int
	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
}

func newModel(ctx context.Context, engine *lang.Engine, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		engine:     engine,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(
			fmt.Sprintf("history %d/%d", m.historyIdx+1, m.history.Len()),
		))

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Type a template line, or :help"))

	default:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches()

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(m.historyIdx - 1), nil

	case tea.KeyDown:
		return m.recall(m.historyIdx + 1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches()
		}

		return m, nil
	}

	if msg.Type == tea.KeyRunes && m.tabActive && msg.String() == " " {
		m.tabActive = false
	}

	if msg.Type != tea.KeyRunes {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches()

	return m, cmd
}

// cycle moves the selected completion by step and writes it into the
// input. A sole candidate is accepted at once.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n
	case step > 0:
		m.tabActive = true
		m.preTabText, m.preTabCursor = m.input.Value(), m.input.Position()
		m.suggIdx = 0
	default:
		m.tabActive = true
		m.preTabText, m.preTabCursor = m.input.Value(), m.input.Position()
		m.suggIdx = n - 1
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the current word with s.
func (m *model) replaceWord(s string) {
	input := m.input.Value()
	cursor := m.wordStart + len(s)

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

func (m *model) refreshMatches() {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}
}

// recall shows history entry i, or an empty line past the newest entry.
func (m model) recall(i int) model {
	switch {
	case i < 0:
		return m
	case i >= m.history.Len():
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
	default:
		line, err := m.history.Line(i)
		if err != nil {
			return m
		}

		m.historyIdx = i
		m.input.SetValue(line)
		m.input.SetCursor(len(line))
	}

	m.tabActive = false
	m.refreshMatches()

	return m
}

// submit evaluates the input line and prints the outcome above the prompt.
func (m model) submit() (model, tea.Cmd) {
	line := m.input.Value()
	if strings.TrimSpace(line) == "" {
		return m, nil
	}

	_ = m.history.Add(line)
	m.historyIdx = m.history.Len()
	m.input.SetValue("")
	m.refreshMatches()

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	out, quit, cls := m.evaluate(line)

	switch {
	case quit:
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)
	case cls:
		return m, tea.ClearScreen
	default:
		return m, tea.Sequence(echo, tea.Println(out))
	}
}

// evaluate runs a command or renders a template line, returning the styled
// text to print.
func (m model) evaluate(line string) (out string, quit, cls bool) {
	if cmd, ok := strings.CutPrefix(strings.TrimSpace(line), ":"); ok {
		name, args, _ := strings.Cut(cmd, " ")

		switch name {
		case "q", "quit", "exit":
			return "", true, false
		case "c", "clear":
			return "", false, true
		case "h", "help":
			return hintStyle.Render(helpMessage), false, false
		case "v", "vars":
			return listing(m.engine.Environment().Vars()), false, false
		case "b", "blocks":
			return listing(m.engine.Environment().Blocks()), false, false
		case "u", "unset":
			return m.unset(strings.Fields(args)), false, false
		default:
			msg := "unknown command :" + name
			if s, ok := lang.Suggest(name, commands); ok {
				msg += " (did you mean :" + s + "?)"
			}

			return errorStyle.Render(msg), false, false
		}
	}

	rendered, err := m.engine.Render(m.ctxFunc(), line)
	if err != nil {
		return errorStyle.Render("error: " + err.Error()), false, false
	}

	return resultStyle.Render(rendered), false, false
}

// unset removes each named variable from the environment.
func (m model) unset(names []string) string {
	if len(names) == 0 {
		return errorStyle.Render("usage: :unset NAME...")
	}

	env := m.engine.Environment()

	for _, name := range names {
		if err := env.Unset(name); err != nil {
			return errorStyle.Render("error: " + err.Error())
		}
	}

	return hintStyle.Render("unset " + strings.Join(names, " "))
}

// listing formats name and value pairs one per line.
func listing(seq iter.Seq2[string, string]) string {
	var b strings.Builder

	for k, v := range seq {
		fmt.Fprintf(&b, "  %s = %s\n", nameStyle.Render(k), hintStyle.Render(preview(v)))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (none)")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// preview quotes v and shortens it to one line.
func preview(v string) string {
	const limit = 60

	s := fmt.Sprintf("%q", v)
	if len(s) > limit {
		s = s[:limit-4] + `..."`
	}

	return s
}
