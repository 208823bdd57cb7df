package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mingo-db/mingo/internal/grammar"
	"github.com/mingo-db/mingo/internal/parser"
	"github.com/mingo-db/mingo/internal/planner"
	"github.com/mingo-db/mingo/internal/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Padding(1, 2).
			Width(80)

	operationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 2)

	// JSON syntax highlighting styles
	jsonKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	jsonStringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	jsonNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	jsonKeywordStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("213"))

	outputStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
)

// View represents a TUI view interface.
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (View, tea.Cmd)
	View() string
}

// BuilderView is the interactive operation builder: a form assembling
// collection.method(arguments), executed against the bound store, with the
// rendered result in a scrollable viewport.
type BuilderView struct {
	exec *runtime.Executor

	form       *huh.Form
	collection string
	method     string
	arguments  string
	run        bool
	launched   bool

	lastOp   string
	result   string
	err      error
	width    int
	height   int
	viewport viewport.Model
}

// NewBuilderView creates a builder view bound to an executor.
func NewBuilderView(exec *runtime.Executor) View {
	b := &BuilderView{
		exec:     exec,
		width:    80,
		height:   24,
		viewport: viewport.New(80, 12),
	}
	b.form = b.newForm()
	return b
}

// newForm builds a fresh operation form. Collection and method keep their
// previous values so repeated operations on one collection are cheap.
func (b *BuilderView) newForm() *huh.Form {
	methodOptions := make([]huh.Option[string], 0, len(grammar.GetGrammar().Methods))
	for _, m := range grammar.GetGrammar().Methods {
		methodOptions = append(methodOptions, huh.NewOption(fmt.Sprintf("%s - %s", m.Name, m.Description), m.Name))
	}

	b.arguments = ""
	b.run = true

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Collection").
				Description("Target collection (created on first insert)").
				Placeholder("users").
				Suggestions(b.exec.Store().Names()).
				Value(&b.collection).
				Key("collection"),

			huh.NewSelect[string]().
				Title("Method").
				Options(methodOptions...).
				Value(&b.method).
				Key("method"),

			huh.NewInput().
				Title("Arguments").
				Description("JSON values separated by top-level commas").
				Placeholder(`{"name": "Ada", "age": 36}`).
				Value(&b.arguments).
				Key("arguments"),

			huh.NewConfirm().
				Title("Run it?").
				Value(&b.run).
				Key("run"),
		),
	)
}

// Init initializes the view.
func (b *BuilderView) Init() tea.Cmd {
	return b.form.Init()
}

// Update handles messages.
func (b *BuilderView) Update(msg tea.Msg) (View, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = max(msg.Width, 40)
		b.height = max(msg.Height, 10)
		b.resizeViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return b, tea.Quit
		case "pgup", "pgdown", "home", "end":
			// Arrow keys stay with the form; paging scrolls results.
			if b.result != "" {
				var cmd tea.Cmd
				b.viewport, cmd = b.viewport.Update(msg)
				return b, cmd
			}
		}

	case resultMsg:
		b.err = msg.err
		b.result = msg.rendered
		b.lastOp = msg.operation
		b.viewport.SetContent(highlightJSON(b.result))
		b.viewport.GotoTop()
		// Reset for the next operation.
		b.launched = false
		b.form = b.newForm()
		cmds = append(cmds, b.form.Init())
		return b, tea.Batch(cmds...)
	}

	form, cmd := b.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		b.form = f
		cmds = append(cmds, cmd)
	}

	if b.form.State == huh.StateCompleted && !b.launched {
		if b.run && b.collection != "" && b.method != "" {
			b.launched = true
			cmds = append(cmds, b.runOperation())
		} else {
			b.form = b.newForm()
			cmds = append(cmds, b.form.Init())
		}
	}

	return b, tea.Batch(cmds...)
}

// runOperation assembles the operation string and executes it off the
// update loop.
func (b *BuilderView) runOperation() tea.Cmd {
	operation := fmt.Sprintf("%s.%s(%s)", b.collection, b.method, b.arguments)
	exec := b.exec

	return func() tea.Msg {
		call, err := parser.Parse(operation)
		if err != nil {
			return resultMsg{operation: operation, err: err}
		}

		plan, err := planner.Plan(call)
		if err != nil {
			return resultMsg{operation: operation, err: err}
		}

		rendered, err := exec.ExecuteWithResponse(plan)
		if err != nil {
			return resultMsg{operation: operation, err: err}
		}
		return resultMsg{operation: operation, rendered: rendered}
	}
}

// resultMsg carries one operation's outcome back to the update loop.
type resultMsg struct {
	operation string
	rendered  string
	err       error
}

// View renders the view.
func (b *BuilderView) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("mingo - operation builder"))
	s.WriteString("\n\n")

	if b.lastOp != "" {
		s.WriteString(operationStyle.Render("> " + b.lastOp))
		s.WriteString("\n")
	}

	if b.err != nil {
		s.WriteString(errorStyle.Width(b.width - 4).Render(fmt.Sprintf("Error: %v", b.err)))
		s.WriteString("\n\n")
	} else if b.result != "" {
		s.WriteString(outputStyle.Width(b.viewport.Width + 4).Render(b.viewport.View()))
		s.WriteString("\n\n")
	}

	s.WriteString(b.form.View())
	s.WriteString("\n")
	if b.result != "" {
		s.WriteString("esc to quit - pgup/pgdn to scroll results\n")
	} else {
		s.WriteString("esc to quit\n")
	}

	return s.String()
}

// resizeViewport fits the result viewport to the window, leaving room for
// the title, the form, and the footer.
func (b *BuilderView) resizeViewport() {
	b.viewport.Width = max(b.width-8, 20)
	b.viewport.Height = max(b.height-16, 4)
	if b.result != "" {
		b.viewport.SetContent(highlightJSON(b.result))
	}
}

// highlightJSON applies lipgloss styling to rendered Extended JSON,
// line by line.
func highlightJSON(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = highlightLine(line)
	}
	return strings.Join(lines, "\n")
}

// highlightLine styles one line: string literals (keys bold), numbers, and
// the true/false/null keywords. Structural punctuation stays unstyled.
func highlightLine(line string) string {
	var out strings.Builder
	i := 0
	for i < len(line) {
		c := line[i]

		switch {
		case c == '"':
			end := closingQuote(line, i)
			if end < 0 {
				out.WriteString(jsonStringStyle.Render(line[i:]))
				return out.String()
			}
			literal := line[i : end+1]
			if end+1 < len(line) && line[end+1] == ':' {
				out.WriteString(jsonKeyStyle.Render(literal))
			} else {
				out.WriteString(jsonStringStyle.Render(literal))
			}
			i = end + 1

		case c == '-' || (c >= '0' && c <= '9'):
			start := i
			for i < len(line) && strings.IndexByte("0123456789.eE+-", line[i]) >= 0 {
				i++
			}
			out.WriteString(jsonNumberStyle.Render(line[start:i]))

		case strings.HasPrefix(line[i:], "true"):
			out.WriteString(jsonKeywordStyle.Render("true"))
			i += 4
		case strings.HasPrefix(line[i:], "false"):
			out.WriteString(jsonKeywordStyle.Render("false"))
			i += 5
		case strings.HasPrefix(line[i:], "null"):
			out.WriteString(jsonKeywordStyle.Render("null"))
			i += 4

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// closingQuote finds the index of the unescaped quote ending the string
// literal opened at open. Returns -1 when the literal never closes.
func closingQuote(line string, open int) int {
	for i := open + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
