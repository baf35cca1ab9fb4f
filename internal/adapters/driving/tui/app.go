package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// answerReceived carries the result of a question back to the model.
type answerReceived struct {
	Answer domain.Answer
	Err    error
}

// App is the interactive ask view following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *Styles

	// input is the question input field.
	input textinput.Model

	// spinner is shown while an answer is in flight.
	spinner spinner.Model

	// answer holds the most recent answer.
	answer *domain.Answer

	// err holds the last error that occurred.
	err error

	// busy indicates a question is in flight.
	busy bool

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Ask about consumer complaints..."
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		input:   ti,
		spinner: sp,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("crag - Complaint Q&A"),
		textinput.Blink,
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		inputWidth := msg.Width - 10
		if inputWidth < 20 {
			inputWidth = 20
		}
		a.input.Width = inputWidth
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case answerReceived:
		a.busy = false
		a.err = msg.Err
		if msg.Err == nil {
			answer := msg.Answer
			a.answer = &answer
		}
		a.input.Focus()
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return a, tea.Quit

	case tea.KeyEnter:
		if a.busy {
			return a, nil
		}
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.busy = true
		a.err = nil
		a.answer = nil
		a.input.Blur()
		return a, tea.Batch(a.spinner.Tick, a.askQuestion(question))

	default:
		// Other keys go to the input
	}

	if a.busy {
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// askQuestion returns a command that answers the question asynchronously.
func (a *App) askQuestion(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := a.ports.Query.AnswerQuestion(a.ctx, question)
		return answerReceived{Answer: answer, Err: err}
	}
}

// View implements tea.Model.
// It renders the current state of the application.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(a.styles.Title.Render("crag"))
	b.WriteString(a.styles.Muted.Render("  ask questions about consumer financial complaints"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.InputField.Render(a.input.View()))
	b.WriteString("\n\n")

	switch {
	case a.busy:
		b.WriteString(a.spinner.View())
		b.WriteString(a.styles.Muted.Render(" searching complaints..."))
	case a.err != nil:
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
	case a.answer != nil:
		b.WriteString(a.renderAnswer())
	default:
		b.WriteString(a.styles.Muted.Render("Type a question and press Enter. Esc quits."))
	}

	b.WriteString("\n")
	return b.String()
}

// renderAnswer renders the answer text and its sources.
func (a *App) renderAnswer() string {
	var b strings.Builder

	b.WriteString(a.styles.Question.Render("Q: " + a.answer.Question))
	b.WriteString("\n\n")

	if a.answer.Degraded {
		b.WriteString(a.styles.Warning.Render(a.answer.Text))
	} else {
		b.WriteString(a.styles.Answer.Render(a.answer.Text))
	}
	b.WriteString("\n")

	if len(a.answer.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(a.styles.Muted.Render(fmt.Sprintf("Sources (%d):", len(a.answer.Sources))))
		b.WriteString("\n")
		for _, src := range a.answer.Sources {
			line := fmt.Sprintf("- [%.2f] %s", src.Similarity, src.Metadata.Product)
			if src.Metadata.Issue != "" {
				line += " / " + src.Metadata.Issue
			}
			b.WriteString(a.styles.Source.Render(line))
			b.WriteString("\n")
			b.WriteString(a.styles.Source.Render("  " + src.Snippet()))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Ready returns whether the app has received its initial window size.
func (a *App) Ready() bool {
	return a.ready
}

// Busy returns whether a question is currently in flight.
func (a *App) Busy() bool {
	return a.busy
}

// CurrentAnswer returns the most recent answer, or nil.
func (a *App) CurrentAnswer() *domain.Answer {
	return a.answer
}

// Err returns the last error that occurred, or nil.
func (a *App) Err() error {
	return a.err
}
