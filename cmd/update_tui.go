package cmd

import (
	"fmt"
	"strings"

	"workshop-catalog-updater/crawler"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// UpdateModel controls the UI for the update command
type UpdateModel struct {
	spinner      spinner.Model
	progressChan chan crawler.Progress
	dryRun       bool

	// State
	status string
	errors []string
	done   bool

	// Counters
	totalPages  int
	totalMods   int
	totalErrors int
}

func initialUpdateModel(dryRun bool) UpdateModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return UpdateModel{
		spinner:      s,
		progressChan: make(chan crawler.Progress, 100), // Buffer slightly to avoid blocking
		dryRun:       dryRun,
		status:       "Initializing...",
	}
}

func (m UpdateModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startUpdate(),
		m.waitForActivity(),
	)
}

func (m UpdateModel) startUpdate() tea.Cmd {
	return func() tea.Msg {
		// Run the session in a separate goroutine; runUpdate closes the channel.
		go runUpdate(m.dryRun, m.progressChan)
		return nil
	}
}

func (m UpdateModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return crawler.Progress{Type: "done"}
		}
		return msg
	}
}

func (m UpdateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// If done, allow any key to exit
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case crawler.Progress:
		switch msg.Type {
		case "done":
			m.done = true
			m.status = "Finished"
			return m, tea.Quit

		case "phase":
			m.status = msg.Message

		case "page":
			m.totalPages++
			m.status = fmt.Sprintf("Listing page %d (%s)", msg.Page, msg.Message)

		case "mod":
			m.totalMods++
			m.status = fmt.Sprintf("Checking %s (%d)...", msg.Message, msg.ModID)

		case "error":
			m.totalErrors++
			m.errors = append(m.errors, msg.Message)
			if len(m.errors) > 5 {
				m.errors = m.errors[len(m.errors)-5:]
			}
		}
		return m, m.waitForActivity()
	}

	return m, nil
}

var (
	tuiTitleStyle = lipgloss.NewStyle().Bold(true)
	tuiErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
	tuiDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m UpdateModel) View() string {
	var b strings.Builder

	b.WriteString(tuiTitleStyle.Render("Workshop catalog update"))
	b.WriteString("\n\n")

	if m.done {
		b.WriteString("Finished.\n")
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.status))
	}

	b.WriteString(tuiDimStyle.Render(fmt.Sprintf(
		"pages: %d  mods: %d  errors: %d", m.totalPages, m.totalMods, m.totalErrors)))
	b.WriteString("\n")

	for _, e := range m.errors {
		b.WriteString(tuiErrStyle.Render("! " + e))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString(tuiDimStyle.Render("\npress any key to exit"))
	} else {
		b.WriteString(tuiDimStyle.Render("\npress q to abort"))
	}
	return b.String()
}

// runUpdateTUI wraps the session in a live progress view.
func runUpdateTUI(dryRun bool) {
	p := tea.NewProgram(initialUpdateModel(dryRun))
	if _, err := p.Run(); err != nil {
		fmt.Printf("TUI error: %v\n", err)
	}
}
