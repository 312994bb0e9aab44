package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var spinnerFrames = []string{"/", "-", "\\", "|"}

const spinnerInterval = 100 * time.Millisecond

// SpinnerModel animates a single in-flight conversion. It quits on its own
// when done is closed.
type SpinnerModel struct {
	label    string
	done     <-chan struct{}
	frame    int
	quitting bool
}

type tickMsg time.Time

type finishedMsg struct{}

func NewSpinner(label string, done <-chan struct{}) SpinnerModel {
	return SpinnerModel{label: label, done: done}
}

func (m SpinnerModel) Init() tea.Cmd {
	return tea.Batch(tick(), waitDone(m.done))
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.frame++
		return m, tick()
	case finishedMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m SpinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return styleName.Render(m.label) + " " + styleFormats.Render(spinnerFrames[m.frame%len(spinnerFrames)])
}

func tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitDone(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return finishedMsg{}
	}
}
