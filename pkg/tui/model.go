// Package tui implements the terminal user interface: a live playback
// monitor with per-channel voice meters, fed by the same scheduled
// event list the offline renderer consumes.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anthropics/wavesynth/pkg/audio"
	"github.com/anthropics/wavesynth/synth"
)

// Event is one MIDI event scheduled at an absolute playback time, in
// seconds from the start.
type Event struct {
	Seconds float64
	Event   synth.MidiEvent
}

// Model is the main TUI model
type Model struct {
	Synth *synth.Synth
	Audio *audio.RealtimeOutput

	Events   []Event
	Duration float64
	Title    string

	// View state
	Width  int
	Height int

	start   time.Time
	next    int
	elapsed float64

	// peak holds a decaying per-channel meter level, so short notes stay
	// visible for a few frames instead of flickering for one.
	peak []float64
}

// NewModel creates a new TUI model. events must be sorted by time; rt is
// where due events are queued (they reach the synth on the audio
// callback goroutine, never from here).
func NewModel(s *synth.Synth, rt *audio.RealtimeOutput, events []Event, duration float64, title string) Model {
	return Model{
		Synth:    s,
		Audio:    rt,
		Events:   events,
		Duration: duration,
		Title:    title,
		Width:    100,
		Height:   30,
		start:    time.Now(),
		peak:     make([]float64, s.ChannelCount()),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
	)
}

// tickMsg is sent periodically for playback updates
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tickMsg:
		m.elapsed = time.Since(m.start).Seconds()
		for m.next < len(m.Events) && m.Events[m.next].Seconds <= m.elapsed {
			m.Audio.SendEvent(m.Events[m.next].Event)
			m.next++
		}
		for ch := range m.peak {
			level := float64(m.Synth.ChannelVoiceCount(ch))
			if level > m.peak[ch] {
				m.peak[ch] = level
			} else {
				m.peak[ch] *= 0.85
			}
		}
		if m.elapsed >= m.Duration {
			return m, tea.Quit
		}
		return m, tickCmd()
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.channelView())
	b.WriteString("\n")
	b.WriteString(m.footerView())

	return b.String()
}

func (m Model) headerView() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("14")).
		Render("WAVESYNTH")

	status := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")).
		Render(fmt.Sprintf("PLAYING %s/%s", clock(m.elapsed), clock(m.Duration)))

	info := fmt.Sprintf(" │ %s │ Voices:%3d │ Gain:%.2f │ %s",
		m.Title, m.Synth.ActiveVoiceCount(), m.Synth.Gain(), status)

	return title + info
}

func (m Model) channelView() string {
	meterWidth := m.Width - 24
	if meterWidth < 16 {
		meterWidth = 16
	}

	var b strings.Builder
	for ch := 0; ch < m.Synth.ChannelCount(); ch++ {
		_, _, bank, program := m.Synth.Program(ch)

		labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		if m.peak[ch] > 0.05 {
			labelStyle = labelStyle.Foreground(lipgloss.Color("15"))
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("CH%02d %3d:%-3d", ch+1, bank, program)))
		b.WriteString(" │")

		filled := int(m.peak[ch] * 2)
		if filled > meterWidth {
			filled = meterWidth
		}
		meterStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		if filled > meterWidth*3/4 {
			meterStyle = meterStyle.Foreground(lipgloss.Color("11"))
		}
		b.WriteString(meterStyle.Render(strings.Repeat("█", filled)))
		b.WriteString(strings.Repeat(" ", meterWidth-filled))
		b.WriteString("│\n")
	}
	return b.String()
}

func (m Model) footerView() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render("q:quit")
}

func clock(sec float64) string {
	s := int(sec)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
