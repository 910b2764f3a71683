package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// batchModel - live progress for parallel conversions
// =============================================================================

// fileStatus is one input's conversion state.
type fileStatus int

const (
	statusPending fileStatus = iota
	statusRunning
	statusDone
	statusFailed
)

// Messages sent into the model by the conversion workers.
type (
	// fileStartMsg marks an input as picked up by a worker.
	fileStartMsg struct{ index int }

	// fileDoneMsg carries one input's outcome.
	fileDoneMsg struct {
		index  int
		output string // written file, empty on failure
		cached bool
		err    error
	}

	// batchDoneMsg signals that every worker has finished.
	batchDoneMsg struct{}

	// frameMsg drives the running-state animation.
	frameMsg time.Time
)

var progressFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// batchModel is the bubbletea model for batch convert progress.
type batchModel struct {
	files     []string
	states    []fileState
	frame     int
	finished  bool
	cancelled bool
}

type fileState struct {
	status fileStatus
	output string
	cached bool
	err    error
}

// newBatchModel creates a progress model with every file pending.
func newBatchModel(files []string) batchModel {
	return batchModel{
		files:  files,
		states: make([]fileState, len(files)),
	}
}

func (m batchModel) Init() tea.Cmd {
	return nextFrame()
}

func nextFrame() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		}

	case frameMsg:
		if m.finished {
			return m, nil
		}
		m.frame++
		return m, nextFrame()

	case fileStartMsg:
		m.states[msg.index].status = statusRunning

	case fileDoneMsg:
		st := &m.states[msg.index]
		st.output = msg.output
		st.cached = msg.cached
		st.err = msg.err
		st.status = statusDone
		if msg.err != nil {
			st.status = statusFailed
		}

	case batchDoneMsg:
		m.finished = true
		return m, tea.Quit
	}
	return m, nil
}

func (m batchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Converting %d files", len(m.files))))
	b.WriteString("\n")

	for i, file := range m.files {
		st := m.states[i]
		switch st.status {
		case statusPending:
			b.WriteString("  " + StyleDim.Render("· "+file))
		case statusRunning:
			frame := progressFrames[m.frame%len(progressFrames)]
			b.WriteString("  " + styleIconSpinner.Render(frame) + " " + StyleHighlight.Render(file))
		case statusDone:
			line := "  " + styleIconSuccess.Render(iconSuccess) + " " + file
			if st.output != "" {
				line += StyleDim.Render(" " + iconArrow + " " + st.output)
			}
			if st.cached {
				line += " " + styleCached.Render(iconCached)
			}
			b.WriteString(line)
		case statusFailed:
			b.WriteString("  " + styleIconError.Render(iconError) + " " + file +
				StyleDim.Render(": "+st.err.Error()))
		}
		b.WriteString("\n")
	}

	done, failed := m.counts()
	summary := fmt.Sprintf("%d/%d done", done, len(m.files))
	if failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	b.WriteString(StyleDim.Render("  " + summary))
	b.WriteString("\n")

	return b.String()
}

// counts returns how many inputs completed and how many of those
// failed.
func (m batchModel) counts() (done, failed int) {
	for _, st := range m.states {
		switch st.status {
		case statusDone:
			done++
		case statusFailed:
			done++
			failed++
		}
	}
	return done, failed
}

// failures lists the inputs whose conversion failed, with their errors.
func (m batchModel) failures() []fileDoneMsg {
	var out []fileDoneMsg
	for i, st := range m.states {
		if st.status == statusFailed {
			out = append(out, fileDoneMsg{index: i, err: st.err})
		}
	}
	return out
}

// isTerminal reports whether f is attached to a terminal. The progress
// display falls back to plain logging on pipes and files.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
