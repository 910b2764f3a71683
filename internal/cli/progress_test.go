package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func update(t *testing.T, m batchModel, msg tea.Msg) (batchModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(batchModel), cmd
}

func TestBatchModelLifecycle(t *testing.T) {
	m := newBatchModel([]string{"a.jeff", "b.jeff"})

	m, _ = update(t, m, fileStartMsg{index: 0})
	if m.states[0].status != statusRunning {
		t.Errorf("states[0] = %v, want running", m.states[0].status)
	}

	m, _ = update(t, m, fileDoneMsg{index: 0, output: "a.hugr", cached: true})
	if m.states[0].status != statusDone {
		t.Errorf("states[0] = %v, want done", m.states[0].status)
	}

	m, _ = update(t, m, fileDoneMsg{index: 1, err: errors.New("linearity: qubit leaked")})
	if m.states[1].status != statusFailed {
		t.Errorf("states[1] = %v, want failed", m.states[1].status)
	}

	done, failed := m.counts()
	if done != 2 || failed != 1 {
		t.Errorf("counts() = (%d, %d), want (2, 1)", done, failed)
	}

	m, cmd := update(t, m, batchDoneMsg{})
	if !m.finished {
		t.Error("model should be finished after batchDoneMsg")
	}
	if cmd == nil {
		t.Error("batchDoneMsg should quit the program")
	}
}

func TestBatchModelFailures(t *testing.T) {
	m := newBatchModel([]string{"a.jeff", "b.jeff", "c.jeff"})
	m, _ = update(t, m, fileDoneMsg{index: 0, output: "a.hugr"})
	m, _ = update(t, m, fileDoneMsg{index: 2, err: errors.New("decode: bad magic")})

	failures := m.failures()
	if len(failures) != 1 {
		t.Fatalf("failures() returned %d entries, want 1", len(failures))
	}
	if failures[0].index != 2 {
		t.Errorf("failure index = %d, want 2", failures[0].index)
	}
	if failures[0].err == nil {
		t.Error("failure should carry its error")
	}
}

func TestBatchModelCancelKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := newBatchModel([]string{"a.jeff"})
		m, cmd := update(t, m, tea.KeyMsg{Type: key})
		if !m.cancelled {
			t.Errorf("key %v should cancel the batch", key)
		}
		if cmd == nil {
			t.Errorf("key %v should quit the program", key)
		}
	}
}

func TestBatchModelView(t *testing.T) {
	m := newBatchModel([]string{"a.jeff", "b.jeff"})
	m, _ = update(t, m, fileStartMsg{index: 0})
	m, _ = update(t, m, fileDoneMsg{index: 1, output: "b.hugr"})

	view := m.View()
	for _, want := range []string{"Converting 2 files", "a.jeff", "b.hugr", "1/2 done"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestBatchModelFrameAdvances(t *testing.T) {
	m := newBatchModel([]string{"a.jeff"})

	m, cmd := update(t, m, frameMsg{})
	if m.frame != 1 {
		t.Errorf("frame = %d, want 1", m.frame)
	}
	if cmd == nil {
		t.Error("frame message should schedule the next tick")
	}

	// Once finished the animation stops.
	m, _ = update(t, m, batchDoneMsg{})
	_, cmd = update(t, m, frameMsg{})
	if cmd != nil {
		t.Error("finished model should not schedule more frames")
	}
}
