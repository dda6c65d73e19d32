package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/splitplan/pkg/pipeline"
)

func newTestSession() *session {
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{})
	return &session{runner: pipeline.NewRunner(nil, nil, logger)}
}

func submit(t *testing.T, m tea.Model, line string) (tea.Model, tea.Cmd) {
	t.Helper()
	im := m.(interactiveModel)
	im.input.SetValue(line)
	return im.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestInteractiveModelPlan(t *testing.T) {
	var m tea.Model = newInteractiveModel(context.Background(), newTestSession())

	m, cmd := submit(t, m, "54:18:24")
	if cmd == nil {
		t.Fatal("enter should start a computation")
	}
	if !m.(interactiveModel).busy {
		t.Error("model should be busy while solving")
	}
	if got := m.(interactiveModel).input.Value(); got != "" {
		t.Errorf("input not cleared: %q", got)
	}

	m, _ = m.Update(cmd())
	view := m.View()
	if !strings.Contains(view, "4 layers, 4 splitters") {
		t.Errorf("view should show the plan:\n%s", view)
	}
	if m.(interactiveModel).busy {
		t.Error("model still busy after result")
	}
}

func TestInteractiveModelError(t *testing.T) {
	var m tea.Model = newInteractiveModel(context.Background(), newTestSession())

	m, cmd := submit(t, m, "3,x")
	m, _ = m.Update(cmd())
	if view := m.View(); !strings.Contains(view, "not an integer") {
		t.Errorf("view should show the error:\n%s", view)
	}

	// The prompt keeps working after an error.
	m, cmd = submit(t, m, "1,1")
	m, _ = m.Update(cmd())
	if view := m.View(); !strings.Contains(view, "1 layers") {
		t.Errorf("view after recovery:\n%s", view)
	}
}

func TestInteractiveModelQuit(t *testing.T) {
	tests := []struct {
		name string
		msg  func(m interactiveModel) (tea.Model, tea.Cmd)
	}{
		{"q", func(m interactiveModel) (tea.Model, tea.Cmd) {
			m.input.SetValue("q")
			return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		}},
		{"quit", func(m interactiveModel) (tea.Model, tea.Cmd) {
			m.input.SetValue("quit")
			return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		}},
		{"ctrl+c", func(m interactiveModel) (tea.Model, tea.Cmd) {
			return m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		}},
		{"ctrl+d", func(m interactiveModel) (tea.Model, tea.Cmd) {
			return m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := tt.msg(newInteractiveModel(context.Background(), newTestSession()))
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
			}
		})
	}
}

func TestInteractiveModelIgnoresEmptyAndBusy(t *testing.T) {
	var m tea.Model = newInteractiveModel(context.Background(), newTestSession())

	if _, cmd := submit(t, m, "   "); cmd != nil {
		t.Error("empty line should not start a computation")
	}

	m, _ = submit(t, m, "3:1")
	if _, cmd := submit(t, m, "1"); cmd != nil {
		t.Error("enter while busy should be ignored")
	}
}

func TestSessionNumbersFiles(t *testing.T) {
	s := newTestSession()
	s.outDir = t.TempDir()

	if _, err := s.handle(context.Background(), "bad"); err == nil {
		t.Fatal("expected error")
	}
	res, err := s.handle(context.Background(), "3:1")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.HasSuffix(res.file, "plan-1.svg") {
		t.Errorf("file = %q, want plan-1.svg after a failed line", res.file)
	}
}
