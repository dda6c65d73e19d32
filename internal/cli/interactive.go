package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/splitplan/pkg/errors"
	"github.com/matzehuels/splitplan/pkg/pipeline"
	"github.com/matzehuels/splitplan/pkg/splitter"
)

const promptText = "demand> "

type interactiveFlags struct {
	outDir   string
	detailed bool
	plain    bool
}

// interactiveCommand creates the interactive command.
func (c *CLI) interactiveCommand() *cobra.Command {
	var flags interactiveFlags

	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Prompt for demand ratios and print their plans",
		Long: `Prompt for demand ratios and print their plans.

Enter a ratio such as 54:18:24 to see its layers. Invalid input is reported
and the prompt continues. Type q or quit, or send EOF, to leave.

With --out-dir every plan is also drawn to plan-N.svg in that directory.
A full-screen prompt is used on a terminal, a plain line loop otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			s := c.newSession(runner, flags)
			if !flags.plain && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
				return runTUI(ctx, s)
			}
			return runLineLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), s)
		},
	}

	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "write each plan's diagram to plan-N.svg in this directory")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label diagram arms with their share of the input")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "use the line prompt even on a terminal")

	return cmd
}

// =============================================================================
// Session
// =============================================================================

// session computes plans for successive prompt lines.
type session struct {
	runner    *pipeline.Runner
	outDir    string
	detailed  bool
	direction string
	maxLayers int
	count     int
}

type sessionResult struct {
	plan   *splitter.Plan
	cached bool
	file   string // written diagram, if any
}

func (c *CLI) newSession(runner *pipeline.Runner, flags interactiveFlags) *session {
	cfg := c.config()
	return &session{
		runner:    runner,
		outDir:    flags.outDir,
		detailed:  flags.detailed || cfg.Render.Detailed,
		direction: cfg.Render.Direction,
		maxLayers: cfg.Plan.MaxLayers,
	}
}

// handle solves one line of input and writes its diagram when an output
// directory is set. Files are numbered by successful plans only.
func (s *session) handle(ctx context.Context, line string) (*sessionResult, error) {
	demand, err := parseDemand(line)
	if err != nil {
		return nil, err
	}

	p, cached, err := s.runner.PlanWithCacheInfo(ctx, pipeline.Options{Demand: demand, MaxLayers: s.maxLayers})
	if err != nil {
		return nil, err
	}
	res := &sessionResult{plan: p, cached: cached}
	if s.outDir == "" {
		s.count++
		return res, nil
	}

	name := fmt.Sprintf("plan-%d.svg", s.count+1)
	if err := errors.ValidateOutputFilename(name); err != nil {
		return nil, err
	}
	artifacts, err := s.runner.Render(ctx, p, pipeline.Options{
		Formats:   []string{pipeline.FormatSVG},
		Detailed:  s.detailed,
		Direction: s.direction,
	})
	if err != nil {
		return nil, fmt.Errorf("render diagram: %w", err)
	}
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.outDir, err)
	}
	path := filepath.Join(s.outDir, name)
	if err := os.WriteFile(path, artifacts[pipeline.FormatSVG], 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	s.count++
	res.file = path
	return res, nil
}

// =============================================================================
// Line Loop
// =============================================================================

// runLineLoop reads demands from in until q, quit or EOF.
func runLineLoop(ctx context.Context, in io.Reader, out io.Writer, s *session) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptText)
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case isQuit(line):
			return nil
		}

		res, err := s.handle(ctx, line)
		if err != nil {
			printError(out, "%s", errors.UserMessage(err))
			continue
		}
		fmt.Fprintln(out, formatPlan(res.plan))
		if res.file != "" {
			printFile(out, res.file)
		}
	}
}

// =============================================================================
// Terminal UI
// =============================================================================

// planResultMsg carries a finished computation back to the model.
type planResultMsg struct {
	line string
	res  *sessionResult
	err  error
}

// interactiveModel is the bubbletea model for the terminal prompt.
type interactiveModel struct {
	ctx     context.Context
	session *session
	input   textinput.Model
	busy    bool
	line    string
	result  *sessionResult
	err     error
}

func newInteractiveModel(ctx context.Context, s *session) interactiveModel {
	ti := textinput.New()
	ti.Prompt = promptText
	ti.Placeholder = "54:18:24"
	ti.CharLimit = 256
	ti.Focus()
	return interactiveModel{ctx: ctx, session: s, input: ti}
}

func runTUI(ctx context.Context, s *session) error {
	_, err := tea.NewProgram(newInteractiveModel(ctx, s), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (m interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			if isQuit(line) {
				return m, tea.Quit
			}
			if line == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.input.Reset()
			return m, m.compute(line)
		}
	case planResultMsg:
		m.busy = false
		m.line = msg.line
		m.result = msg.res
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// compute runs the session off the UI loop. The session is only touched
// from one command at a time because input is ignored while busy.
func (m interactiveModel) compute(line string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.session.handle(m.ctx, line)
		return planResultMsg{line: line, res: res, err: err}
	}
}

func (m interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Splitter planner"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("ratio e.g. 54:18:24  ⏎ plan  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.line + ": " + errors.UserMessage(m.err))
		b.WriteString("\n\n")
	case m.result != nil:
		b.WriteString(formatPlan(m.result.plan))
		b.WriteString("\n")
		if m.result.file != "" {
			b.WriteString("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(m.result.file) + "\n")
		}
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString(StyleDim.Render("solving..."))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}
