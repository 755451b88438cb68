package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modpack-merger/internal/session"
	"modpack-merger/logger"
)

// guiCmd launches the interactive dashboard over a set of loaded packs.
var guiCmd = &cobra.Command{
	Use:   "gui [pack archive]...",
	Short: "Launch the interactive dashboard over the loaded packs",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configDir, _ := cmd.Flags().GetString("config")
		cfg := bootstrap(configDir)
		s := newSession(cfg)

		if err := loadPacksFromPaths(s, args); err != nil {
			logger.Log.Fatalw("failed to load packs", zap.Error(err))
		}

		runGUI(s)
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}

// guiRow is one flattened, renderable line of the pack/file tree.
type guiRow struct {
	label     string
	isPack    bool
	path      string
	excluded  bool
	reason    string
}

// Model is the dashboard's bubbletea state: a flattened view of the
// session's pack list plus any in-progress deep analysis.
type Model struct {
	session   *session.Session
	cursor    int
	analyzing bool
	spinner   spinner.Model
	err       string
	message   string
	width     int
	height    int
}

func (m Model) Init() tea.Cmd {
	return nil
}

type deepAnalysisDoneMsg struct{ err error }

func (m Model) runDeepAnalysis() tea.Cmd {
	return func() tea.Msg {
		err := m.session.RequestDeepAnalysis(context.Background())
		return deepAnalysisDoneMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case spinner.TickMsg:
		if m.analyzing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case deepAnalysisDoneMsg:
		m.analyzing = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.message = "deep analysis complete"
			m.err = ""
		}
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.rows()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "d":
		if !m.analyzing {
			m.analyzing = true
			m.err = ""
			return m, tea.Batch(m.runDeepAnalysis(), m.spinner.Tick)
		}
	}
	return m, nil
}

// rows flattens the current pack/file state into one renderable list.
func (m Model) rows() []guiRow {
	var rows []guiRow
	for _, pack := range m.session.Packs {
		rows = append(rows, guiRow{
			label:  fmt.Sprintf("%s  (%s, %s/%s)", pack.Name, pack.Type, pack.MinecraftVersion, pack.Loader),
			isPack: true,
		})
		for _, f := range pack.Files {
			rows = append(rows, guiRow{
				label:    f.Path,
				path:     f.Path,
				excluded: !f.Enabled,
				reason:   f.ConflictReason,
			})
		}
	}
	return rows
}

var (
	packStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("8")).Bold(true)
	excludedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	keptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	issueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

func (m Model) View() string {
	rows := m.rows()

	var out string
	for i, row := range rows {
		line := row.label
		if row.isPack {
			line = packStyle.Render(line)
		} else if row.excluded {
			line = excludedStyle.Render("  ✗ " + line + " — " + row.reason)
		} else {
			line = keptStyle.Render("  ✓ " + line)
		}
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		out += line + "\n"
	}

	if len(m.session.CompatIssues) > 0 {
		out += "\n" + issueStyle.Render("compatibility issues:") + "\n"
		for _, issue := range m.session.CompatIssues {
			out += issueStyle.Render("  "+issue.Message) + "\n"
		}
	}
	if m.session.DeepAnalysisPerformed() && len(m.session.DependencyIssues) > 0 {
		out += "\n" + issueStyle.Render("dependency issues:") + "\n"
		for _, issue := range m.session.DependencyIssues {
			out += issueStyle.Render(fmt.Sprintf("  [%s] %s requires %s %s", issue.Kind, issue.RequiredBy, issue.ModID, issue.RequiredRange)) + "\n"
		}
	}

	if m.analyzing {
		out += "\n" + m.spinner.View() + " running deep analysis...\n"
	}
	if m.err != "" {
		out += "\n" + excludedStyle.Render("error: "+m.err) + "\n"
	}
	if m.message != "" {
		out += "\n" + keptStyle.Render(m.message) + "\n"
	}

	out += "\n" + footerStyle.Render("↑/k: up  ↓/j: down  d: deep analysis  q: quit")
	return out
}

func runGUI(s *session.Session) {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{session: s, spinner: sp, width: 80, height: 24}
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("failed to run GUI", zap.Error(err))
	}
}
