package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviedeck/internal/catalog"
	"github.com/vadimtrunov/moviedeck/internal/config"
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

const browseHelp = "←/→ page · 1-9 jump · g/G first/last · r reload · q quit"

// newBrowseCmd returns the "browse" subcommand for paging through a list interactively.
func newBrowseCmd() *cobra.Command {
	var (
		genreID int
		search  string
	)
	cmd := &cobra.Command{
		Use:   "browse [list]",
		Short: "Page through a TMDb list interactively",
		Long: "Open a list in the terminal and page through it.\n" +
			"Lists: " + strings.Join(listNames(), ", ") + " (default popular).",
		Example: `  moviedeck browse top_rated
  moviedeck browse tv_popular --genre 18
  moviedeck browse --search "blade runner"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return runBrowse(name, genreID, search)
		},
	}
	cmd.Flags().IntVar(&genreID, "genre", 0, "discover titles of this TMDb genre ID")
	cmd.Flags().StringVar(&search, "search", "", "search titles instead of listing")
	return cmd
}

// runBrowse starts the Bubble Tea browser on the resolved list.
func runBrowse(name string, genreID int, search string) error {
	list, title, err := resolveList(name, genreID, search)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// stdout belongs to the full-screen UI.
	logger := config.SetupLoggerTo(os.Stderr, cfg.App.LogLevel)
	client := initTMDb(cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctrl := catalog.NewController(list, client.Queries(), "tui", logger)
	p := tea.NewProgram(newBrowseModel(ctx, title, ctrl, client), tea.WithAltScreen())

	// Bridge OS signal cancellation into the Bubble Tea event loop.
	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// pageLoadedMsg carries the outcome of the fetch tagged seq.
type pageLoadedMsg struct {
	seq    uint64
	result *tmdb.PageResult
	err    error
}

// browseModel is the Bubble Tea model of the list browser. The controller
// holds the pagination state; the model only turns keys into selections
// and fetch results into Resolve calls.
type browseModel struct {
	ctx     context.Context
	title   string
	ctrl    *catalog.Controller
	fetcher catalog.Fetcher
	spinner spinner.Model
}

func newBrowseModel(ctx context.Context, title string, ctrl *catalog.Controller, fetcher catalog.Fetcher) browseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo

	return browseModel{
		ctx:     ctx,
		title:   title,
		ctrl:    ctrl,
		fetcher: fetcher,
		spinner: s,
	}
}

// Init requests the first page.
func (m browseModel) Init() tea.Cmd {
	req, ok, err := m.ctrl.Start()
	if err != nil || !ok {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.fetch(req))
}

// Update handles keys, fetch results and spinner ticks.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageLoadedMsg:
		m.resolve(msg)
		return m, nil

	case spinner.TickMsg:
		if m.ctrl.State().Status != catalog.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey maps navigation keys to page selections.
func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.ctrl.State()
	switch key := msg.String(); key {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "left", "h":
		return m, m.selectPage(s.PageIndex - 1)
	case "right", "l":
		return m, m.selectPage(s.PageIndex + 1)
	case "g", "home":
		return m, m.selectPage(0)
	case "G", "end":
		return m, m.selectPage(s.SelectablePages() - 1)
	case "r":
		return m, m.selectPage(s.PageIndex)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			return m, m.selectPage(int(key[0] - '1'))
		}
	}
	return m, nil
}

// selectPage moves to page index and returns the fetch for it. Selections
// outside the known page range are ignored.
func (m browseModel) selectPage(index int) tea.Cmd {
	wasLoading := m.ctrl.State().Status == catalog.StatusLoading
	req, err := m.ctrl.SelectPage(index)
	if err != nil {
		return nil
	}
	if wasLoading {
		return m.fetch(req)
	}
	return tea.Batch(m.spinner.Tick, m.fetch(req))
}

// resolve applies a fetch result. Results of superseded selections are dropped.
func (m browseModel) resolve(msg pageLoadedMsg) bool {
	return m.ctrl.Resolve(msg.seq, msg.result, msg.err)
}

func (m browseModel) fetch(req catalog.Request) tea.Cmd {
	return func() tea.Msg {
		result, err := m.fetcher.Fetch(m.ctx, req.Query)
		return pageLoadedMsg{seq: req.Seq, result: result, err: err}
	}
}

// View renders the header, the page body and the pagination control.
func (m browseModel) View() string {
	s := m.ctrl.State()

	var sb strings.Builder
	sb.WriteString(styleHeader.Render(m.title))
	sb.WriteString("\n")

	switch s.Status {
	case catalog.StatusIdle, catalog.StatusLoading:
		sb.WriteString(m.spinner.View() + styleDim.Render(fmt.Sprintf(" Loading page %d...", s.Page)))
		sb.WriteString("\n")
	case catalog.StatusErrored:
		sb.WriteString(styleError.Render(fmt.Sprintf("Could not load page %d: %v", s.Page, s.Err)))
		sb.WriteString("\n")
		sb.WriteString(styleDim.Render("Press r to try again."))
		sb.WriteString("\n")
	case catalog.StatusLoaded:
		if s.Empty() {
			sb.WriteString(styleDim.Render("No titles found."))
			sb.WriteString("\n")
			break
		}
		sb.WriteString(styleDim.Render(fmt.Sprintf("Page %d of %d · %d titles", s.Page, s.PageCount, s.TotalResults)))
		sb.WriteString("\n\n")
		sb.WriteString(renderItems(s))
	}

	if pager := renderPager(s); pager != "" {
		sb.WriteString("\n" + pager + "\n")
	}
	sb.WriteString("\n" + styleDim.Render(browseHelp) + "\n")
	return sb.String()
}
