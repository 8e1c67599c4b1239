// Package main provides the pokedex CLI entry point.
// This file implements the interactive browser using bubbletea.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pokedex/cmd/pokedex/ui"
	"pokedex/internal/catalog"
	"pokedex/internal/logging"
	"pokedex/internal/pokedex"
	"pokedex/internal/screen"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const searchDebounceKey = "search"

// detailView is what the detail pane publishes.
type detailView struct {
	detail  *catalog.EntityDetail
	stages  []pokedex.EvolutionStage
	warning string
}

type listingLoadedMsg struct {
	tok     screen.Token
	records []pokedex.DisplayRecord
	err     error
}

type detailLoadedMsg struct {
	pane *screen.State[detailView]
	tok  screen.Token
	view detailView
	err  error
}

// browserModel is the main model for the interactive browser
type browserModel struct {
	ctx context.Context
	px  *pokedex.Pokedex

	// UI Components
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	styles   ui.Styles
	markdown *ui.Markdown
	debounce ui.Debouncer

	// Screens
	listing *screen.State[[]pokedex.DisplayRecord]
	detail  *screen.State[detailView] // nil while the pane is closed

	// List state
	pageSize   int
	visible    []pokedex.DisplayRecord
	filtered   string // input value visible was computed for
	cursor     int
	top        int
	listFocus  bool
	listHeight int

	status    string
	statusErr bool
	width     int
	height    int
	quitting  bool
}

func newBrowserModel(ctx context.Context, px *pokedex.Pokedex, pageSize int, uiCfg browserUI) browserModel {
	styles := ui.NewStyles(ui.DetectTheme(uiCfg.darkMode))

	ti := textinput.New()
	ti.Placeholder = "Filter by name... (Enter to open, Tab for list, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 64
	ti.Width = 60
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(60, 20)
	vp.SetContent("")

	return browserModel{
		ctx:        ctx,
		px:         px,
		input:      ti,
		spinner:    sp,
		viewport:   vp,
		styles:     styles,
		markdown:   ui.NewMarkdown(styles.Theme, 56),
		debounce:   ui.NewDebouncer(searchDebounceKey, uiCfg.searchDebounce),
		listing:    screen.New[[]pokedex.DisplayRecord](ctx),
		pageSize:   pageSize,
		listHeight: uiCfg.listHeight,
		width:      100,
		height:     30,
	}
}

func (m browserModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.loadListing(),
	)
}

// loadListing starts a listing load tied to the listing screen.
func (m browserModel) loadListing() tea.Cmd {
	ctx, tok := m.listing.Begin()
	px, limit := m.px, m.pageSize
	return func() tea.Msg {
		records, err := px.Listing.Load(ctx, limit, 0)
		return listingLoadedMsg{tok: tok, records: records, err: err}
	}
}

// openDetail replaces the detail pane and starts loading name into it.
// With viaSearch the name is resolved through Search first, so names that
// are not in the loaded listing are looked up remotely.
func (m browserModel) openDetail(name string, viaSearch bool) (browserModel, tea.Cmd) {
	if m.detail != nil {
		m.detail.Close()
	}
	pane := screen.New[detailView](m.ctx)
	ctx, tok := pane.Begin()
	m.detail = pane
	m.viewport.SetContent("")
	m.viewport.GotoTop()
	m.setStatus(fmt.Sprintf("Loading %s...", name), false)

	listing, _ := m.listing.Get()
	px := m.px
	return m, func() tea.Msg {
		msg := detailLoadedMsg{pane: pane, tok: tok}

		var entity *catalog.EntityDetail
		if viaSearch {
			res, err := px.Search.Search(ctx, name, listing)
			if err != nil {
				msg.err = lookupError(name, err)
				return msg
			}
			if res.Detail != nil {
				entity = res.Detail
			} else if len(res.Matches) > 0 {
				name = res.Matches[0].Name
			}
		}
		if entity == nil {
			d, err := px.Detail.LoadByName(ctx, name)
			if err != nil {
				msg.err = lookupError(name, err)
				return msg
			}
			entity = d
		}

		stages, err := px.Evolution.Resolve(ctx, entity)
		msg.view = detailView{detail: entity, stages: stages}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				msg.err = err
				return msg
			}
			msg.view.warning = fmt.Sprintf("evolution line incomplete: %v", err)
		}
		return msg
	}
}

// closeDetail tears down the detail pane; its pending load is cancelled and
// its result, if it still arrives, is discarded.
func (m *browserModel) closeDetail() {
	if m.detail == nil {
		return
	}
	m.detail.Close()
	m.detail = nil
	m.viewport.SetContent("")
}

func (m *browserModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m browserModel) loading() bool {
	return m.listing.Loading() || (m.detail != nil && m.detail.Loading())
}

// applyFilter recomputes the visible rows from the published listing.
func (m *browserModel) applyFilter() {
	listing, _ := m.listing.Get()
	m.visible = pokedex.Filter(m.input.Value(), listing)
	m.filtered = m.input.Value()
	m.cursor = 0
	m.top = 0
}

func (m browserModel) rows() int {
	if m.listHeight > 0 {
		return m.listHeight
	}
	return max(m.height-9, 3)
}

func (m *browserModel) moveCursor(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visible)-1)
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if rows := m.rows(); m.cursor >= m.top+rows {
		m.top = m.cursor - rows + 1
	}
}

func (m browserModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.closeDetail()
	m.listing.Close()
	return m, tea.Quit
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(m.paneWidth()-4, 20)
		m.viewport.Height = max(m.height-9, 5)
		m.markdown = ui.NewMarkdown(m.styles.Theme, m.viewport.Width)
		if view, ok := m.currentDetail(); ok {
			m.viewport.SetContent(m.renderDetail(view))
		}
		m.moveCursor(0)
		return m, nil

	case ui.DebounceMsg:
		if m.debounce.Ready(msg) {
			m.applyFilter()
			logging.UIDebug("filter %q -> %d rows", m.input.Value(), len(m.visible))
		}
		return m, nil

	case listingLoadedMsg:
		return m.handleListing(msg), nil

	case detailLoadedMsg:
		return m.handleDetail(msg), nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m browserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()

	case tea.KeyEsc:
		if m.detail != nil {
			m.closeDetail()
			m.setStatus("", false)
			return m, nil
		}
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.debounce.Cancel()
			m.applyFilter()
		}
		return m, nil

	case tea.KeyTab:
		m.listFocus = !m.listFocus
		if m.listFocus {
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		return m, nil

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		if m.detail != nil {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		switch msg.Type {
		case tea.KeyUp:
			m.moveCursor(-1)
		case tea.KeyDown:
			m.moveCursor(1)
		case tea.KeyPgUp:
			m.moveCursor(-m.rows())
		case tea.KeyPgDown:
			m.moveCursor(m.rows())
		}
		return m, nil

	case tea.KeyEnter:
		// A pending filter is applied first so Enter never opens a stale row.
		if m.input.Value() != m.filtered {
			m.debounce.Cancel()
			m.applyFilter()
		}
		term := strings.TrimSpace(m.input.Value())
		var (
			next browserModel
			cmd  tea.Cmd
		)
		switch {
		case len(m.visible) > 0:
			next, cmd = m.openDetail(m.visible[m.cursor].Name, false)
		case term != "":
			next, cmd = m.openDetail(term, true)
		default:
			return m, nil
		}
		return next, tea.Batch(cmd, next.spinner.Tick)
	}

	if m.listFocus {
		if msg.String() == "q" {
			return m.quit()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		return m, tea.Batch(cmd, m.debounce.Trigger())
	}
	return m, cmd
}

func (m browserModel) handleListing(msg listingLoadedMsg) browserModel {
	if msg.err != nil && !pokedex.IsPartial(msg.err) {
		if err := m.listing.Abandon(msg.tok); err != nil {
			logging.UIDebug("dropped listing failure: %v", err)
			return m
		}
		m.setStatus(fmt.Sprintf("Failed to load listing: %v", msg.err), true)
		return m
	}

	if err := m.listing.Publish(msg.tok, msg.records); err != nil {
		logging.UIDebug("dropped listing result: %v", err)
		return m
	}
	m.applyFilter()
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Some entries failed to load: %v", msg.err), true)
	} else {
		m.setStatus(fmt.Sprintf("%d pokemon loaded", len(msg.records)), false)
	}
	return m
}

func (m browserModel) handleDetail(msg detailLoadedMsg) browserModel {
	if msg.err != nil {
		if err := msg.pane.Abandon(msg.tok); err != nil {
			logging.UIDebug("dropped detail failure: %v", err)
			return m
		}
		if msg.pane == m.detail {
			m.closeDetail()
			m.setStatus(msg.err.Error(), true)
		}
		return m
	}

	if err := msg.pane.Publish(msg.tok, msg.view); err != nil {
		// The pane was closed or replaced while loading.
		logging.UIDebug("dropped detail for %s: %v", msg.view.detail.Name, err)
		return m
	}
	if msg.pane != m.detail {
		return m
	}

	m.viewport.SetContent(m.renderDetail(msg.view))
	m.viewport.GotoTop()
	if msg.view.warning != "" {
		m.setStatus(msg.view.warning, true)
	} else {
		m.setStatus(ui.EvolutionLine(msg.view.stages), false)
	}
	return m
}

func (m browserModel) currentDetail() (detailView, bool) {
	if m.detail == nil {
		return detailView{}, false
	}
	return m.detail.Get()
}

func (m browserModel) renderDetail(view detailView) string {
	var sb strings.Builder
	if len(view.detail.Types) > 0 {
		badges := make([]string, len(view.detail.Types))
		for i, t := range view.detail.Types {
			badges[i] = m.styles.TypeBadge(t)
		}
		sb.WriteString(" " + strings.Join(badges, " ") + "\n")
	}
	sb.WriteString(m.markdown.Render(ui.DetailMarkdown(view.detail, view.stages)))
	for _, s := range view.stages {
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %s: %s", s.Name, s.AnimatedImageURL)) + "\n")
	}
	return sb.String()
}

func (m browserModel) paneWidth() int {
	if m.width >= 90 {
		return m.width / 2
	}
	return m.width
}

func (m browserModel) View() string {
	if m.quitting {
		return ""
	}

	header := m.renderHeader()

	inputArea := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Primary).
		Padding(0, 1).
		Render(m.input.View())

	body := m.renderList()
	if m.detail != nil {
		pane := m.renderPane()
		if m.width >= 90 {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, pane)
		} else {
			body = pane
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		inputArea,
		body,
		m.renderStatus(),
		m.renderFooter(),
	)
}

func (m browserModel) renderHeader() string {
	title := m.styles.Header.Render(" Pokédex ")

	var status string
	switch {
	case m.loading():
		status = m.styles.Warning.Render(m.spinner.View() + " Loading")
	default:
		listing, _ := m.listing.Get()
		status = m.styles.Success.Render(fmt.Sprintf("● %d/%d", len(m.visible), len(listing)))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status),
		m.styles.RenderDivider(m.width),
	)
}

func (m browserModel) renderList() string {
	width := m.width
	if m.detail != nil && m.width >= 90 {
		width = m.width - m.paneWidth()
	}

	if len(m.visible) == 0 {
		msg := "No matches. Press Enter to look the name up in the catalog."
		if _, ok := m.listing.Get(); !ok {
			msg = "Loading listing..."
		}
		return m.styles.Content.Width(width).Render(m.styles.Muted.Render(msg))
	}

	var sb strings.Builder
	end := min(m.top+m.rows(), len(m.visible))
	for i := m.top; i < end; i++ {
		line := "  " + m.visible[i].Name
		if i == m.cursor {
			line = m.styles.Cursor.Render("› ") + m.styles.Selected.Render(m.visible[i].Name)
		}
		sb.WriteString(line + "\n")
	}
	if end < len(m.visible) {
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  … %d more", len(m.visible)-end)))
	}
	return m.styles.Content.Width(width).Render(sb.String())
}

func (m browserModel) renderPane() string {
	content := m.viewport.View()
	if m.detail.Loading() {
		content = m.styles.Spinner.Render(m.spinner.View()) + " Loading..."
	}
	return m.styles.Pane.Width(max(m.paneWidth()-2, 20)).Render(content)
}

func (m browserModel) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.styles.Error.Render(m.status)
	}
	return m.styles.Info.Render(m.status)
}

func (m browserModel) renderFooter() string {
	help := "Type to filter • ↑/↓ move • Enter open • Esc close • Tab focus list • q quit (list) • Ctrl+C exit"
	return lipgloss.NewStyle().MarginTop(1).Render(m.styles.Footer.Render(help))
}

// browserUI is the subset of UI config the browser needs.
type browserUI struct {
	darkMode       bool
	searchDebounce time.Duration
	listHeight     int
}

// runInteractive launches the interactive browser.
func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := newBrowserModel(ctx, newPokedex(), cfg.Resolver.PageSize, browserUI{
		darkMode:       cfg.UI.DarkMode,
		searchDebounce: cfg.UI.GetSearchDebounce(),
		listHeight:     cfg.UI.ListHeight,
	})
	logging.UI("browser starting (page_size=%d)", cfg.Resolver.PageSize)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
