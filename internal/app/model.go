package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mindfulmakers/ai-meditation/internal/api"
	"github.com/mindfulmakers/ai-meditation/internal/playback"
	"github.com/mindfulmakers/ai-meditation/internal/timeline"
	"github.com/mindfulmakers/ai-meditation/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// PanelFocus tracks which panel has keyboard focus.
type PanelFocus int

const (
	FocusLibrary PanelFocus = iota
	FocusTimeline
)

// Model is the root bubbletea model for the meditation player.
type Model struct {
	// Collaborators
	client *api.Client
	player *playback.Scheduler
	loop   *playback.Loop
	ctx    context.Context
	cancel context.CancelFunc

	// Library
	meditations []api.Record
	loading     bool
	cursor      int
	selectedID  string
	events      []timeline.Event

	// Published playback state, refreshed after every scheduler call
	playback playback.State

	// UI state
	focusedPanel   PanelFocus
	width          int
	height         int
	timelineScroll int

	// Errors
	errorMessage   string
	errorTransient bool

	// Status
	statusText string
}

// New creates a Model. player must run on loop; client may be nil when the
// library is fed by messages only.
func New(client *api.Client, player *playback.Scheduler, loop *playback.Loop) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		client:       client,
		player:       player,
		loop:         loop,
		ctx:          ctx,
		cancel:       cancel,
		loading:      client != nil,
		focusedPanel: FocusLibrary,
		statusText:   "Loading meditations...",
		playback:     player.State(),
	}
}

// Init fetches the library and starts draining the playback loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchCmd(m.ctx, m.client),
		nextCallbackCmd(m.loop),
	)
}

// fetchCmd loads the meditation list. Cancelling ctx aborts the request.
func fetchCmd(ctx context.Context, client *api.Client) tea.Cmd {
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		records, err := client.Fetch(ctx)
		if err != nil {
			return MeditationsErrorMsg{Err: err}
		}
		return MeditationsLoadedMsg{Records: records}
	}
}

// nextCallbackCmd waits for the next scheduler callback on the loop.
func nextCallbackCmd(loop *playback.Loop) tea.Cmd {
	if loop == nil {
		return nil
	}
	return func() tea.Msg {
		f, err := loop.Next(context.Background())
		if err != nil {
			return playbackLoopClosedMsg{}
		}
		return PlaybackCallbackMsg{Run: f}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case MeditationsLoadedMsg:
		m.loading = false
		m.meditations = msg.Records
		if m.selectedID == "" && len(m.meditations) > 0 {
			m.selectedID = m.meditations[0].ID
		}
		if m.cursor >= len(m.meditations) {
			m.cursor = max(0, len(m.meditations)-1)
		}
		m.refreshSelection()
		m.statusText = fmt.Sprintf("%d meditations", len(m.meditations))
		return m, nil

	case MeditationsErrorMsg:
		m.loading = false
		m.errorMessage = "Failed to load meditations: " + msg.Err.Error()
		m.errorTransient = true
		m.statusText = "Offline"
		log.Printf("fetch meditations: %v", msg.Err)
		return m, clearTransientErrorCmd()

	case PlaybackCallbackMsg:
		if msg.Run != nil {
			msg.Run()
		}
		m.playback = m.player.State()
		return m, nextCallbackCmd(m.loop)

	case playbackLoopClosedMsg:
		return m, nil

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		m.shutdown()
		return m, tea.Quit

	case KeySpace, KeyPlay:
		m.play()
		return m, nil

	case KeyStop:
		if m.playback.Playing || m.playback.ElapsedMs != 0 {
			m.player.Stop(true)
			m.playback = m.player.State()
		}
		return m, nil

	case KeyReload:
		if m.client == nil || m.loading {
			return m, nil
		}
		m.loading = true
		m.statusText = "Loading meditations..."
		return m, fetchCmd(m.ctx, m.client)

	case KeyTab:
		if m.focusedPanel == FocusLibrary {
			m.focusedPanel = FocusTimeline
		} else {
			m.focusedPanel = FocusLibrary
		}
		return m, nil

	case KeyJ, KeyDown:
		if m.focusedPanel == FocusLibrary {
			if m.cursor < len(m.meditations)-1 {
				m.cursor++
			}
		} else if m.timelineScroll < len(m.events)-1 {
			m.timelineScroll++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.focusedPanel == FocusLibrary {
			if m.cursor > 0 {
				m.cursor--
			}
		} else if m.timelineScroll > 0 {
			m.timelineScroll--
		}
		return m, nil

	case KeyEnter:
		if m.focusedPanel == FocusLibrary && m.cursor < len(m.meditations) {
			m.selectMeditation(m.meditations[m.cursor].ID)
		}
		return m, nil
	}

	return m, nil
}

// selectMeditation stops playback, clears the trigger log and selects id.
func (m *Model) selectMeditation(id string) {
	m.player.Stop(true)
	m.player.ClearTriggers()
	m.selectedID = id
	m.timelineScroll = 0
	m.refreshSelection()
	m.playback = m.player.State()
}

// play starts the selected meditation from the top. It does nothing while a
// session is already playing.
func (m *Model) play() {
	rec, ok := m.selected()
	if !ok || m.playback.Playing {
		return
	}

	m.player.Stop(true)
	m.player.ClearTriggers()
	if _, err := m.player.Play(m.events, max(0, rec.DurationMs)); err != nil {
		m.errorMessage = err.Error()
		m.errorTransient = false
	}
	m.playback = m.player.State()
}

// shutdown releases every timer, audio resource and in-flight request.
func (m *Model) shutdown() {
	m.player.Close()
	m.playback = m.player.State()
	if m.cancel != nil {
		m.cancel()
	}
	if m.loop != nil {
		m.loop.Close()
	}
}

func (m *Model) refreshSelection() {
	if rec, ok := m.selected(); ok {
		m.events = rec.Events()
	} else {
		m.events = nil
	}
}

func (m Model) selected() (api.Record, bool) {
	for _, rec := range m.meditations {
		if rec.ID == m.selectedID {
			return rec, true
		}
	}
	return api.Record{}, false
}

// progressPercent is elapsed over duration, capped at 100.
func (m Model) progressPercent() float64 {
	rec, ok := m.selected()
	if !ok {
		return 0
	}
	pct := float64(max(0, m.playback.ElapsedMs)) / float64(max(1, rec.DurationMs)) * 100
	return min(100, pct)
}

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 20
	}
	// Reserve: header(1) + divider(1) + divider(1) + error(1) + footer(1) + padding
	reserved := 6
	return max(8, m.height-reserved)
}

func (m Model) libraryPanelWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(20, m.width*30/100)
}

func (m Model) playerPanelWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width-m.libraryPanelWidth()-3)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderMainContent())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("MEDITATE")

	var dot string
	switch {
	case m.playback.Playing:
		dot = ui.PlayingDotStyle.Render("● PLAYING")
	case m.loading:
		dot = ui.LoadingStyle.Render("⟳ LOADING")
	default:
		dot = ui.IdleDotStyle.Render("○ IDLE")
	}

	status := ui.DimStyle.Render(" — " + m.statusText)
	return title + "  " + dot + status
}

func (m Model) renderMainContent() string {
	libraryW := m.libraryPanelWidth()
	playerW := m.playerPanelWidth()
	contentH := m.contentHeight()

	libraryLines := strings.Split(m.renderLibraryPanel(libraryW, contentH), "\n")
	playerLines := strings.Split(m.renderPlayerPanel(playerW, contentH), "\n")

	divider := ui.DividerStyle.Render("│")

	var rows []string
	for i := 0; i < contentH; i++ {
		left := strings.Repeat(" ", libraryW)
		if i < len(libraryLines) {
			left = libraryLines[i]
		}
		right := ""
		if i < len(playerLines) {
			right = playerLines[i]
		}
		rows = append(rows, left+divider+" "+right)
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderLibraryPanel(width, height int) string {
	label := fmt.Sprintf("MEDITATIONS (%d)", len(m.meditations))
	var header string
	if m.focusedPanel == FocusLibrary {
		header = ui.PanelTitleActiveStyle.Render(label)
	} else {
		header = ui.PanelTitleStyle.Render(label)
	}

	lines := []string{header}

	switch {
	case m.loading && len(m.meditations) == 0:
		lines = append(lines, ui.DimStyle.Render("  Loading meditations..."))
	case len(m.meditations) == 0:
		lines = append(lines, ui.DimStyle.Render("  No meditations available."))
	default:
		for i, rec := range m.meditations {
			marker := "  "
			if rec.ID == m.selectedID {
				marker = "♪ "
			}
			var line string
			if i == m.cursor && m.focusedPanel == FocusLibrary {
				line = ui.SelectedStyle.Render("> " + marker + rec.Title)
			} else {
				line = "  " + marker + rec.Title
			}
			lines = append(lines, truncateToWidth(line, width))
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, l := range lines {
		lines[i] = padRight(l, width)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderPlayerPanel(width, height int) string {
	rec, ok := m.selected()

	var lines []string

	// Title and duration badge
	if ok {
		lines = append(lines, ui.PanelTitleStyle.Render(rec.Title)+"  "+
			ui.BadgeStyle.Render(fmt.Sprintf("%d ms", rec.DurationMs)))
	} else {
		lines = append(lines, ui.PanelTitleStyle.Render("Select a meditation")+"  "+
			ui.BadgeStyle.Render("No selection"))
	}

	// Progress
	var durationMs int64
	if ok {
		durationMs = rec.DurationMs
	}
	barWidth := max(10, width-4)
	lines = append(lines, renderProgressBar(m.progressPercent(), barWidth))
	lines = append(lines, ui.DimStyle.Render(fmt.Sprintf("%dms / %dms", m.playback.ElapsedMs, durationMs)))
	lines = append(lines, "")

	// Visuals
	effectLabel := "Idle"
	if m.playback.Effect != "" {
		effectLabel = m.playback.Effect
	}
	lines = append(lines, ui.DimStyle.Render("Visuals ")+ui.EffectStyle(m.playback.Effect).Render(effectLabel))
	lines = append(lines, "")

	// Timeline events
	title := fmt.Sprintf("TIMELINE EVENTS (%d)", len(m.events))
	if m.focusedPanel == FocusTimeline {
		lines = append(lines, ui.PanelTitleActiveStyle.Render(title))
	} else {
		lines = append(lines, ui.PanelTitleStyle.Render(title))
	}

	triggerRows := max(1, len(m.playback.Triggers)) + 2
	eventRows := max(1, height-len(lines)-triggerRows)

	if len(m.events) == 0 {
		lines = append(lines, ui.DimStyle.Render("  This meditation has no timeline events."))
	} else {
		start := min(m.timelineScroll, len(m.events)-1)
		end := min(len(m.events), start+eventRows)
		for _, ev := range m.events[start:end] {
			line := "  " + ui.TimestampStyle.Render(fmt.Sprintf("%8dms", ev.AtMs)) + "  " +
				ui.KindStyle.Render(fmt.Sprintf("%-8s", ev.Kind)) + "  " + ev.Label()
			lines = append(lines, truncateToWidth(line, width))
		}
	}
	lines = append(lines, "")

	// Recent triggers
	lines = append(lines, ui.PanelTitleStyle.Render("RECENT TRIGGERS"))
	if len(m.playback.Triggers) == 0 {
		lines = append(lines, ui.DimStyle.Render("  No events triggered yet."))
	} else {
		for _, entry := range m.playback.Triggers {
			lines = append(lines, truncateToWidth("  "+ui.TriggerStyle.Render(entry), width))
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func renderProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return ui.ProgressFillStyle.Render(strings.Repeat("█", filled)) +
		ui.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	var parts []string

	if m.playback.Playing {
		parts = append(parts, ui.FooterKeyStyle.Render("s")+ui.FooterDescStyle.Render(" Stop"))
	} else {
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Play"))
		if m.playback.ElapsedMs != 0 {
			parts = append(parts, ui.FooterKeyStyle.Render("s")+ui.FooterDescStyle.Render(" Reset"))
		}
	}
	parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Select"))
	parts = append(parts, ui.FooterKeyStyle.Render("j/k")+ui.FooterDescStyle.Render(" Nav"))
	parts = append(parts, ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Focus"))
	if m.client != nil {
		parts = append(parts, ui.FooterKeyStyle.Render("r")+ui.FooterDescStyle.Render(" Reload"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("q")+ui.FooterDescStyle.Render(" Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	// Cut by cell width, keeping escape sequences whole.
	return ansi.Truncate(s, width, "…")
}
