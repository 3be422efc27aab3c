package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/DaanHessen/sci-adventure/internal/engine"
	"github.com/DaanHessen/sci-adventure/internal/persist"
	"github.com/DaanHessen/sci-adventure/internal/util"
)

const (
	viewMainMenu = "main_menu"
	viewScene    = "scene"
	viewSaveList = "save_list"
	viewHelp     = "help"
	viewError    = "error"
	viewEnding   = "ending"
)

const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

type styleSet struct {
	title       lipgloss.Style
	topBar      lipgloss.Style
	bottomBar   lipgloss.Style
	menuBox     lipgloss.Style
	transcript  lipgloss.Style
	accent      lipgloss.Style
	muted       lipgloss.Style
	inputPrompt lipgloss.Style
	borderColor lipgloss.Color
}

// model is the bubbletea model driving one interactive session: it owns
// no game rules itself, only input handling and rendering, and forwards
// every command line to engine.Engine.Submit.
type model struct {
	ctx       context.Context
	eng       *engine.Engine
	store     *persist.Store
	profileID uuid.UUID
	log       util.Logger
	version   string

	themeName string
	palette   palette
	styles    styleSet

	view  string
	input string

	transcript []string

	slots       []string
	slotIndex   int
	slotMessage string
	saveMode    bool
	slotInput   string
	editingSlot bool

	width, height           int
	scrollOffset, maxScroll int

	endingID string
	gameOver bool

	startupErr   error
	errorTitle   string
	errorMessage string

	events *hostEventSink
}

// hostEventSink buffers engine.HostEvent values between the moment the
// engine's EventBus fires them (synchronously, inside Submit/Tick) and the
// next point the bubbletea Update loop can safely mutate the model. A
// method bound directly to a model value would close over whichever copy
// existed at subscribe time, not the one bubbletea is currently rendering
// (Update takes and returns model by value), so the subscriber here writes
// to a stable pointer instead and the model drains it after each call.
type hostEventSink struct {
	pending []engine.HostEvent
}

func (s *hostEventSink) push(ev engine.HostEvent) { s.pending = append(s.pending, ev) }

func (s *hostEventSink) drain() []engine.HostEvent {
	if len(s.pending) == 0 {
		return nil
	}
	out := s.pending
	s.pending = nil
	return out
}

func initialModel(ctx context.Context, eng *engine.Engine, store *persist.Store, profileID uuid.UUID, log util.Logger, version string, startupErr error) model {
	m := model{
		ctx:       ctx,
		eng:       eng,
		store:     store,
		profileID: profileID,
		log:       log,
		version:   version,
		view:      viewMainMenu,
	}
	m.applyTheme("catppuccin")
	if startupErr != nil {
		m.errorTitle = "Startup Error"
		m.errorMessage = startupErr.Error()
		m.view = viewError
	}
	if eng != nil {
		m.events = &hostEventSink{}
		sink := m.events
		eng.Events().Subscribe(sink.push)
	}
	return m
}

// drainHostEvents surfaces engine-emitted host events the transcript
// wouldn't otherwise show on their own: an achievement toast and a
// relationship shift note. Most HostEvent kinds (message, room-changed,
// ...) are already reflected in the CommandResult submitCommand renders,
// so only the ones with no other transcript presence get a line here.
// Callers must invoke this right after any eng.Submit/eng.Tick call.
func (m *model) drainHostEvents() {
	if m.events == nil {
		return
	}
	for _, ev := range m.events.drain() {
		switch ev.Kind {
		case engine.HostEventAchievementUnlocked:
			for _, def := range m.eng.World().Achievements {
				if def.ID == ev.AchievementID {
					m.pushLine(m.styles.accent.Render("Achievement unlocked: " + def.Name))
					break
				}
			}
		case engine.HostEventRelationshipChanged:
			if npc, ok := m.eng.World().NPCs[ev.NPCID]; ok {
				m.pushLine(m.styles.muted.Render(fmt.Sprintf("(%s's opinion of you is now %d)", npc.Name, ev.Relationship)))
			}
		}
	}
}

func (m *model) applyTheme(name string) {
	p := paletteFor(name)
	m.themeName = name
	m.palette = p
	m.styles = styleSet{
		title:       lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		topBar:      lipgloss.NewStyle().Background(p.Surface).Foreground(p.Text).Bold(true).Padding(0, 1),
		bottomBar:   lipgloss.NewStyle().Background(p.Surface).Foreground(p.Muted).Padding(0, 1),
		menuBox:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(p.Border).Background(p.Surface).Foreground(p.Text).Padding(1, 2),
		transcript:  lipgloss.NewStyle().Foreground(p.Text),
		accent:      lipgloss.NewStyle().Foreground(p.Accent),
		muted:       lipgloss.NewStyle().Foreground(p.Muted),
		inputPrompt: lipgloss.NewStyle().Foreground(p.AccentAlt).Bold(true),
		borderColor: p.Border,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tickCmd() }

// startAdventure enters the scene view and prints the starting room's
// description, the same way the dispatcher would print it for "look".
func (m *model) startAdventure() {
	m.transcript = nil
	m.gameOver = false
	m.endingID = ""
	res, err := m.eng.Submit("look")
	if err != nil {
		m.pushLine(m.styles.muted.Render(err.Error()))
	} else {
		m.pushLine(res.Message)
	}
	m.drainHostEvents()
	m.view = viewScene
}

func (m *model) pushLine(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	m.transcript = append(m.transcript, s)
	if len(m.transcript) > 500 {
		m.transcript = m.transcript[len(m.transcript)-500:]
	}
	m.scrollOffset = 0
}

func (m *model) submitCommand() {
	line := strings.TrimSpace(m.input)
	m.input = ""
	if line == "" {
		return
	}
	m.pushLine(m.styles.accent.Render("> " + line))
	res, err := m.eng.Submit(line)
	if err != nil {
		m.pushLine(m.styles.muted.Render(err.Error()))
		m.drainHostEvents()
		return
	}
	m.pushLine(res.Message)
	m.drainHostEvents()
	if res.GameEnded {
		m.gameOver = true
		m.endingID = res.EndingID
		m.view = viewEnding
	}
}

func (m *model) refreshSlots() {
	if m.store == nil {
		return
	}
	slots, err := m.store.List(m.ctx, m.profileID)
	if err != nil {
		m.slotMessage = err.Error()
		return
	}
	m.slots = slots
	if m.slotIndex >= len(m.slots) {
		m.slotIndex = len(m.slots) - 1
	}
	if m.slotIndex < 0 {
		m.slotIndex = 0
	}
}

func (m *model) saveToSlot(slot string) {
	if m.store == nil || slot == "" {
		return
	}
	snap := m.eng.Overlay().Snapshot(time.Now().Unix())
	if err := m.store.Save(m.ctx, m.profileID, slot, snap); err != nil {
		m.slotMessage = "save failed: " + err.Error()
		return
	}
	m.slotMessage = "saved to " + slot
	m.refreshSlots()
}

func (m *model) loadFromSlot(slot string) {
	if m.store == nil || slot == "" {
		return
	}
	snap, err := m.store.Load(m.ctx, m.profileID, slot, m.eng.World().Digest)
	if err != nil {
		m.slotMessage = "load failed: " + err.Error()
		return
	}
	if err := m.eng.Overlay().Restore(snap); err != nil {
		m.slotMessage = "restore failed: " + err.Error()
		return
	}
	m.transcript = nil
	m.pushLine(m.styles.muted.Render("Game restored from " + slot + "."))
	m.view = viewScene
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.view == viewScene {
			m.eng.Tick(int64(tickInterval / time.Millisecond))
			m.drainHostEvents()
		}
		return m, tickCmd()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewError:
		if (k == "enter" || k == "esc") && m.eng != nil {
			m.view = viewMainMenu
		}
		return m, nil
	case viewMainMenu:
		switch k {
		case "1":
			m.startAdventure()
		case "2":
			m.refreshSlots()
			m.saveMode = false
			m.view = viewSaveList
		case "3":
			m.view = viewHelp
		case "q":
			return m, tea.Quit
		}
		return m, nil
	case viewHelp:
		if k == "esc" || k == "q" || k == "?" {
			m.view = viewMainMenu
		}
		return m, nil
	case viewEnding:
		if k == "enter" || k == "esc" {
			m.view = viewMainMenu
		}
		return m, nil
	case viewSaveList:
		return m.handleSaveListKey(msg)
	case viewScene:
		return m.handleSceneKey(msg)
	}
	return m, nil
}

func (m model) handleSaveListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if m.editingSlot {
		switch msg.Type {
		case tea.KeyEnter:
			name := strings.TrimSpace(m.slotInput)
			m.editingSlot = false
			if name != "" {
				m.saveToSlot(name)
			}
			m.slotInput = ""
		case tea.KeyEsc:
			m.editingSlot = false
			m.slotInput = ""
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(m.slotInput) > 0 {
				m.slotInput = m.slotInput[:len(m.slotInput)-1]
			}
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				if r >= 32 && r < 127 {
					m.slotInput += string(r)
				}
			}
		}
		return m, nil
	}
	switch k {
	case "up", "k":
		if m.slotIndex > 0 {
			m.slotIndex--
		}
	case "down", "j":
		if m.slotIndex < len(m.slots)-1 {
			m.slotIndex++
		}
	case "n":
		m.editingSlot = true
		m.slotInput = ""
	case "enter":
		if m.slotIndex < len(m.slots) {
			m.loadFromSlot(m.slots[m.slotIndex])
		}
	case "esc", "q":
		if len(m.transcript) > 0 {
			m.view = viewScene
		} else {
			m.view = viewMainMenu
		}
	}
	return m, nil
}

func (m model) handleSceneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.submitCommand()
		return m, nil
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	}
	switch msg.String() {
	case "f5":
		m.refreshSlots()
		m.saveMode = true
		m.view = viewSaveList
	case "f9":
		m.refreshSlots()
		m.saveMode = false
		m.view = viewSaveList
	case "pgup":
		m.scrollOffset += 6
	case "pgdown":
		if m.scrollOffset > 0 {
			m.scrollOffset -= 6
		}
	}
	return m, nil
}

func (m model) View() string {
	switch m.view {
	case viewError:
		return m.renderErrorScreen()
	case viewMainMenu:
		return m.renderMainMenu()
	case viewHelp:
		return m.renderHelp()
	case viewSaveList:
		return m.renderSaveList()
	case viewEnding:
		return m.renderEnding()
	case viewScene:
		return m.renderScene()
	default:
		return ""
	}
}

func (m *model) boxDims(minW, minH int) (int, int) {
	w, h := m.width, m.height
	if w < minW {
		w = minW
	}
	if h < minH {
		h = minH
	}
	return w, h
}

func (m *model) renderErrorScreen() string {
	width, height := m.boxDims(60, 12)
	msg := m.errorMessage
	if strings.TrimSpace(msg) == "" {
		msg = "The world package failed to load."
	}
	hint := "Press Enter to return to the main menu."
	if m.eng == nil {
		hint = "Press Ctrl+C to quit."
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render(m.errorTitle),
		m.styles.muted.Render(msg+"\n\n"+hint),
	)
	box := m.styles.menuBox.Width(56).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m *model) renderMainMenu() string {
	width, height := m.boxDims(50, 12)
	title := m.eng.World().Title
	if title == "" {
		title = "ADVENTURE"
	}
	options := []string{
		"[1] Start / Resume",
		"[2] Restore Game",
		"[3] About",
		"",
		"Q Quit",
	}
	body := strings.Join(options, "\n")
	box := m.styles.menuBox.Width(46).Render(lipgloss.JoinVertical(lipgloss.Left, m.styles.title.Render(strings.ToUpper(title)), "", body))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m *model) renderHelp() string {
	width, height := m.boxDims(60, 16)
	lines := []string{
		"Type commands in plain English: look, take lamp, go north,",
		"open door, give coin to guard, inventory, score.",
		"",
		"F5 save   F9 restore   PgUp/PgDn scroll   Ctrl+C quit",
		"",
		"Press Esc to return.",
	}
	box := m.styles.menuBox.Width(56).Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{m.styles.title.Render("About"), ""}, lines...)...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m *model) renderEnding() string {
	width, height := m.boxDims(60, 12)
	msg := "Ending: " + m.endingID
	if m.endingID == "" {
		msg = "Your adventure has ended."
	}
	box := m.styles.menuBox.Width(56).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render("THE END"), "", m.styles.accent.Render(msg), "",
		m.styles.muted.Render("Press Enter to return to the main menu."),
	))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m *model) renderSaveList() string {
	width, height := m.boxDims(60, 16)
	label := "Restore Game"
	if m.saveMode {
		label = "Save Game"
	}
	lines := []string{m.styles.title.Render(label), ""}
	if len(m.slots) == 0 {
		lines = append(lines, m.styles.muted.Render("(no saves yet)"))
	}
	for i, slot := range m.slots {
		marker := "  "
		if i == m.slotIndex {
			marker = "> "
		}
		lines = append(lines, marker+slot)
	}
	lines = append(lines, "")
	if m.editingSlot {
		lines = append(lines, m.styles.inputPrompt.Render("New slot name: "+m.slotInput+"_"))
	} else {
		lines = append(lines, m.styles.muted.Render("Enter: restore   N: save as new slot   Esc: back"))
	}
	if m.slotMessage != "" {
		lines = append(lines, "", m.styles.accent.Render(m.slotMessage))
	}
	box := m.styles.menuBox.Width(56).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m *model) renderScene() string {
	w := m.width
	if w <= 0 {
		w = 100
	}
	h := m.height
	if h <= 0 {
		h = 30
	}
	top := m.renderTopBar(w)
	bottom := m.renderBottomBar()
	transcriptHeight := h - 5
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	rendered := m.renderTranscript(w, transcriptHeight)
	inputLine := m.styles.inputPrompt.Render("> ") + m.input + m.styles.muted.Render("_")
	return lipgloss.JoinVertical(lipgloss.Left, top, rendered, inputLine, bottom)
}

func (m *model) renderTranscript(width, height int) string {
	var rendered []string
	for _, entry := range m.transcript {
		md := entry
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width)); err == nil {
			if out, err := r.Render(md); err == nil {
				md = strings.TrimRight(out, "\n")
			}
		}
		rendered = append(rendered, md)
	}
	joined := strings.Join(rendered, "\n")
	lines := strings.Split(joined, "\n")
	m.maxScroll = 0
	if len(lines) > height {
		m.maxScroll = len(lines) - height
	}
	if m.scrollOffset > m.maxScroll {
		m.scrollOffset = m.maxScroll
	}
	start := len(lines) - height - m.scrollOffset
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
	}
	visible := lines[start:end]
	return m.styles.transcript.Copy().Width(width).Height(height).Render(strings.Join(visible, "\n"))
}

func (m *model) renderTopBar(w int) string {
	ov := m.eng.Overlay()
	room, _ := m.eng.World().RoomByID(ov.CurrentRoomID)
	left := room.Name
	if left == "" {
		left = ov.CurrentRoomID
	}
	right := fmt.Sprintf("Score %d/%d  Moves %d", ov.Progression.Score, m.eng.World().MaxScore, ov.Moves)
	gap := w - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return m.styles.topBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m *model) renderBottomBar() string {
	return m.styles.bottomBar.Render("F5 save  F9 restore  PgUp/PgDn scroll  Ctrl+C quit")
}
