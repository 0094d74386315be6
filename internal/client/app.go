package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/fenggwsx/SlashVault/internal/config"
	"github.com/fenggwsx/SlashVault/internal/opener"
	"github.com/fenggwsx/SlashVault/internal/passcode"
	"github.com/fenggwsx/SlashVault/internal/vault"
)

// Deps are the collaborators the client drives.
type Deps struct {
	Context  context.Context
	Config   config.ClientConfig
	Gate     *passcode.Gate
	Store    *vault.Store
	Importer *vault.Importer
	Opener   opener.Opener
	Logger   *zap.Logger
}

// App implements tea.Model for the gate and vault screens.
type App struct {
	ctx      context.Context
	cfg      config.ClientConfig
	log      *zap.Logger
	gate     *passcode.Gate
	store    *vault.Store
	importer *vault.Importer
	opener   opener.Opener

	screen        screen
	view          primaryView
	mode          mode
	items         []vault.Item
	selected      int
	pendingDelete int
	noteText      string

	input      textinput.Model
	viewport   viewport.Model
	picker     filepicker.Model
	helper     help.Model
	keys       vaultKeyMap
	showHelp   bool
	helpView   string
	helpHeight int
	commands   []commandSpec
	logLine    logEntry
	styles     styleSet
	width      int
	height     int
}

type screen int

const (
	screenGate screen = iota
	screenVault
)

type primaryView int

const (
	viewVault primaryView = iota
	viewHelp
	viewNote
	viewPicker
)

func (v primaryView) String() string {
	switch v {
	case viewVault:
		return "vault"
	case viewHelp:
		return "help"
	case viewNote:
		return "note"
	case viewPicker:
		return "import"
	default:
		return "unknown"
	}
}

// mode is the dialog currently capturing keys on the vault screen.
type mode int

const (
	modeBrowse mode = iota
	modeChoice
	modeCompose
	modeConfirmDelete
)

type logLevel int

const (
	logLevelInfo logLevel = iota
	logLevelError
)

type logEntry struct {
	level logLevel
	label string
	body  string
}

type styleSet struct {
	title         lipgloss.Style
	view          lipgloss.Style
	label         lipgloss.Style
	value         lipgloss.Style
	logLabel      lipgloss.Style
	logBody       lipgloss.Style
	logLabelError lipgloss.Style
	logBodyError  lipgloss.Style
	help          lipgloss.Style
	prompt        lipgloss.Style
	dotFilled     lipgloss.Style
	dotEmpty      lipgloss.Style
	cell          lipgloss.Style
	cellSelected  lipgloss.Style
	kind          lipgloss.Style
	dialog        lipgloss.Style
}

type vaultKeyMap struct {
	up     key.Binding
	down   key.Binding
	left   key.Binding
	right  key.Binding
	open   key.Binding
	add    key.Binding
	remove key.Binding
	lock   key.Binding
	quit   key.Binding
}

func (k vaultKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.up, k.down, k.open, k.add, k.remove, k.lock, k.quit}
}

func (k vaultKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.open, k.add, k.remove, k.lock, k.quit},
	}
}

func defaultKeys() vaultKeyMap {
	return vaultKeyMap{
		up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		left:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		right:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		add:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add")),
		remove: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		lock:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "lock")),
		quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

const (
	defaultWidth  = 80
	defaultHeight = 24
	gridColumns   = 4
	notePrompt    = "note> "
	inputPrompt   = "> "
)

// NewApp returns a Bubble Tea model showing the gate screen.
func NewApp(deps Deps) *App {
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	input := textinput.New()
	input.Prompt = inputPrompt
	input.Placeholder = "Type a note and press Enter, or /help"

	a := &App{
		ctx:           ctx,
		cfg:           deps.Config,
		log:           log,
		gate:          deps.Gate,
		store:         deps.Store,
		importer:      deps.Importer,
		opener:        deps.Opener,
		screen:        screenGate,
		view:          viewVault,
		pendingDelete: -1,
		input:         input,
		viewport:      viewport.New(defaultWidth, defaultHeight-5),
		helper:        help.New(),
		keys:          defaultKeys(),
		commands:      defaultCommands(deps.Config.CommandRune()),
		styles:        buildStyles(),
		width:         defaultWidth,
		height:        defaultHeight,
	}
	a.logf("%s", a.gate.Prompt())
	return a
}

// Init is part of the tea.Model interface.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update handles user input and internal events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.height = m.Height
		a.updateInputWidth()
		a.updateViewportSize()
		a.updateViewportContent()
		if a.view == viewPicker {
			var cmd tea.Cmd
			a.picker, cmd = a.picker.Update(m)
			return a, cmd
		}
		return a, nil
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.screen == screenGate {
			return a.handleGateKey(m)
		}
		return a.handleVaultKey(m)
	}

	if a.view == viewPicker {
		return a.updatePicker(msg)
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleGateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return a, tea.Quit
	case tea.KeyBackspace:
		a.gate.Backspace()
		return a, nil
	case tea.KeyRunes:
	default:
		return a, nil
	}

	for _, r := range msg.Runes {
		outcome, err := a.gate.Type(a.ctx, r)
		if err != nil {
			a.log.Error("passcode submit", zap.Error(err))
			a.logErrorf("Failed to save passcode: %v", err)
			return a, nil
		}
		switch outcome {
		case passcode.Created:
			a.logf("Passcode Set")
			return a, a.enterVault()
		case passcode.Granted:
			a.logf("Vault unlocked")
			return a, a.enterVault()
		case passcode.Denied:
			a.logErrorf("Incorrect Passcode")
			return a, nil
		}
	}
	return a, nil
}

// enterVault switches to the vault screen and loads the persisted list.
func (a *App) enterVault() tea.Cmd {
	a.screen = screenVault
	a.view = viewVault
	a.mode = modeBrowse
	a.items = a.store.Load()
	a.selected = 0
	a.pendingDelete = -1
	a.input.Reset()
	a.input.Prompt = inputPrompt
	a.updateViewportSize()
	a.updateViewportContent()
	return a.input.Focus()
}

func (a *App) lock() {
	a.screen = screenGate
	a.view = viewVault
	a.mode = modeBrowse
	a.items = nil
	a.selected = 0
	a.pendingDelete = -1
	a.noteText = ""
	a.input.Reset()
	a.input.Blur()
	a.gate.Reset()
	a.updateHelp()
	a.logf("Vault locked. %s", a.gate.Prompt())
}

func (a *App) handleVaultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case modeChoice:
		return a.handleChoiceKey(msg)
	case modeConfirmDelete:
		return a.handleConfirmKey(msg)
	case modeCompose:
		return a.handleComposeKey(msg)
	}

	switch a.view {
	case viewPicker:
		if msg.Type == tea.KeyEsc {
			a.closePicker()
			a.logf("Import cancelled")
			return a, nil
		}
		return a.updatePicker(msg)
	case viewNote:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			a.noteText = ""
			a.view = viewVault
			a.updateViewportContent()
			return a, nil
		}
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	empty := a.input.Value() == ""
	switch {
	case key.Matches(msg, a.keys.up):
		a.moveSelection(-gridColumns)
		return a, nil
	case key.Matches(msg, a.keys.down):
		a.moveSelection(gridColumns)
		return a, nil
	case empty && key.Matches(msg, a.keys.left):
		a.moveSelection(-1)
		return a, nil
	case empty && key.Matches(msg, a.keys.right):
		a.moveSelection(1)
		return a, nil
	case key.Matches(msg, a.keys.add):
		a.openChoice()
		return a, nil
	case key.Matches(msg, a.keys.remove):
		a.requestDelete(a.selected)
		return a, nil
	case key.Matches(msg, a.keys.lock):
		a.lock()
		return a, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		if a.view == viewHelp {
			a.view = viewVault
			a.updateViewportContent()
		}
		a.input.Reset()
		a.updateHelp()
		return a, nil
	case tea.KeyTab:
		a.handleTabCompletion()
		a.updateHelp()
		return a, nil
	case tea.KeyEnter:
		value := a.input.Value()
		a.input.Reset()
		a.updateHelp()
		if value == "" {
			return a, a.openItem(a.selected)
		}
		return a, a.handleSubmit(value)
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.updateHelp()
	return a, cmd
}

func (a *App) handleChoiceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		a.mode = modeBrowse
		return a, nil
	}
	switch strings.ToLower(msg.String()) {
	case "1", "n":
		a.startCompose()
		return a, nil
	case "2", "f":
		a.mode = modeBrowse
		return a, a.openPicker()
	}
	return a, nil
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEnter, strings.EqualFold(msg.String(), "y"):
		a.confirmDelete()
	case msg.Type == tea.KeyEsc, strings.EqualFold(msg.String(), "n"):
		a.mode = modeBrowse
		a.pendingDelete = -1
		a.logf("Delete cancelled")
	}
	return a, nil
}

func (a *App) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.finishCompose()
		a.logf("Note discarded")
		return a, nil
	case tea.KeyEnter:
		text := a.input.Value()
		a.finishCompose()
		a.addNote(text)
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) openChoice() {
	a.mode = modeChoice
	a.logf("Add to Vault: 1 Add Note, 2 Add File")
}

func (a *App) startCompose() {
	a.mode = modeCompose
	a.input.Reset()
	a.input.Prompt = notePrompt
	a.input.Placeholder = "Enter your secret note..."
	a.showHelp = false
	a.helpView = ""
	a.helpHeight = 0
	a.logf("Add New Note: Enter saves, Esc cancels")
}

func (a *App) finishCompose() {
	a.mode = modeBrowse
	a.input.Reset()
	a.input.Prompt = inputPrompt
	a.input.Placeholder = "Type a note and press Enter, or /help"
}

func (a *App) moveSelection(delta int) {
	if len(a.items) == 0 {
		return
	}
	next := a.selected + delta
	if next < 0 || next >= len(a.items) {
		return
	}
	a.selected = next
	a.updateViewportContent()
}

func (a *App) clampSelection() {
	if a.selected >= len(a.items) {
		a.selected = len(a.items) - 1
	}
	if a.selected < 0 {
		a.selected = 0
	}
}

func (a *App) logf(format string, args ...interface{}) {
	a.logLine = logEntry{level: logLevelInfo, label: "INFO", body: fmt.Sprintf(format, args...)}
}

func (a *App) logErrorf(format string, args ...interface{}) {
	a.logLine = logEntry{level: logLevelError, label: "ERROR", body: fmt.Sprintf(format, args...)}
}
