package client

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fenggwsx/SlashVault/internal/vault"
)

type commandSpec struct {
	trigger     string
	usage       string
	description string
}

func defaultCommands(prefix rune) []commandSpec {
	p := string(prefix)
	specs := []commandSpec{
		{trigger: "add", usage: "add", description: "Choose between a new note and a file"},
		{trigger: "note", usage: "note <text>", description: "Add a hidden note"},
		{trigger: "import", usage: "import [path]", description: "Copy a file into the vault (no path opens the picker)"},
		{trigger: "open", usage: "open [n]", description: "Open item n or the selected item"},
		{trigger: "show", usage: "show [n]", description: "Show details of item n or the selected item"},
		{trigger: "delete", usage: "delete [n]", description: "Delete item n or the selected item"},
		{trigger: "vault", usage: "vault", description: "Return to the vault grid"},
		{trigger: "lock", usage: "lock", description: "Lock the vault and return to the passcode gate"},
		{trigger: "help", usage: "help", description: "Show all commands"},
		{trigger: "quit", usage: "quit", description: "Exit SlashVault"},
	}
	for i := range specs {
		specs[i].trigger = p + specs[i].trigger
		specs[i].usage = p + specs[i].usage
	}
	return specs
}

func (a *App) handleSubmit(value string) tea.Cmd {
	if strings.HasPrefix(value, string(a.cfg.CommandRune())) {
		return a.executeCommand(value)
	}
	a.addNote(value)
	return nil
}

func (a *App) executeCommand(raw string) tea.Cmd {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	name := strings.TrimPrefix(fields[0], string(a.cfg.CommandRune()))
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), fields[0]))

	switch name {
	case "add":
		a.openChoice()
	case "note":
		if rest == "" {
			a.startCompose()
			break
		}
		a.addNote(rest)
	case "import":
		if rest == "" {
			return a.openPicker()
		}
		a.importPath(rest)
	case "open":
		if i, ok := a.targetIndex(fields); ok {
			return a.openItem(i)
		}
	case "show":
		if i, ok := a.targetIndex(fields); ok {
			a.showItem(i)
		}
	case "delete":
		if i, ok := a.targetIndex(fields); ok {
			a.requestDelete(i)
		}
	case "vault":
		a.view = viewVault
		a.updateViewportContent()
		a.logf("Switched to VAULT view")
	case "lock":
		a.lock()
	case "help":
		a.view = viewHelp
		a.updateViewportContent()
		a.logf("Switched to HELP view")
	case "quit", "exit":
		return tea.Quit
	default:
		a.logErrorf("Unknown command: %s", fields[0])
	}
	return nil
}

// targetIndex resolves an optional 1-based item number, defaulting to the
// selection.
func (a *App) targetIndex(fields []string) (int, bool) {
	if len(a.items) == 0 {
		a.logErrorf("The vault is empty")
		return 0, false
	}
	if len(fields) < 2 {
		return a.selected, true
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(a.items) {
		a.logErrorf("No item #%s (1-%d)", fields[1], len(a.items))
		return 0, false
	}
	return n - 1, true
}

func (a *App) addNote(text string) {
	if text == "" {
		return
	}
	items, err := a.store.Append(vault.Note{Text: text})
	if err != nil {
		a.log.Error("save note", zap.Error(err))
		a.logErrorf("Failed to save note: %v", err)
		return
	}
	a.items = items
	a.selected = len(items) - 1
	a.updateViewportContent()
	a.logf("Note added")
}

func (a *App) importPath(path string) {
	info, err := os.Stat(path)
	if err != nil {
		a.log.Warn("import source", zap.String("path", path), zap.Error(err))
		a.logErrorf("Failed to add file: %v", err)
		return
	}
	if info.IsDir() {
		a.logErrorf("Failed to add file: %s is a directory", path)
		return
	}

	item, items, err := a.importer.Import(a.ctx, vault.FileSource(path))
	if err != nil {
		a.logErrorf("Failed to add file: %v", err)
		return
	}
	a.items = items
	a.selected = len(items) - 1
	a.view = viewVault
	a.updateViewportContent()
	a.logf("File added to vault: %s", item.Label())
}

func (a *App) openPicker() tea.Cmd {
	fp := filepicker.New()
	fp.CurrentDirectory = a.cfg.PickerDir
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.AutoHeight = true
	a.picker = fp
	a.view = viewPicker
	a.logf("Add File: choose a file, Esc cancels")

	// Size the picker to the pane before the directory listing arrives.
	var sizeCmd tea.Cmd
	a.picker, sizeCmd = a.picker.Update(tea.WindowSizeMsg{Width: a.width, Height: a.viewport.Height + 5})
	return tea.Batch(a.picker.Init(), sizeCmd)
}

func (a *App) closePicker() {
	a.view = viewVault
	a.picker = filepicker.Model{}
	a.updateViewportContent()
}

func (a *App) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	if ok, path := a.picker.DidSelectFile(msg); ok {
		a.closePicker()
		a.importPath(path)
		return a, nil
	}
	return a, cmd
}

func (a *App) openItem(i int) tea.Cmd {
	if i < 0 || i >= len(a.items) {
		a.logErrorf("The vault is empty")
		return nil
	}
	item := a.items[i]
	if note, ok := item.(vault.Note); ok {
		a.noteText = note.Text
		a.view = viewNote
		a.updateViewportContent()
		a.logf("Viewing note #%d, Esc returns", i+1)
		return nil
	}

	path := vault.PayloadPath(item)
	if err := a.opener.Open(a.ctx, path); err != nil {
		a.log.Warn("open vault item", zap.String("path", path), zap.Error(err))
		a.logErrorf("Could not open file. No app found.")
		return nil
	}
	a.logf("Opened %s", item.Label())
	return nil
}

func (a *App) showItem(i int) {
	item := a.items[i]
	var b strings.Builder
	b.WriteString("Item #" + strconv.Itoa(i+1) + "\n\n")
	b.WriteString("Type:      " + string(item.Kind()) + "\n")
	if note, ok := item.(vault.Note); ok {
		b.WriteString("\n" + note.Text)
	} else {
		b.WriteString("Name:      " + item.Label() + "\n")
		b.WriteString("Path:      " + vault.PayloadPath(item) + "\n")
		thumb := vault.ThumbnailPath(item)
		if thumb == "" {
			thumb = "-"
		}
		b.WriteString("Thumbnail: " + thumb)
	}
	a.noteText = b.String()
	a.view = viewNote
	a.updateViewportContent()
	a.logf("Showing item #%d, Esc returns", i+1)
}

func (a *App) requestDelete(i int) {
	if i < 0 || i >= len(a.items) {
		a.logErrorf("The vault is empty")
		return
	}
	a.pendingDelete = i
	a.mode = modeConfirmDelete
	a.logf("Delete Item: are you sure you want to delete item #%d? (y/n)", i+1)
}

func (a *App) confirmDelete() {
	i := a.pendingDelete
	a.mode = modeBrowse
	a.pendingDelete = -1

	items, _, err := a.store.Delete(i)
	a.items = items
	a.clampSelection()
	a.updateViewportContent()
	switch {
	case errors.Is(err, vault.ErrOutOfRange):
		a.logErrorf("No item #%d", i+1)
	case err != nil:
		a.log.Error("delete vault item", zap.Int("index", i), zap.Error(err))
		a.logErrorf("Failed to save vault: %v", err)
	default:
		a.logf("Item deleted")
	}
}
