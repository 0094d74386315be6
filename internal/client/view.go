package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/mattn/go-runewidth"

	"github.com/fenggwsx/SlashVault/internal/passcode"
	"github.com/fenggwsx/SlashVault/internal/vault"
)

var (
	bannerArt   = buildBanner()
	homeContent = buildHomeContent()
)

const cellHeight = 4

func (a *App) View() string {
	if a.screen == screenGate {
		return a.gateView()
	}

	var b strings.Builder
	if a.view == viewPicker {
		b.WriteString(a.picker.View())
	} else {
		b.WriteString(a.viewport.View())
	}
	b.WriteString("\n")

	if a.showHelp && a.helpView != "" {
		b.WriteString(a.styles.help.Render(a.helpView))
		b.WriteString("\n")
	}

	b.WriteString(a.promptLine())
	b.WriteString("\n")
	b.WriteString(a.logLineView())
	b.WriteString("\n")
	b.WriteString(a.statusLine())
	b.WriteString("\n")
	b.WriteString(a.helper.View(a.keys))

	return b.String()
}

func (a *App) gateView() string {
	var b strings.Builder
	b.WriteString(bannerArt)
	b.WriteString("\n\n")
	b.WriteString(a.styles.prompt.Render(a.gate.Prompt()))
	b.WriteString("\n\n")
	b.WriteString(a.renderDots())
	b.WriteString("\n\n")
	b.WriteString(a.styles.label.Render("Type 4 digits. Backspace corrects, Esc quits."))
	b.WriteString("\n\n")
	b.WriteString(a.logLineView())
	b.WriteString("\n")
	b.WriteString(a.statusLine())
	return b.String()
}

func (a *App) renderDots() string {
	filled := a.gate.Filled()
	dots := make([]string, passcode.Length)
	for i := range dots {
		if i < filled {
			dots[i] = a.styles.dotFilled.Render("●")
		} else {
			dots[i] = a.styles.dotEmpty.Render("○")
		}
	}
	return strings.Join(dots, " ")
}

func (a *App) promptLine() string {
	switch a.mode {
	case modeChoice:
		return a.styles.dialog.Render("Add to Vault:") + " [1] Add Note  [2] Add File  [esc] Cancel"
	case modeConfirmDelete:
		return a.styles.dialog.Render("Delete Item:") + " Are you sure you want to delete this item? [y] Delete  [n] Cancel"
	}
	return a.input.View()
}

func (a *App) updateViewportContent() {
	if a.screen != screenVault {
		return
	}
	width := a.viewport.Width
	if width <= 0 {
		width = a.width
	}
	switch a.view {
	case viewVault:
		if len(a.items) == 0 {
			a.viewport.SetContent(homeContent)
			a.viewport.GotoTop()
			return
		}
		a.viewport.SetContent(a.renderGrid(width))
		a.scrollToSelection()
	case viewNote:
		lines := wrapLines(strings.Split(a.noteText, "\n"), width)
		a.viewport.SetContent(strings.Join(lines, "\n"))
		a.viewport.GotoTop()
	case viewHelp:
		a.viewport.SetContent(a.renderHelpView())
		a.viewport.GotoTop()
	}
}

func (a *App) renderGrid(width int) string {
	inner := width/gridColumns - 2
	if inner < 10 {
		inner = 10
	}

	rows := make([]string, 0, (len(a.items)+gridColumns-1)/gridColumns)
	for start := 0; start < len(a.items); start += gridColumns {
		end := min(start+gridColumns, len(a.items))
		cells := make([]string, 0, gridColumns)
		for i := start; i < end; i++ {
			cells = append(cells, a.renderCell(i, inner))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderCell(i, inner int) string {
	item := a.items[i]
	header := fmt.Sprintf("#%d %s", i+1, a.styles.kind.Render(kindIcon(item.Kind())))
	if vault.ThumbnailPath(item) != "" {
		header += " ◆"
	}
	label := strings.Join(strings.Fields(item.Label()), " ")
	label = runewidth.Truncate(label, inner, "…")

	style := a.styles.cell
	if i == a.selected {
		style = a.styles.cellSelected
	}
	return style.Width(inner).Render(header + "\n" + label)
}

func kindIcon(k vault.Kind) string {
	switch k {
	case vault.KindNote:
		return "[NOTE]"
	case vault.KindImage:
		return "[IMG]"
	case vault.KindVideo:
		return "[VID]"
	default:
		return "[FILE]"
	}
}

// scrollToSelection keeps the row holding the selected cell inside the
// viewport.
func (a *App) scrollToSelection() {
	top := (a.selected / gridColumns) * cellHeight
	bottom := top + cellHeight
	switch {
	case top < a.viewport.YOffset:
		a.viewport.SetYOffset(top)
	case bottom > a.viewport.YOffset+a.viewport.Height:
		a.viewport.SetYOffset(bottom - a.viewport.Height)
	}
}

func (a *App) updateViewportSize() {
	if a.height == 0 {
		return
	}
	const fixed = 4
	height := a.height - fixed - a.helpHeight
	if height < 3 {
		height = 3
	}
	a.viewport.Height = height
	a.viewport.Width = a.width
	a.helper.Width = a.width
}

func (a *App) updateInputWidth() {
	width := a.width
	if width <= 0 {
		width = 60
	}
	usable := width - lipgloss.Width(a.input.Prompt) - 1
	if usable < 10 {
		usable = 10
	}
	a.input.Width = usable
}

func (a *App) updateHelp() {
	hints := a.commandHints()
	view := ""
	if len(hints) > 0 {
		a.helper.Width = a.width
		view = strings.TrimRight(a.helper.View(hintKeyMap(hints)), "\n")
	}
	if view == a.helpView {
		return
	}
	a.helpView = view
	a.showHelp = view != ""
	a.helpHeight = 0
	if a.showHelp {
		a.helpHeight = lipgloss.Height(view)
	}
	a.updateViewportSize()
}

// commandHints lists the commands whose trigger starts with the first token
// of the input. It is empty unless a command is being typed.
func (a *App) commandHints() []key.Binding {
	value := a.input.Value()
	if a.mode != modeBrowse || !strings.HasPrefix(value, string(a.cfg.CommandRune())) {
		return nil
	}
	token, _, _ := strings.Cut(value, " ")
	token = strings.ToLower(token)

	var hints []key.Binding
	for _, c := range a.commands {
		if strings.HasPrefix(c.trigger, token) {
			hints = append(hints, key.NewBinding(key.WithKeys(c.trigger), key.WithHelp(c.usage, c.description)))
		}
	}
	return hints
}

func (a *App) statusLine() string {
	if a.screen == screenGate {
		return strings.Join([]string{
			a.styles.title.Render("SlashVault"),
			a.styles.view.Render("LOCKED"),
		}, " | ")
	}

	selected := "-"
	if len(a.items) > 0 {
		selected = fmt.Sprintf("#%d", a.selected+1)
	}
	parts := []string{
		a.styles.title.Render("SlashVault"),
		a.styles.view.Render(strings.ToUpper(a.view.String())),
		a.styles.label.Render("Items") + ": " + a.styles.value.Render(fmt.Sprint(len(a.items))),
		a.styles.label.Render("Selected") + ": " + a.styles.value.Render(selected),
	}
	return strings.Join(parts, " | ")
}

func (a *App) logLineView() string {
	labelStyle := a.styles.logLabel
	bodyStyle := a.styles.logBody
	if a.logLine.level == logLevelError {
		labelStyle = a.styles.logLabelError
		bodyStyle = a.styles.logBodyError
	}
	return labelStyle.Render(a.logLine.label) + " " + bodyStyle.Render(a.logLine.body)
}

func buildStyles() styleSet {
	base := lipgloss.NewStyle()
	cell := base.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8"))
	return styleSet{
		title:         base.Foreground(lipgloss.Color("13")).Bold(true),
		view:          base.Foreground(lipgloss.Color("14")).Bold(true),
		label:         base.Foreground(lipgloss.Color("8")),
		value:         base.Foreground(lipgloss.Color("15")),
		logLabel:      base.Foreground(lipgloss.Color("11")).Bold(true),
		logBody:       base.Foreground(lipgloss.Color("7")),
		logLabelError: base.Foreground(lipgloss.Color("9")).Bold(true),
		logBodyError:  base.Foreground(lipgloss.Color("9")),
		help:          base.Foreground(lipgloss.Color("12")),
		prompt:        base.Foreground(lipgloss.Color("15")).Bold(true),
		dotFilled:     base.Foreground(lipgloss.Color("10")),
		dotEmpty:      base.Foreground(lipgloss.Color("8")),
		cell:          cell,
		cellSelected:  cell.BorderForeground(lipgloss.Color("10")).Bold(true),
		kind:          base.Foreground(lipgloss.Color("14")),
		dialog:        base.Foreground(lipgloss.Color("11")).Bold(true),
	}
}

func (a *App) renderHelpView() string {
	var b strings.Builder
	b.WriteString("SlashVault Commands\n\n")
	for _, c := range a.commands {
		b.WriteString(fmt.Sprintf("%-18s %s\n", c.usage, c.description))
	}
	b.WriteString("\nKeys\n\n")
	for _, group := range a.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("%-18s %s\n", h.Key, h.Desc))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildBanner() string {
	fig := figure.NewColorFigure("VAULT", "3-d", "green", true)
	return strings.TrimRight(fig.String(), "\n")
}

func buildHomeContent() string {
	info := []string{
		"Your vault is empty.",
		"",
		"Type a note and press Enter to hide it.",
		"Use /import <path> or /import to pick a file.",
		"Use /add to choose between a note and a file.",
		"Use /help to browse all commands.",
	}
	return bannerArt + "\n\n" + strings.Join(info, "\n")
}

// wrapLines breaks each line at spaces so it fits in width columns. Words
// wider than a row are split between runes.
func wrapLines(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	width = max(width, 10)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	var (
		rows []string
		row  strings.Builder
		used int
	)
	flush := func() {
		rows = append(rows, row.String())
		row.Reset()
		used = 0
	}
	for _, word := range strings.Fields(line) {
		w := runewidth.StringWidth(word)
		if used > 0 && used+1+w > width {
			flush()
		}
		if used > 0 {
			row.WriteByte(' ')
			used++
		}
		for _, r := range word {
			rw := runewidth.RuneWidth(r)
			if used > 0 && used+rw > width {
				flush()
			}
			row.WriteRune(r)
			used += rw
		}
	}
	if used > 0 {
		flush()
	}
	return rows
}

type hintKeyMap []key.Binding

func (h hintKeyMap) ShortHelp() []key.Binding { return h }

func (h hintKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{h} }
