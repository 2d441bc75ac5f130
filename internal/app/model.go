package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"notelist/internal/clipsync"
	"notelist/internal/logging"
	"notelist/internal/notes"
	"notelist/internal/types"
)

const (
	defaultPageSize   = 100
	defaultTimeout    = 10 * time.Second
	minTableRows      = 3
	chromeLines       = 10
	editorCharLimit   = 24
	statusLinePadding = 1
)

type focusArea int

const (
	focusTable focusArea = iota
	focusInsert
)

type Options struct {
	PageSize     int
	DefaultStep  float64
	Timeout      time.Duration
	KeyOverrides map[string]string
	Logger       logging.Logger
}

type Model struct {
	ctrl    Controller
	notes   *notes.Collection
	insert  notes.InsertCursor
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	editor  textinput.Model
	logger  logging.Logger
	now     func() time.Time

	timeout  time.Duration
	pageSize int
	width    int
	height   int

	row         int
	col         int
	offset      int
	focus       focusArea
	insertField int
	editing     bool
	showHelp    bool

	fetching bool
	saving   bool
	clip     types.ClipContext
	hasClip  bool
	status   string

	toastText  string
	toastLevel toastLevel
	toastUntil time.Time
}

func NewModel(ctrl Controller, coll *notes.Collection, opts Options) Model {
	if coll == nil {
		coll = notes.NewCollection(nil)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.DefaultStep <= 0 {
		opts.DefaultStep = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	keys := defaultKeyMap()
	keys.applyOverrides(opts.KeyOverrides)

	loader := spinner.New()
	loader.Spinner = spinner.Line
	loader.Style = activityStyle

	editor := textinput.New()
	editor.Prompt = ""
	editor.CharLimit = editorCharLimit

	return Model{
		ctrl:     ctrl,
		notes:    coll,
		insert:   notes.NewInsertCursor(opts.DefaultStep),
		keys:     keys,
		help:     help.New(),
		spinner:  loader,
		editor:   editor,
		logger:   logger.With(logging.F("component", "ui")),
		now:      time.Now,
		timeout:  opts.Timeout,
		pageSize: opts.PageSize,
	}
}

func Run(ctrl Controller, coll *notes.Collection, opts Options) error {
	model := NewModel(ctrl, coll, opts)
	p := tea.NewProgram(&model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startFetch(), tickCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		m.expireToast(time.Time(msg))
		return m, tickCmd()
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case fetchedMsg:
		m.applyFetch(msg)
		return m, nil
	case savedMsg:
		m.applySave(msg)
		return m, nil
	case transportMsg:
		m.applyTransport(msg)
		return m, nil
	case copiedMsg:
		m.applyCopy(msg)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) busy() bool {
	return m.fetching || m.saving
}

func (m *Model) startFetch() tea.Cmd {
	if m.ctrl == nil || m.fetching {
		return nil
	}
	m.fetching = true
	m.status = "fetching clip"
	return tea.Batch(fetchCmd(m.ctrl, m.timeout), m.spinner.Tick)
}

func (m *Model) startSave() tea.Cmd {
	if m.ctrl == nil || m.saving {
		return nil
	}
	if m.fetching {
		m.showWarningToast("Wait for the fetch to finish before saving.")
		return nil
	}
	if !m.hasClip {
		m.showWarningToast(clipsync.IneligibleMessage)
		return nil
	}
	m.saving = true
	m.status = "saving clip"
	return tea.Batch(saveCmd(m.ctrl, m.timeout), m.spinner.Tick)
}

func (m *Model) applyFetch(msg fetchedMsg) {
	m.fetching = false
	if msg.err != nil {
		switch clipsync.Kind(msg.err) {
		case clipsync.KindStale:
			return
		case clipsync.KindIneligible:
			m.hasClip = false
			m.clip = types.ClipContext{}
			m.resetCursor()
			m.status = "no clip"
			m.showWarningToast(clipsync.UserMessage(msg.err))
		default:
			m.status = "fetch failed"
			m.showErrorToast(clipsync.UserMessage(msg.err))
		}
		return
	}
	m.clip = msg.clip
	m.hasClip = true
	m.resetCursor()
	m.status = fmt.Sprintf("loaded %d notes", m.notes.Len())
}

func (m *Model) applySave(msg savedMsg) {
	m.saving = false
	if msg.err != nil {
		switch clipsync.Kind(msg.err) {
		case clipsync.KindStale:
			return
		case clipsync.KindBusy, clipsync.KindIneligible:
			m.showWarningToast(clipsync.UserMessage(msg.err))
		default:
			m.status = "save failed"
			m.showErrorToast(clipsync.UserMessage(msg.err))
		}
		return
	}
	m.clampCursor()
	m.status = fmt.Sprintf("saved %d notes", len(msg.notes))
	m.showInfoToast(fmt.Sprintf("Saved %d notes to %s.", len(msg.notes), m.clip.Title()))
}

func (m *Model) applyTransport(msg transportMsg) {
	if msg.err != nil {
		m.showErrorToast(clipsync.UserMessage(msg.err))
		return
	}
	m.status = msg.action
}

func (m *Model) applyCopy(msg copiedMsg) {
	if msg.err != nil {
		m.logger.Warn("copy_failed", logging.Err(msg.err))
		m.showErrorToast("copy failed: " + msg.err.Error())
		return
	}
	m.showInfoToast(fmt.Sprintf("Copied %d notes (%s clipboard).", msg.count, msg.method))
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.syncKeyStates()
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Cancel, m.keys.Quit) {
			m.showHelp = false
		}
		return nil
	}
	if m.editing {
		return m.handleEditorKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.clearToast()
		return nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return nil
	case key.Matches(msg, m.keys.Fetch):
		if m.saving {
			m.showWarningToast("Wait for the save to finish before fetching.")
			return nil
		}
		return m.startFetch()
	case key.Matches(msg, m.keys.Save):
		return m.startSave()
	case key.Matches(msg, m.keys.Fire):
		return m.transport("fired clip", Controller.Fire)
	case key.Matches(msg, m.keys.Start):
		return m.transport("started song", Controller.Start)
	case key.Matches(msg, m.keys.Stop):
		return m.transport("stopped song", Controller.Stop)
	case key.Matches(msg, m.keys.Copy):
		return copyNotesCmd(m.notes.Notes())
	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusTable {
			m.focus = focusInsert
		} else {
			m.focus = focusTable
		}
		return nil
	}

	if m.handleNavigation(msg) {
		return nil
	}

	editKeys := []key.Binding{m.keys.Mark, m.keys.MarkPage, m.keys.Delete, m.keys.Edit, m.keys.Insert, m.keys.InsertStep, m.keys.Step}
	if !key.Matches(msg, editKeys...) {
		return nil
	}
	if m.saving {
		m.showWarningToast("Editing is paused while saving.")
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m.beginEdit()
	case key.Matches(msg, m.keys.Mark):
		if m.notes.Len() > 0 {
			m.notes.Selection().Toggle(m.row)
		}
	case key.Matches(msg, m.keys.MarkPage):
		start, end := m.currentPageBounds()
		indices := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			indices = append(indices, i)
		}
		m.notes.Selection().ToggleAll(indices)
	case key.Matches(msg, m.keys.Delete):
		removed := m.notes.DeleteMarked()
		m.clampCursor()
		m.status = fmt.Sprintf("deleted %d notes", removed)
	case key.Matches(msg, m.keys.Insert):
		m.moveTo(m.insert.Insert(m.notes))
		m.status = "inserted note"
	case key.Matches(msg, m.keys.InsertStep):
		m.moveTo(m.insert.InsertAndStep(m.notes))
		m.status = fmt.Sprintf("inserted note, next start %s", formatNoteValue(types.NoteFieldStartTime, m.insert.StartTime))
	case key.Matches(msg, m.keys.Step):
		m.insert.Advance()
		m.status = fmt.Sprintf("next start %s", formatNoteValue(types.NoteFieldStartTime, m.insert.StartTime))
	}
	return nil
}

func (m *Model) transport(action string, op func(Controller, context.Context) error) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	if !m.hasClip {
		m.showWarningToast(clipsync.IneligibleMessage)
		return nil
	}
	ctrl := m.ctrl
	return transportCmd(action, m.timeout, func(ctx context.Context) error {
		return op(ctrl, ctx)
	})
}

func (m *Model) handleNavigation(msg tea.KeyMsg) bool {
	if m.focus == focusInsert {
		switch {
		case key.Matches(msg, m.keys.Left, m.keys.Up):
			m.insertField = (m.insertField + len(notes.CursorFields) - 1) % len(notes.CursorFields)
		case key.Matches(msg, m.keys.Right, m.keys.Down):
			m.insertField = (m.insertField + 1) % len(notes.CursorFields)
		default:
			return false
		}
		return true
	}
	total := m.notes.Len()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveTo(m.row - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveTo(m.row + 1)
	case key.Matches(msg, m.keys.Left):
		m.col = max(0, m.col-1)
	case key.Matches(msg, m.keys.Right):
		m.col = min(len(tableColumns)-1, m.col+1)
	case key.Matches(msg, m.keys.PageUp):
		if m.page() > 0 {
			m.moveTo(m.row - m.pageSize)
		}
	case key.Matches(msg, m.keys.PageDown):
		if m.page() < pageCount(total, m.pageSize)-1 {
			start, _ := pageBounds(total, m.pageSize, m.page()+1)
			m.moveTo(max(start, min(total-1, m.row+m.pageSize)))
		}
	default:
		return false
	}
	return true
}

func (m *Model) beginEdit() tea.Cmd {
	var value string
	if m.focus == focusInsert {
		field := notes.CursorFields[m.insertField]
		value = formatNoteValue(field, m.insert.Value(field))
	} else {
		note, ok := m.notes.At(m.row)
		if !ok {
			return nil
		}
		field := tableColumns[m.col].field
		current, _ := note.Value(field)
		value = formatNoteValue(field, current)
	}
	m.editing = true
	m.editor.SetValue(value)
	m.editor.CursorEnd()
	return m.editor.Focus()
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.endEdit()
		m.status = "edit cancelled"
		return nil
	case msg.Type == tea.KeyEnter:
		m.commitEdit()
		return nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *Model) commitEdit() {
	raw := m.editor.Value()
	defer m.endEdit()
	if m.saving {
		m.showWarningToast("Editing is paused while saving.")
		return
	}
	if m.focus == focusInsert {
		field := notes.CursorFields[m.insertField]
		value := m.insert.Set(field, raw)
		m.status = fmt.Sprintf("%s set to %s", field, formatNoteValue(field, value))
		return
	}
	field := tableColumns[m.col].field
	result, err := m.notes.UpdateField(m.row, field, raw)
	if err != nil {
		m.showErrorToast(err.Error())
		return
	}
	m.moveTo(result.Index)
	value, _ := result.Note.Value(field)
	if result.Reverted {
		m.status = fmt.Sprintf("kept %s %s", field, formatNoteValue(field, value))
		return
	}
	m.logger.Debug("note_edited", logging.F("field", string(field)), logging.F("index", result.Index))
	m.status = fmt.Sprintf("%s set to %s", field, formatNoteValue(field, value))
}

func (m *Model) endEdit() {
	m.editing = false
	m.editor.Blur()
	m.editor.SetValue("")
}

func (m *Model) syncKeyStates() {
	m.keys.Save.SetEnabled(m.hasClip && !m.saving)
	m.keys.Delete.SetEnabled(m.notes.Selection().Count() > 0)
}

func (m *Model) page() int {
	if m.pageSize <= 0 {
		return 0
	}
	return m.row / m.pageSize
}

func (m *Model) currentPageBounds() (int, int) {
	return pageBounds(m.notes.Len(), m.pageSize, m.page())
}

func (m *Model) resetCursor() {
	m.row = 0
	m.offset = 0
	m.clampCursor()
}

func (m *Model) moveTo(row int) {
	m.row = row
	m.clampCursor()
}

func (m *Model) clampCursor() {
	total := m.notes.Len()
	if m.row >= total {
		m.row = total - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	m.ensureVisible()
}

func (m *Model) tableRows() int {
	if m.height <= 0 {
		return m.pageSize
	}
	return max(minTableRows, m.height-chromeLines)
}

func (m *Model) ensureVisible() {
	start, end := m.currentPageBounds()
	visible := m.tableRows()
	if m.offset < start || m.offset >= max(end, start+1) {
		m.offset = start
	}
	if m.row < m.offset {
		m.offset = m.row
	}
	if m.row >= m.offset+visible {
		m.offset = m.row - visible + 1
	}
	if m.offset < start {
		m.offset = start
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.editor.Width = editorCharLimit
	m.ensureVisible()
}

func (m *Model) View() string {
	m.syncKeyStates()
	width := m.width
	if width <= 0 {
		width = 80
	}
	sections := []string{m.headerView(width)}
	if m.showHelp {
		sections = append(sections, overlayStyle.Render(renderMarkdown(helpMarkdown(m.keys.helpGroups()), max(20, width-4))))
	} else {
		start, end := m.currentPageBounds()
		end = min(end, m.offset+m.tableRows())
		sections = append(sections,
			renderTable(tableView{
				notes:   m.notes.Notes(),
				marked:  m.notes.Selection().IsMarked,
				start:   max(start, m.offset),
				end:     end,
				row:     m.row,
				col:     m.col,
				active:  m.focus == focusTable,
				editing: m.editing && m.focus == focusTable,
				editor:  m.editor.View(),
			}),
			subtleStyle.Render(m.pagingView()),
			m.insertPanelView(),
		)
	}
	if toast := m.toastLine(width); toast != "" {
		sections = append(sections, toast)
	}
	sections = append(sections,
		dividerStyle.Render(strings.Repeat("─", width)),
		renderStatusLine(width, helpStyle.Render(m.help.View(m.keys)), statusStyle.Render(m.status)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) headerView(width int) string {
	title := "No clip"
	if m.hasClip {
		title = m.clip.Title()
	}
	left := headerStyle.Render(truncateToWidth(title, max(1, width-24)))
	right := ""
	switch {
	case m.saving:
		right = m.spinner.View() + activityStyle.Render(" saving")
	case m.fetching:
		right = m.spinner.View() + activityStyle.Render(" fetching")
	case m.ctrl != nil && m.ctrl.Dirty():
		right = dirtyStyle.Render("● unsaved")
	}
	top := renderStatusLine(width, left, right)

	var details []string
	if m.hasClip {
		details = append(details, fmt.Sprintf("clip %d", m.clip.ClipID))
		if signature := m.clip.Signature(); signature != "" {
			details = append(details, signature)
		}
		details = append(details, "length "+formatNoteValue(types.NoteFieldStartTime, m.clip.Length))
	}
	details = append(details, fmt.Sprintf("%d notes", m.notes.Len()))
	if marked := m.notes.Selection().Count(); marked > 0 {
		details = append(details, fmt.Sprintf("%d marked", marked))
	}
	return top + "\n" + subtleStyle.Render(strings.Join(details, " · "))
}

func (m *Model) pagingView() string {
	total := m.notes.Len()
	line := pagingLine(total, m.pageSize, m.page())
	if pages := pageCount(total, m.pageSize); pages > 1 {
		line += fmt.Sprintf("  (page %d of %d)", m.page()+1, pages)
	}
	return line
}

func (m *Model) insertPanelView() string {
	parts := make([]string, 0, len(notes.CursorFields))
	for i, field := range notes.CursorFields {
		value := formatNoteValue(field, m.insert.Value(field))
		label := string(field) + " "
		active := m.focus == focusInsert && i == m.insertField
		switch {
		case active && m.editing:
			parts = append(parts, label+m.editor.View())
		case active:
			parts = append(parts, label+cellCursorStyle.Render(value))
		default:
			parts = append(parts, label+value)
		}
	}
	style := panelStyle
	if m.focus == focusInsert {
		style = panelActiveStyle
	}
	return style.Render("Insert  " + strings.Join(parts, "  "))
}

func renderStatusLine(width int, left, right string) string {
	if width <= 0 {
		return left + " " + right
	}
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < statusLinePadding {
		padding = statusLinePadding
	}
	return left + strings.Repeat(" ", padding) + right
}
