package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

type keyMap struct {
	Fetch      key.Binding
	Save       key.Binding
	Mark       key.Binding
	MarkPage   key.Binding
	Delete     key.Binding
	Edit       key.Binding
	Cancel     key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Focus      key.Binding
	Insert     key.Binding
	InsertStep key.Binding
	Step       key.Binding
	Fire       key.Binding
	Start      key.Binding
	Stop       key.Binding
	Copy       key.Binding
	Help       key.Binding
	Dismiss    key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Fetch:      binding("fetch clip", "f"),
		Save:       binding("save clip", "s"),
		Mark:       binding("mark row", "space", " "),
		MarkPage:   binding("mark page", "a"),
		Delete:     binding("delete marked", "d"),
		Edit:       binding("edit cell", "enter"),
		Cancel:     binding("cancel edit", "esc"),
		Up:         binding("up", "up", "k"),
		Down:       binding("down", "down", "j"),
		Left:       binding("left", "left", "h"),
		Right:      binding("right", "right", "l"),
		PageUp:     binding("previous page", "pgup"),
		PageDown:   binding("next page", "pgdown"),
		Focus:      binding("switch panel", "tab"),
		Insert:     binding("insert note", "i"),
		InsertStep: binding("insert and step", "I"),
		Step:       binding("step cursor", "n"),
		Fire:       binding("fire clip", "F"),
		Start:      binding("start song", "p"),
		Stop:       binding("stop song", "P"),
		Copy:       binding("copy notes", "y"),
		Help:       binding("help", "?"),
		Dismiss:    binding("dismiss notice", "x"),
		Quit:       binding("quit", "q", "ctrl+c"),
	}
}

// commands maps override names to bindings.
func (k *keyMap) commands() map[string]*key.Binding {
	return map[string]*key.Binding{
		"fetch":       &k.Fetch,
		"save":        &k.Save,
		"mark":        &k.Mark,
		"mark_page":   &k.MarkPage,
		"delete":      &k.Delete,
		"edit":        &k.Edit,
		"cancel":      &k.Cancel,
		"page_up":     &k.PageUp,
		"page_down":   &k.PageDown,
		"focus":       &k.Focus,
		"insert":      &k.Insert,
		"insert_step": &k.InsertStep,
		"step":        &k.Step,
		"fire":        &k.Fire,
		"start":       &k.Start,
		"stop":        &k.Stop,
		"copy":        &k.Copy,
		"help":        &k.Help,
		"dismiss":     &k.Dismiss,
		"quit":        &k.Quit,
	}
}

// applyOverrides rebinds commands by name. Unknown names are ignored. A
// comma-separated value binds several keys.
func (k *keyMap) applyOverrides(overrides map[string]string) {
	commands := k.commands()
	for name, raw := range overrides {
		target, ok := commands[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		var keys []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				keys = append(keys, part)
			}
		}
		if len(keys) == 0 {
			continue
		}
		desc := target.Help().Desc
		target.SetKeys(keys...)
		target.SetHelp(keys[0], desc)
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Fetch, k.Save, k.Edit, k.Mark, k.Delete, k.Insert, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	groups := k.helpGroups()
	out := make([][]key.Binding, 0, len(groups))
	for _, group := range groups {
		out = append(out, group.bindings)
	}
	return out
}

func (k keyMap) helpGroups() []helpGroup {
	return []helpGroup{
		{title: "Clip", bindings: []key.Binding{k.Fetch, k.Save, k.Fire, k.Start, k.Stop, k.Copy}},
		{title: "Table", bindings: []key.Binding{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Edit, k.Cancel}},
		{title: "Marks", bindings: []key.Binding{k.Mark, k.MarkPage, k.Delete}},
		{title: "Insert", bindings: []key.Binding{k.Focus, k.Insert, k.InsertStep, k.Step}},
		{title: "General", bindings: []key.Binding{k.Help, k.Dismiss, k.Quit}},
	}
}
