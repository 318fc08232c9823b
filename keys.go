package main

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of normal mode.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Edit     key.Binding
	Select   key.Binding
	Deselect key.Binding
	Merge    key.Binding
	Unmerge  key.Binding
	AddRow   key.Binding
	DelRow   key.Binding
	AddCol   key.Binding
	DelCol   key.Binding
	Clear    key.Binding
	Paste    key.Binding
	Header   key.Binding
	Title    key.Binding
	XLabel   key.Binding
	YLabel   key.Binding
	Analyze  key.Binding
	Save     key.Binding
	Open     key.Binding
	Export   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "right")),
		Edit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit cell")),
		Select:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select cell")),
		Deselect: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Merge:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "merge selected")),
		Unmerge:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unmerge")),
		AddRow:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		DelRow:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete row")),
		AddCol:   key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add column")),
		DelCol:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "remove column")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Paste:    key.NewBinding(key.WithKeys("ctrl+v", "p"), key.WithHelp("p", "paste")),
		Header:   key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "rename column")),
		Title:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "title")),
		XLabel:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "x label")),
		YLabel:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "y label")),
		Analyze:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate graph")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s", "s"), key.WithHelp("s", "save xlsx")),
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open xlsx")),
		Export:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "export png")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Select, k.Merge, k.AddRow, k.AddCol, k.Paste, k.Analyze, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Edit},
		{k.Select, k.Deselect, k.Merge, k.Unmerge, k.Paste},
		{k.AddRow, k.DelRow, k.AddCol, k.DelCol, k.Clear},
		{k.Header, k.Title, k.XLabel, k.YLabel},
		{k.Analyze, k.Save, k.Open, k.Export, k.Help, k.Quit},
	}
}
