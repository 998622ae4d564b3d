package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Next    key.Binding
	Prev    key.Binding
	PrevDay key.Binding
	NextDay key.Binding

	Grab     key.Binding
	GrabBlk  key.Binding
	GrabLen  key.Binding
	GrabDue  key.Binding
	GrabFile key.Binding
	GrabNow  key.Binding
	GrabNew  key.Binding
	Sweep    key.Binding

	Drop   key.Binding
	Delete key.Binding
	Cancel key.Binding

	Extend key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "cursor earlier")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "cursor later")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next task")),
		Prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev task")),
		PrevDay: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev day")),
		NextDay: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next day")),

		Grab:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "grab task")),
		GrabBlk:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "grab block")),
		GrabLen:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "grab end (resize)")),
		GrabDue:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "grab due date")),
		GrabFile: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "grab file (reorder)")),
		GrabNow:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "grab now marker")),
		GrabNew:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "new task")),
		Sweep:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sweep new time range")),

		Drop:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Delete: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "drop on delete")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Extend: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "toggle extend")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Grab, k.Drop, k.Delete, k.Cancel, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Next, k.Prev, k.PrevDay, k.NextDay},
		{k.Grab, k.GrabBlk, k.GrabLen, k.GrabDue, k.GrabFile, k.GrabNow, k.GrabNew, k.Sweep},
		{k.Drop, k.Delete, k.Cancel},
		{k.Extend, k.Reload, k.Help, k.Quit},
	}
}
