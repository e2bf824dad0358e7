package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	NextPg  key.Binding
	PrevPg  key.Binding
	Refresh key.Binding
	Filter  key.Binding
	Up      key.Binding
	Down    key.Binding
	Action  key.Binding
	Open    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous page")),
		NextPg:  key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next")),
		PrevPg:  key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "prev")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Action:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "action")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.NextTab, k.NextPg, k.PrevPg, k.Refresh, k.Filter, k.Action, k.Open, k.Back, k.Quit}
}
