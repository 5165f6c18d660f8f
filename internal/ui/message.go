package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProfileLoaded MsgKind = iota
	MsgFavoriteToggled
	MsgProfileDeleted
	MsgProgressUpdate
)

// viewResult carries a [tasks.View] and the error of the call that produced it.
type viewResult struct {
	view tasks.View
	err  error
}

// profileLoadedMsg is the constructor for [MsgProfileLoaded]
func profileLoadedMsg(v tasks.View, err error) Msg {
	return Msg{kind: MsgProfileLoaded, data: viewResult{v, err}}
}

// favoriteToggledMsg is the constructor for [MsgFavoriteToggled]
func favoriteToggledMsg(id string, v tasks.View, err error) Msg {
	return Msg{
		kind: MsgFavoriteToggled,
		data: struct {
			id string
			viewResult
		}{id, viewResult{v, err}},
	}
}

// profileDeletedMsg is the constructor for [MsgProfileDeleted]
func profileDeletedMsg(deleted bool, err error) Msg {
	return Msg{
		kind: MsgProfileDeleted,
		data: struct {
			deleted bool
			err     error
		}{deleted, err},
	}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}
