package tui

import (
	"github.com/samsriram712/alex/internal/model"
	"github.com/samsriram712/alex/internal/remotelist"
)

type alertsLoadedMsg struct {
	ticket remotelist.Ticket[model.AlertFilter]
	items  []model.Alert
	err    error
}

type todosLoadedMsg struct {
	ticket remotelist.Ticket[model.TodoFilter]
	items  []model.Todo
	err    error
}

type transitionDoneMsg struct {
	tab    tab
	id     string
	action model.Action
	err    error
}

type countsMsg struct {
	alerts int
	todos  int
}

type noticeMsg struct {
	err error
}
