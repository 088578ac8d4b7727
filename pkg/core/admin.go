package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-hooks/pkg/hooks"
)

type routeTable struct {
	Routes []hooks.Route `json:"routes"`
	Tasks  int           `json:"tasks"`
}

func listRoutes(reg *hooks.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond(w, routeTable{Routes: reg.Routes(), Tasks: reg.Len()}, http.StatusOK)
	})
}
