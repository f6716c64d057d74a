package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Route - object representing a route handler
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

func (a *API) createHandler(router *mux.Router, route Route) {
	var handler http.Handler
	handler = route.HandlerFunc
	handler = a.loggerHandler(handler, route.Name)

	router.
		Methods(route.Method).
		Path(route.Pattern).
		Name(route.Name).
		Handler(handler)
}

// Router returns a router with the API routes registered
func (a *API) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	routes := []Route{
		{
			"Index",
			http.MethodGet,
			"/",
			a.indexHandler,
		},

		{
			"Health",
			http.MethodGet,
			"/healthz",
			a.healthHandler,
		},

		{
			"SplitPdfs",
			http.MethodPost,
			"/api/SplitPdfs",
			a.splitHandler,
		},

		{
			"Events",
			http.MethodPost,
			"/api/events",
			a.eventsHandler,
		},
	}

	for _, route := range routes {
		a.createHandler(router, route)
	}
	return router
}
