package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"poker-pool/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// NewRouter serves the local control API of one node.
func NewRouter(g Game, st store.PersistenceClient) *chi.Mux {
	gameHandlers := NewGameHandlers(g)
	adminHandlers := NewAdminHandlers(st)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/room", gameHandlers.Room())
		r.Get("/peers", gameHandlers.Peers())
		r.Get("/sessions", adminHandlers.Sessions())

		r.Group(func(r chi.Router) {
			r.Use(BodyCaptureMiddleware(4096))
			r.Post("/game/start", gameHandlers.Start())
			r.Post("/rack/next", gameHandlers.NextRack())
			r.Post("/balls/{number}/pocket", gameHandlers.Pocket())
			r.Post("/hand/claim", gameHandlers.Claim())
			r.Post("/turn/end", gameHandlers.EndTurn())
		})

		r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 64)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
