// Package server wires the page, history and data handlers into one router.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/iyunix/go-kbshell/internal/backend"
	"github.com/iyunix/go-kbshell/internal/config"
	"github.com/iyunix/go-kbshell/internal/handlers"
	"github.com/iyunix/go-kbshell/internal/history"
	"github.com/iyunix/go-kbshell/internal/hydration"
	"github.com/iyunix/go-kbshell/internal/layout"
	"github.com/iyunix/go-kbshell/internal/logging"
	"github.com/iyunix/go-kbshell/internal/middleware"
	"github.com/iyunix/go-kbshell/internal/ratelimit"
	"github.com/iyunix/go-kbshell/internal/session"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Config    *config.Config
	Logger    logging.Logger
	Store     *history.Store
	Docs      handlers.DocumentService
	Backend   *backend.Client
	Validator *session.Validator
	Limiter   *ratelimit.Limiter
}

// NewRouter builds the HTTP handler for the shell.
func NewRouter(d Deps) (http.Handler, error) {
	cfg := d.Config

	// Server HTML is the pre-render: its gate never transitions. The JSON API
	// is what the mounted client reads, so it formats with a ready gate.
	preRender, err := hydration.NewDateFormatter(hydration.NewGate(), cfg.UILocale, hydration.FormatOptions{
		DateStyle: hydration.StyleMedium,
		TimeStyle: hydration.StyleShort,
		Location:  cfg.Location(),
	})
	if err != nil {
		return nil, err
	}
	live := preRender.WithGate(hydration.NewReadyGate())

	// <html lang> uses the same canonical tag the timestamps are formatted in.
	renderer, err := layout.NewRenderer(func(r *http.Request) bool {
		return session.IsAuthenticated(r.Context())
	}, preRender.Locale().String(), d.Logger)
	if err != nil {
		return nil, err
	}
	renderer.UseCSRF(middleware.CSRFToken)

	pageHandler, err := handlers.NewPageHandler(renderer, d.Store, d.Docs, d.Backend, preRender, d.Logger)
	if err != nil {
		return nil, err
	}
	historyHandler := handlers.NewHistoryHandler(d.Store, live)
	dataHandler := handlers.NewDataHandler(d.Docs, d.Logger)

	r := mux.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:         86400,
	}))
	r.Use(middleware.RecoverPanic(d.Logger))
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Session(d.Validator, d.Logger))

	// --- Public Routes ---
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	// --- Pages ---
	r.HandleFunc("/", pageHandler.ShowHomePage).Methods("GET")
	r.HandleFunc("/chat", pageHandler.ShowChatPage).Methods("GET")
	r.HandleFunc("/data", pageHandler.ShowDataPage).Methods("GET")
	r.HandleFunc("/data/{id}", pageHandler.ShowDocumentPage).Methods("GET")
	r.HandleFunc("/auth/login", pageHandler.ShowLoginPage).Methods("GET")
	r.HandleFunc("/auth/register", pageHandler.ShowRegisterPage).Methods("GET")
	r.HandleFunc("/auth/logout", pageHandler.Logout).Methods("GET")

	// --- API ---
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/log", handlers.LogFrontendEvent(d.Logger)).Methods("POST")
	api.HandleFunc("/backend/health", handlers.BackendHealth(d.Backend)).Methods("GET")

	api.HandleFunc("/chats", historyHandler.ListChats).Methods("GET")
	api.HandleFunc("/chats/{id}", historyHandler.GetChat).Methods("GET")
	api.Handle("/chats", mutation(historyHandler.CreateChat)).Methods("POST")
	api.Handle("/chats", mutation(historyHandler.ClearHistory)).Methods("DELETE")
	api.Handle("/chats/{id}", mutation(historyHandler.DeleteChat)).Methods("DELETE")
	api.Handle("/chats/{id}/favorite", mutation(historyHandler.ToggleFavorite)).Methods("POST")

	api.HandleFunc("/data", dataHandler.ListDocuments).Methods("GET")
	api.HandleFunc("/data/{id}", dataHandler.GetDocument).Methods("GET")

	deleteDoc := mutation(dataHandler.DeleteDocument)
	if d.Limiter != nil {
		deleteDoc = middleware.RateLimit(d.Limiter, "delete-document", d.Logger)(deleteDoc)
	}
	api.Handle("/data/{id}", deleteDoc).Methods("DELETE")

	// --- Custom Error Handlers ---
	// These bypass r.Use middleware, so the chain is applied by hand.
	fallback := func(h http.HandlerFunc) http.Handler {
		return middleware.RecoverPanic(d.Logger)(
			middleware.Logging(d.Logger)(
				middleware.Session(d.Validator, d.Logger)(h)))
	}
	r.NotFoundHandler = fallback(pageHandler.NotFound)
	r.MethodNotAllowedHandler = fallback(pageHandler.MethodNotAllowed)

	return r, nil
}

// mutation guards a state-changing API route: a signed-in session plus a
// matching CSRF token.
func mutation(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(middleware.RequireCSRF(h))
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
