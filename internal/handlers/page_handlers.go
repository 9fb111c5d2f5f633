// File: internal/handlers/page_handlers.go
package handlers

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-kbshell/internal/backend"
	"github.com/iyunix/go-kbshell/internal/history"
	"github.com/iyunix/go-kbshell/internal/hydration"
	"github.com/iyunix/go-kbshell/internal/layout"
	"github.com/iyunix/go-kbshell/internal/logging"
	"github.com/iyunix/go-kbshell/internal/middleware"
)

type PageHandler struct {
	renderer  *layout.Renderer
	store     *history.Store
	docs      DocumentService
	backend   *backend.Client
	formatter *hydration.DateFormatter
	homeHTML  template.HTML
	logger    logging.Logger
}

// NewPageHandler renders server-side pages. Server output is the pre-render,
// so formatter should be bound to a gate that is still pending: timestamps go
// out as bare datetime attributes and the client fills in the text.
func NewPageHandler(
	renderer *layout.Renderer,
	store *history.Store,
	docs DocumentService,
	backendClient *backend.Client,
	formatter *hydration.DateFormatter,
	logger logging.Logger,
) (*PageHandler, error) {
	home, err := renderMarkdown(homeMarkdown)
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		renderer:  renderer,
		store:     store,
		docs:      docs,
		backend:   backendClient,
		formatter: formatter,
		homeHTML:  home,
		logger:    logger,
	}, nil
}

func (h *PageHandler) ShowHomePage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "home.html", "Home", map[string]interface{}{
		"Body": h.homeHTML,
	})
}

func (h *PageHandler) ShowChatPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "chat.html", "Chats", map[string]interface{}{
		"Chats": toChatViews(h.store.Chats(), h.formatter),
	})
}

func (h *PageHandler) ShowDataPage(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListIngestedData(r.Context())
	if err != nil {
		status, msg := remoteStatus(err)
		h.logger.Warn("listing ingested data failed", "error", err)
		h.renderer.Render(w, r, status, "data.html", "Data", map[string]interface{}{
			"Error": msg,
		})
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "data.html", "Data", map[string]interface{}{
		"Documents": docs,
	})
}

func (h *PageHandler) ShowDocumentPage(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.GetDocumentDetails(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		status, msg := remoteStatus(err)
		h.logger.Warn("fetching document failed", "error", err)
		h.ShowErrorPage(w, r, status, msg, "The document could not be loaded.")
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "document.html", doc.FileName, map[string]interface{}{
		"Document": doc,
	})
}

func (h *PageHandler) ShowLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "login.html", "Sign in", map[string]interface{}{
		"Action": h.backend.URL("auth/login"),
	})
}

func (h *PageHandler) ShowRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "register.html", "Create account", map[string]interface{}{
		"Action": h.backend.URL("auth/register"),
	})
}

// Logout drops the session cookie and returns to the sign-in page.
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.ShowErrorPage(w, r, http.StatusNotFound, "Page Not Found", "The page you are looking for does not exist.")
}

func (h *PageHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.ShowErrorPage(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", "The method is not allowed for this resource.")
}

func (h *PageHandler) ShowErrorPage(w http.ResponseWriter, r *http.Request, status int, message, description string) {
	h.renderer.Render(w, r, status, "error.html", message, map[string]interface{}{
		"Code":        status,
		"Message":     message,
		"Description": description,
	})
}
