// Package console serves the browser front-end of the sync controller.
package console

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/usersync/internal/shared"
	"github.com/odyssey-erp/usersync/internal/syncctl"
	"github.com/odyssey-erp/usersync/internal/users"
	"github.com/odyssey-erp/usersync/internal/view"
)

// Flash texts added by the console itself.
const (
	// MsgRemoteFailed is flashed when the user API could not be reached or
	// rejected the request.
	MsgRemoteFailed = "The user service did not accept the request. Please try again."
	// MsgStale is flashed when a write went through but the list could not
	// be reloaded.
	MsgStale = "The change was saved but the list could not be refreshed."
)

// Controller is the subset of *syncctl.Controller the console drives. Form
// state is passed in per request; the collection is shared.
type Controller interface {
	Users() []users.User
	Load(ctx context.Context) syncctl.Result
	CreateFrom(ctx context.Context, form *syncctl.Form) syncctl.Result
	UpdateFrom(ctx context.Context, form *syncctl.Form) syncctl.Result
	Delete(ctx context.Context, id int64) syncctl.Result
}

// Handler wires the console pages.
type Handler struct {
	logger      *slog.Logger
	ctrl        Controller
	templates   *view.Engine
	csrfManager *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, ctrl Controller, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		ctrl:        ctrl,
		templates:   templates,
		csrfManager: csrf,
	}
}

// MountRoutes registers console routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showUsers)
	r.Post("/users/create", h.handleCreate)
	r.Post("/users/update", h.handleUpdate)
	r.Post("/users/reload", h.handleReload)
	r.Post("/users/{id}/delete", h.handleDelete)
}

type usersPageData struct {
	Users []users.User
	Form  syncctl.Form
}

func (h *Handler) showUsers(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, err := h.csrfManager.EnsureToken(sess)
	if err != nil {
		h.logger.Warn("csrf token unavailable", slog.Any("error", err))
	}
	var flashes []shared.FlashMessage
	if sess != nil {
		flashes = sess.PopFlashes()
	}
	form := loadForm(sess)
	viewData := view.TemplateData{
		Title:       "Users",
		CSRFToken:   csrfToken,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		Data:        usersPageData{Users: h.ctrl.Users(), Form: form},
	}
	if err := h.templates.Render(w, "pages/users.html", viewData); err != nil {
		h.logger.Error("render users", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := loadForm(sess)
	form.CreateName = r.PostFormValue("name")
	form.CreateEmail = r.PostFormValue("email")
	res := h.ctrl.CreateFrom(r.Context(), &form)
	saveForm(sess, form)
	h.finish(w, r, res)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := loadForm(sess)
	form.UpdateID = r.PostFormValue("id")
	form.UpdateName = r.PostFormValue("name")
	form.UpdateEmail = r.PostFormValue("email")
	res := h.ctrl.UpdateFrom(r.Context(), &form)
	saveForm(sess, form)
	h.finish(w, r, res)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.finish(w, r, h.ctrl.Delete(r.Context(), id))
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.ctrl.Load(r.Context()))
}

// finish flashes remote failures and stale reloads, then redirects back to
// the list. Success and validation notices reach the session through the
// Notifier.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, res syncctl.Result) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		switch {
		case res.Status == syncctl.StatusFailed:
			sess.AddFlash(shared.FlashMessage{Kind: "danger", Message: MsgRemoteFailed})
		case res.OK() && res.Op != syncctl.OpLoad && !res.Reloaded:
			sess.AddFlash(shared.FlashMessage{Kind: "warning", Message: MsgStale})
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
