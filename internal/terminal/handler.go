package terminal

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/access-bridge/internal/transport"
)

type RepositoryAPI interface {
	ListActive() ([]*Terminal, error)
	ListAll() ([]*Terminal, error)
}

type Handler struct {
	*transport.BaseHandler
	Repo RepositoryAPI
}

func NewHandler(repo RepositoryAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Repo:        repo,
	}
}

// ListDevices returns every configured terminal; pass ?active=true to
// restrict to the set the sync flows visit.
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	var (
		terminals []*Terminal
		err       error
	)
	if r.URL.Query().Get("active") == "true" {
		terminals, err = h.Repo.ListActive()
	} else {
		terminals, err = h.Repo.ListAll()
	}
	if err != nil {
		h.Logger.Error("ListDevices: repository error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"devices": terminals,
		"count":   len(terminals),
	})
}
