package synclog

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/access-bridge/internal/transport"
)

type RepositoryAPI interface {
	Record(op *Operation) error
	Stats() ([]*Stat, error)
	Count() (int64, error)
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

// GetStats returns sync attempt counts grouped by (sync type, status).
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Repo.Stats()
	if err != nil {
		h.Logger.Error("GetStats: repository error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}
