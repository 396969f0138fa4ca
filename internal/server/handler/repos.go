package handler

import (
	"log/slog"
	"net/http"

	"github.com/sevigo/code-review-api/internal/github"
)

// ReposHandler lists the repositories of the authenticated user using the
// GitHub token stored with their account.
type ReposHandler struct {
	clients github.ClientFactory
	logger  *slog.Logger
}

// NewReposHandler creates a new repositories handler.
func NewReposHandler(clients github.ClientFactory, logger *slog.Logger) *ReposHandler {
	return &ReposHandler{clients: clients, logger: logger}
}

// MyRepos handles GET /my-repos.
func (h *ReposHandler) MyRepos(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		unauthorized(w, "Not authenticated")
		return
	}

	upstream := user.UpstreamToken()
	if upstream.IsNone() {
		writeError(w, http.StatusBadRequest, "GitHub token not found for this user")
		return
	}

	client, err := h.clients.ForToken(r.Context(), upstream.UnwrapOr(""))
	if err != nil {
		h.logger.Error("failed to build github client", "username", user.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	repos, err := client.ListUserRepositories(r.Context())
	if err != nil {
		status, _, _ := github.UpstreamError(err)
		h.logger.Warn("listing user repositories failed", "username", user.Username, "status", status, "error", err)
		if body, ok := github.UpstreamResponse(err); ok {
			writeError(w, status, body)
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, repos)
}
