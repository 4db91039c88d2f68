package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"anna.local/annad/internal/apperr"
	"anna.local/annad/internal/episode"
	"anna.local/annad/internal/http/dto"
	"anna.local/annad/internal/model"
)

// RollbackHandler serves POST /v1/actions/{episode_id}/rollback.
// It restores every file-touching action via backup/checksum verify
// (internal/episode.BackupStore.RollbackEpisode); service and package
// inverse commands are computed (internal/episode.BuildRollbackPlan)
// and surfaced for the operator to run rather than auto-executed, per
// spec.md §4.8's distinction between "compute inverse" and "restore".
type RollbackHandler struct {
	episodes *episode.Store
	backups  *episode.BackupStore
}

// NewRollbackHandler builds a rollback handler over the episode and
// backup stores.
func NewRollbackHandler(episodes *episode.Store, backups *episode.BackupStore) *RollbackHandler {
	return &RollbackHandler{episodes: episodes, backups: backups}
}

func (h *RollbackHandler) Rollback(c *gin.Context) {
	episodeID := c.Param("episode_id")
	ctx := c.Request.Context()

	ep, backupsByAction, ok := h.episodes.Get(episodeID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown episode"})
		return
	}

	results, err := h.backups.RollbackEpisode(ctx, ep, backupsByAction)
	status := string(model.EpisodeRolledBack)
	if err != nil {
		if errors.Is(err, apperr.ErrRollbackUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		status = string(model.EpisodeFailed)
	}

	if updateErr := h.episodes.UpdateStatus(episodeID, model.ExecutionStatus(status)); updateErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": updateErr.Error()})
		return
	}

	resp := dto.RollbackResponse{
		EpisodeID: episodeID,
		Capability: string(ep.RollbackCapability),
		Status:    status,
	}
	for _, r := range results {
		out := dto.RollbackResult{ActionID: r.ActionID, Restored: r.Restored}
		if r.Err != nil {
			out.Error = r.Err.Error()
		}
		resp.Results = append(resp.Results, out)
	}

	// Only service/package actions are surfaced here: file-based
	// actions were already restored above from their backups.
	plans := episode.BuildRollbackPlan(ep.Actions, backupsByAction)
	for i := len(ep.Actions) - 1; i >= 0; i-- {
		a := ep.Actions[i]
		plan := plans[len(ep.Actions)-1-i]
		if a.Kind == model.ActionServiceAction && plan.HasInverse {
			resp.UnexecutedInverse = append(resp.UnexecutedInverse, plan.Commands...)
		}
	}

	c.JSON(http.StatusOK, resp)
}
