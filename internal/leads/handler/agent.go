// Package handler exposes the leads API: the agent call flow and the admin
// management surface.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"callcenter_backend/internal/leads/disposition"
	"callcenter_backend/internal/leads/reporting"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/scheduling"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/httpkit"
)

// AgentHandler serves the endpoints an agent works from.
type AgentHandler struct {
	repo        *repository.Repository
	disposition *disposition.Service
	scheduling  *scheduling.Service
	reporting   *reporting.Service
}

func NewAgentHandler(repo *repository.Repository, d *disposition.Service, s *scheduling.Service, r *reporting.Service) *AgentHandler {
	return &AgentHandler{repo: repo, disposition: d, scheduling: s, reporting: r}
}

// Leads handles GET /api/v1/agent/leads.
func (h *AgentHandler) Leads(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var leads []repository.Lead
	var err error
	if d := c.Query("disposition"); d != "" {
		leads, err = h.repo.AgentLeadsByDisposition(c.Request.Context(), identity.UserID(), d)
	} else {
		leads, err = h.repo.AgentLeads(c.Request.Context(), identity.UserID())
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": transport.ToLeadResponses(leads)})
}

// Lead handles GET /api/v1/agent/leads/:id.
func (h *AgentHandler) Lead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
		return
	}

	lead, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		httpkit.HandleError(c, err)
		return
	}
	if lead.AssignedTo == nil || *lead.AssignedTo != identity.UserID() {
		c.JSON(http.StatusForbidden, gin.H{"error": "lead is not assigned to you"})
		return
	}
	c.JSON(http.StatusOK, transport.ToLeadResponse(lead))
}

// History handles GET /api/v1/agent/leads/:id/history.
func (h *AgentHandler) History(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
		return
	}

	lead, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		httpkit.HandleError(c, err)
		return
	}
	if lead.AssignedTo == nil || *lead.AssignedTo != identity.UserID() {
		c.JSON(http.StatusForbidden, gin.H{"error": "lead is not assigned to you"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	entries, total, err := h.repo.History(c.Request.Context(), id, limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, transport.ToHistoryPage(entries, total))
}

// Disposition handles POST /api/v1/agent/leads/:id/disposition.
func (h *AgentHandler) Disposition(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
		return
	}

	var req transport.DispositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lead, err := h.disposition.Apply(c.Request.Context(), identity.UserID(), identity.SessionID(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Callbacks handles GET /api/v1/agent/callbacks.
func (h *AgentHandler) Callbacks(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	callbacks, err := h.scheduling.Pending(c.Request.Context(), identity.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"callbacks": callbacks})
}

// Stats handles GET /api/v1/agent/stats.
func (h *AgentHandler) Stats(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	from, to := parseWindow(c)
	stats, err := h.reporting.AgentStats(c.Request.Context(), identity.UserID(), from, to)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StatsToday handles GET /api/v1/agent/stats/today.
func (h *AgentHandler) StatsToday(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	stats, err := h.reporting.AgentStatsToday(c.Request.Context(), identity.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
