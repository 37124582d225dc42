package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"callcenter_backend/internal/leads/assignment"
	"callcenter_backend/internal/leads/dedup"
	"callcenter_backend/internal/leads/importing"
	"callcenter_backend/internal/leads/reporting"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/httpkit"
	"callcenter_backend/platform/phone"
)

const maxImportSize = 32 << 20 // 32 MiB

// AdminHandler serves the lead management surface.
type AdminHandler struct {
	repo       *repository.Repository
	assignment *assignment.Service
	dedup      *dedup.Service
	reporting  *reporting.Service
	importing  *importing.Service
}

func NewAdminHandler(repo *repository.Repository, a *assignment.Service, d *dedup.Service, r *reporting.Service, i *importing.Service) *AdminHandler {
	return &AdminHandler{repo: repo, assignment: a, dedup: d, reporting: r, importing: i}
}

// List handles GET /api/v1/admin/leads.
func (h *AdminHandler) List(c *gin.Context) {
	params, page, pageSize := parseListQuery(c)

	leads, total, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, transport.NewLeadPage(leads, total, page, pageSize))
}

func parseListQuery(c *gin.Context) (repository.ListParams, int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	params := repository.ListParams{
		Search: c.Query("search"),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if raw := c.Query("dispositions"); raw != "" {
		params.Dispositions = strings.Split(raw, ",")
	}
	if raw := c.Query("assignedTo"); raw != "" {
		if raw == "unassigned" {
			params.Unassigned = true
		} else if id, err := uuid.Parse(raw); err == nil {
			params.AssignedTo = &id
		}
	}
	for query, target := range map[string]**string{
		"product":     &params.Product,
		"prevCompany": &params.PrevCompany,
		"listName":    &params.ListName,
		"customId":    &params.CustomID,
		"language":    &params.Language,
	} {
		if value := c.Query(query); value != "" {
			v := value
			*target = &v
		}
	}
	params.ActivityFrom, params.ActivityTo = parseWindow(c)
	return params, page, pageSize
}

// parseWindow reads the optional from/to query bounds; malformed values are
// treated as absent.
func parseWindow(c *gin.Context) (from, to *time.Time) {
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			to = &t
		}
	}
	return from, to
}

// FilterOptions handles GET /api/v1/admin/leads/filters.
func (h *AdminHandler) FilterOptions(c *gin.Context) {
	options, err := h.repo.GetFilterOptions(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":      options.Products,
		"prevCompanies": options.PrevCompanies,
		"listNames":     options.ListNames,
		"customIds":     options.CustomIDs,
		"languages":     options.Languages,
	})
}

// Get handles GET /api/v1/admin/leads/:id.
func (h *AdminHandler) Get(c *gin.Context) {
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
	c.JSON(http.StatusOK, transport.ToLeadResponse(lead))
}

// Update handles PATCH /api/v1/admin/leads/:id.
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
		return
	}
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := repository.UpdateLeadParams{
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		AltContact:  req.AltContact,
		Product:     req.Product,
		PrevCompany: req.PrevCompany,
		ListName:    req.ListName,
		CustomID:    req.CustomID,
		Notes:       req.Notes,
		Language:    req.Language,
	}
	if req.Phone != nil {
		key := phone.MatchKey(*req.Phone)
		params.PhoneKey = &key
	}

	lead, err := h.repo.Update(c.Request.Context(), id, params)
	if err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	// A disposition edit goes through ApplyDisposition so the history row
	// lands in the same transaction as the field change.
	if req.Disposition != nil {
		if *req.Disposition == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "disposition must not be empty"})
			return
		}
		identity := httpkit.MustGetIdentity(c)
		if identity == nil {
			return
		}
		notes := lead.Notes
		if req.Notes != nil {
			notes = *req.Notes
		}
		lead, err = h.repo.ApplyDisposition(c.Request.Context(), repository.ApplyDispositionParams{
			LeadID:      id,
			Disposition: *req.Disposition,
			Notes:       notes,
			Language:    req.Language,
			AgentID:     identity.UserID(),
			Action:      "Admin Update",
			HistoryNote: notes,
		})
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, transport.ToLeadResponse(lead))
}

// History handles GET /api/v1/admin/leads/:id/history.
func (h *AdminHandler) History(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
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

// Reassign handles POST /api/v1/admin/leads/reassign.
func (h *AdminHandler) Reassign(c *gin.Context) {
	var req transport.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	moved, err := h.assignment.Reassign(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movedCount": moved})
}

// BulkDelete handles POST /api/v1/admin/leads/delete.
func (h *AdminHandler) BulkDelete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	removed, err := h.assignment.BulkDelete(c.Request.Context(), identity.UserID(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": removed})
}

// Unassigned handles GET /api/v1/admin/leads/unassigned.
func (h *AdminHandler) Unassigned(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	result, err := h.assignment.ListUnassigned(c.Request.Context(), page, pageSize)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DedupPreview handles GET /api/v1/admin/dedup/preview.
func (h *AdminHandler) DedupPreview(c *gin.Context) {
	preview, err := h.dedup.Preview(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// DedupApply handles POST /api/v1/admin/dedup/apply.
func (h *AdminHandler) DedupApply(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.DedupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	removed, err := h.dedup.Apply(c.Request.Context(), identity.UserID(), req.Password)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, transport.DedupApplyResponse{RemovedCount: removed})
}

// GlobalStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GlobalStats(c *gin.Context) {
	from, to := parseWindow(c)
	stats, err := h.reporting.GlobalStats(c.Request.Context(), from, to)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AgentStats handles GET /api/v1/admin/users/:id/stats.
func (h *AdminHandler) AgentStats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	from, to := parseWindow(c)
	stats, err := h.reporting.AgentStats(c.Request.Context(), id, from, to)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UserSummary handles GET /api/v1/admin/summary.
func (h *AdminHandler) UserSummary(c *gin.Context) {
	summary, err := h.reporting.UserSummary(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": summary})
}

// Import handles POST /api/v1/admin/imports (multipart upload).
func (h *AdminHandler) Import(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	defer file.Close()
	if header.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	job, err := h.importing.Upload(c.Request.Context(), identity.UserID(), importing.UploadRequest{
		ListName: c.PostForm("listName"),
		CustomID: c.PostForm("customId"),
	}, file, header.Size)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// Imports handles GET /api/v1/admin/imports.
func (h *AdminHandler) Imports(c *gin.Context) {
	jobs, err := h.importing.Recent(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// ImportStatus handles GET /api/v1/admin/imports/:id.
func (h *AdminHandler) ImportStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	job, err := h.importing.Status(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
