// Package exports streams lead data out as CSV downloads.
package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "callcenter_backend/internal/http"
	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/platform/httpkit"
	"callcenter_backend/platform/logger"
)

const exportPageSize = 1000

// LeadSource is the slice of the lead repository exports read from.
type LeadSource interface {
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int64, error)
	PendingCallbacks(ctx context.Context, agentID uuid.UUID) ([]repository.Lead, error)
}

// Module is the exports bounded context implementing http.Module.
type Module struct {
	leads LeadSource
	log   *logger.Logger
}

func NewModule(leads LeadSource, log *logger.Logger) *Module {
	return &Module{leads: leads, log: log}
}

func (m *Module) Name() string { return "exports" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/exports/leads.csv", m.exportLeads)
	ctx.Agent.GET("/exports/callbacks.csv", m.exportCallbacks)
}

var leadHeader = []string{
	"name", "phone", "address", "altContact", "product", "prevCompany",
	"listName", "customId", "disposition", "language", "notes",
	"callbackAt", "lastActivityAt",
}

func leadRow(lead repository.Lead) []string {
	disposition := ""
	if lead.Disposition != nil {
		disposition = *lead.Disposition
	}
	language := ""
	if lead.Language != nil {
		language = *lead.Language
	}
	callbackAt := ""
	if lead.CallbackAt != nil {
		callbackAt = lead.CallbackAt.Format(time.RFC3339)
	}
	return []string{
		lead.Name, lead.Phone, lead.Address, lead.AltContact, lead.Product,
		lead.PrevCompany, lead.ListName, lead.CustomID, disposition, language,
		lead.Notes, callbackAt, lead.LastActivityAt.Format(time.RFC3339),
	}
}

// exportLeads handles GET /api/v1/admin/exports/leads.csv, streaming every
// matching lead page by page so an export of the whole pool never holds it
// in memory at once.
func (m *Module) exportLeads(c *gin.Context) {
	params := parseExportQuery(c)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="leads.csv"`)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(leadHeader); err != nil {
		return
	}

	params.Limit = exportPageSize
	for offset := 0; ; offset += exportPageSize {
		params.Offset = offset
		leads, _, err := m.leads.List(c.Request.Context(), params)
		if err != nil {
			m.log.Error("lead export aborted", "offset", offset, "error", err)
			return
		}
		for _, lead := range leads {
			if err := writer.Write(leadRow(lead)); err != nil {
				return
			}
		}
		writer.Flush()
		if len(leads) < exportPageSize {
			break
		}
	}
}

func parseExportQuery(c *gin.Context) repository.ListParams {
	params := repository.ListParams{Search: c.Query("search")}
	if raw := c.Query("listName"); raw != "" {
		params.ListName = &raw
	}
	if raw := c.Query("disposition"); raw != "" {
		params.Dispositions = []string{raw}
	}
	if raw := c.Query("assignedTo"); raw != "" {
		if raw == "unassigned" {
			params.Unassigned = true
		} else if id, err := uuid.Parse(raw); err == nil {
			params.AssignedTo = &id
		}
	}
	return params
}

// exportCallbacks handles GET /api/v1/agent/exports/callbacks.csv.
func (m *Module) exportCallbacks(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leads, err := m.leads.PendingCallbacks(c.Request.Context(), identity.UserID())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="callbacks-%s.csv"`,
		time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"name", "phone", "callbackAt", "overdue", "notes"})
	now := time.Now()
	for _, lead := range leads {
		if lead.CallbackAt == nil {
			continue
		}
		_ = writer.Write([]string{
			lead.Name, lead.Phone,
			lead.CallbackAt.Format(time.RFC3339),
			strconv.FormatBool(lead.CallbackAt.Before(now)),
			lead.Notes,
		})
	}
	writer.Flush()
}

var _ apphttp.Module = (*Module)(nil)
