// Package transport defines the request and response shapes of the leads API.
package transport

import (
	"time"

	"github.com/google/uuid"

	"callcenter_backend/internal/leads/repository"
)

// DispositionRequest records an agent's call outcome for one lead.
// CallbackDate and CallbackTime are only honored together; a date without a
// time (or vice versa) schedules nothing.
type DispositionRequest struct {
	Disposition  string `json:"disposition" binding:"required"`
	Notes        string `json:"notes"`
	Language     string `json:"language"`
	CallbackDate string `json:"callbackDate"`
	CallbackTime string `json:"callbackTime"`
}

// UpdateLeadRequest carries optional admin edits; absent fields keep their
// current values.
type UpdateLeadRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	AltContact  *string `json:"altContact"`
	Product     *string `json:"product"`
	PrevCompany *string `json:"prevCompany"`
	ListName    *string `json:"listName"`
	CustomID    *string `json:"customId"`
	Notes       *string `json:"notes"`
	Language    *string `json:"language"`
	Disposition *string `json:"disposition"`
}

// ReassignRequest moves leads between agents. A nil TargetID returns them to
// the unassigned pool.
type ReassignRequest struct {
	LeadIDs  []uuid.UUID `json:"leadIds" binding:"required,min=1"`
	TargetID *uuid.UUID  `json:"targetId"`
}

// BulkDeleteRequest removes leads permanently and requires the acting
// admin's password again.
type BulkDeleteRequest struct {
	LeadIDs  []uuid.UUID `json:"leadIds" binding:"required,min=1"`
	Password string      `json:"password" binding:"required"`
}

// DedupRequest confirms a destructive merge with the admin's password.
type DedupRequest struct {
	Password string `json:"password" binding:"required"`
}

type LeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	AltContact     string     `json:"altContact"`
	Product        string     `json:"product"`
	PrevCompany    string     `json:"prevCompany"`
	ListName       string     `json:"listName"`
	CustomID       string     `json:"customId"`
	AssignedTo     *uuid.UUID `json:"assignedTo"`
	Disposition    *string    `json:"disposition"`
	Language       *string    `json:"language"`
	Notes          string     `json:"notes"`
	CallbackAt     *time.Time `json:"callbackAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:             lead.ID,
		Name:           lead.Name,
		Phone:          lead.Phone,
		Address:        lead.Address,
		AltContact:     lead.AltContact,
		Product:        lead.Product,
		PrevCompany:    lead.PrevCompany,
		ListName:       lead.ListName,
		CustomID:       lead.CustomID,
		AssignedTo:     lead.AssignedTo,
		Disposition:    lead.Disposition,
		Language:       lead.Language,
		Notes:          lead.Notes,
		CallbackAt:     lead.CallbackAt,
		LastActivityAt: lead.LastActivityAt,
		CreatedAt:      lead.CreatedAt,
	}
}

func ToLeadResponses(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, ToLeadResponse(lead))
	}
	return out
}

// LeadPageResponse is a paginated lead listing.
type LeadPageResponse struct {
	Leads      []LeadResponse `json:"leads"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

func NewLeadPage(leads []repository.Lead, total int64, page, pageSize int) LeadPageResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return LeadPageResponse{
		Leads:      ToLeadResponses(leads),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

type HistoryEntryResponse struct {
	ID          int64      `json:"id"`
	Action      string     `json:"action"`
	Disposition *string    `json:"disposition"`
	Note        string     `json:"note"`
	AgentID     *uuid.UUID `json:"agentId"`
	AgentName   *string    `json:"agentName"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type HistoryPageResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
	Total   int64                  `json:"total"`
}

func ToHistoryPage(entries []repository.HistoryEntry, total int64) HistoryPageResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryEntryResponse{
			ID:          entry.ID,
			Action:      entry.Action,
			Disposition: entry.Disposition,
			Note:        entry.Note,
			AgentID:     entry.AgentID,
			AgentName:   entry.AgentName,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return HistoryPageResponse{Entries: out, Total: total}
}

// CallbackResponse is one scheduled follow-up in the agent's queue.
type CallbackResponse struct {
	Lead       LeadResponse `json:"lead"`
	CallbackAt time.Time    `json:"callbackAt"`
	Overdue    bool         `json:"overdue"`
}

// ImportJobResponse reports a CSV import's progress.
type ImportJobResponse struct {
	ID           uuid.UUID  `json:"id"`
	ListName     string     `json:"listName"`
	CustomID     string     `json:"customId"`
	Status       string     `json:"status"`
	TotalRows    int64      `json:"totalRows"`
	InsertedRows int64      `json:"insertedRows"`
	Error        *string    `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func ToImportJobResponse(job repository.ImportJob) ImportJobResponse {
	return ImportJobResponse{
		ID:           job.ID,
		ListName:     job.ListName,
		CustomID:     job.CustomID,
		Status:       job.Status,
		TotalRows:    job.TotalRows,
		InsertedRows: job.InsertedRows,
		Error:        job.Error,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// DedupPreviewGroup is one cluster of leads sharing a phone key.
type DedupPreviewGroup struct {
	PhoneKey string         `json:"phoneKey"`
	Kept     LeadResponse   `json:"kept"`
	Removed  []LeadResponse `json:"removed"`
}

type DedupPreviewResponse struct {
	Groups       []DedupPreviewGroup `json:"groups"`
	RemovalCount int                 `json:"removalCount"`
}

type DedupApplyResponse struct {
	RemovedCount int64 `json:"removedCount"`
}

// GlobalStatsResponse summarizes the whole lead pool for the admin dashboard.
type GlobalStatsResponse struct {
	TotalLeads     int64            `json:"totalLeads"`
	AssignedLeads  int64            `json:"assignedLeads"`
	CompletedLeads int64            `json:"completedLeads"`
	ByDisposition  map[string]int64 `json:"byDisposition"`
}

// AgentStatsResponse holds one agent's counters and derived rates. Rates are
// percentages rounded to one decimal place; a zero denominator yields 0.
type AgentStatsResponse struct {
	Counts             map[string]int64 `json:"counts"`
	TotalCalls         int64            `json:"totalCalls"`
	Contacts           int64            `json:"contacts"`
	Leads              int64            `json:"leads"`
	Sales              int64            `json:"sales"`
	ContactRate        float64          `json:"contactRate"`
	LeadConversionRate float64          `json:"leadConversionRate"`
	SaleRate           float64          `json:"saleRate"`
}

// ProgressResponse reports how far through the assigned list the agent is.
type ProgressResponse struct {
	CurrentIndex int `json:"currentIndex"`
	Total        int `json:"total"`
}
