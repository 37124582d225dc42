// Package dedup finds and merges duplicate leads that share a phone number.
package dedup

import (
	"context"

	"github.com/google/uuid"

	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/internal/leads/transport"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
)

// LeadStore is the slice of the lead repository this service needs.
type LeadStore interface {
	DuplicateCandidates(ctx context.Context) ([]repository.Lead, error)
	Delete(ctx context.Context, leadIDs []uuid.UUID) (int64, error)
}

// PasswordVerifier re-checks the acting admin's password before the merge.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
}

type Service struct {
	leads    LeadStore
	verifier PasswordVerifier
	log      *logger.Logger
}

func NewService(leads LeadStore, verifier PasswordVerifier, log *logger.Logger) *Service {
	return &Service{leads: leads, verifier: verifier, log: log}
}

// Group is one set of leads sharing a phone key: the survivor and the rest.
type Group struct {
	PhoneKey string
	Kept     repository.Lead
	Removed  []repository.Lead
}

// GroupDuplicates clusters leads by phone key and picks the survivor of each
// cluster: latest last_activity_at wins, then latest created_at, then highest
// ID so the choice is deterministic under exact ties. Leads with a blank key
// never group.
func GroupDuplicates(leads []repository.Lead) []Group {
	byKey := make(map[string][]repository.Lead)
	order := make([]string, 0)
	for _, lead := range leads {
		if lead.PhoneKey == "" {
			continue
		}
		if _, seen := byKey[lead.PhoneKey]; !seen {
			order = append(order, lead.PhoneKey)
		}
		byKey[lead.PhoneKey] = append(byKey[lead.PhoneKey], lead)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		cluster := byKey[key]
		if len(cluster) < 2 {
			continue
		}
		kept := cluster[0]
		for _, lead := range cluster[1:] {
			if survives(lead, kept) {
				kept = lead
			}
		}
		group := Group{PhoneKey: key, Kept: kept}
		for _, lead := range cluster {
			if lead.ID != kept.ID {
				group.Removed = append(group.Removed, lead)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func survives(a, b repository.Lead) bool {
	if !a.LastActivityAt.Equal(b.LastActivityAt) {
		return a.LastActivityAt.After(b.LastActivityAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

// Preview shows what a merge would remove without touching anything.
func (s *Service) Preview(ctx context.Context) (transport.DedupPreviewResponse, error) {
	candidates, err := s.leads.DuplicateCandidates(ctx)
	if err != nil {
		return transport.DedupPreviewResponse{}, apperr.Storage("dedup.preview", err)
	}

	groups := GroupDuplicates(candidates)
	resp := transport.DedupPreviewResponse{Groups: make([]transport.DedupPreviewGroup, 0, len(groups))}
	for _, group := range groups {
		resp.Groups = append(resp.Groups, transport.DedupPreviewGroup{
			PhoneKey: group.PhoneKey,
			Kept:     transport.ToLeadResponse(group.Kept),
			Removed:  transport.ToLeadResponses(group.Removed),
		})
		resp.RemovalCount += len(group.Removed)
	}
	return resp, nil
}

// Apply performs the merge after re-verifying the admin's password. Each
// cluster keeps its survivor; the rest are deleted along with their history.
func (s *Service) Apply(ctx context.Context, adminID uuid.UUID, password string) (int64, error) {
	if err := s.verifier.VerifyPassword(ctx, adminID, password); err != nil {
		return 0, err
	}

	candidates, err := s.leads.DuplicateCandidates(ctx)
	if err != nil {
		return 0, apperr.Storage("dedup.candidates", err)
	}

	var doomed []uuid.UUID
	for _, group := range GroupDuplicates(candidates) {
		for _, lead := range group.Removed {
			doomed = append(doomed, lead.ID)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	removed, err := s.leads.Delete(ctx, doomed)
	if err != nil {
		return 0, apperr.Storage("dedup.delete", err)
	}
	s.log.Info("duplicate leads merged", "removed", removed, "admin_id", adminID)
	return removed, nil
}
