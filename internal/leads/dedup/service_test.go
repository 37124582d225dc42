package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/platform/apperr"
	"callcenter_backend/platform/logger"
)

func lead(key string, activity time.Time) repository.Lead {
	return repository.Lead{
		ID:             uuid.New(),
		Phone:          key,
		PhoneKey:       key,
		LastActivityAt: activity,
		CreatedAt:      activity,
	}
}

func TestGroupDuplicatesKeepsNewest(t *testing.T) {
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	older := lead("5551000", t1)
	newer := lead("5551000", t2)

	groups := GroupDuplicates([]repository.Lead{newer, older})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Kept.ID != newer.ID {
		t.Errorf("kept the %v lead, want the newer one", groups[0].Kept.LastActivityAt)
	}
	if len(groups[0].Removed) != 1 || groups[0].Removed[0].ID != older.ID {
		t.Errorf("removed = %v, want the older lead", groups[0].Removed)
	}
}

func TestGroupDuplicatesSingletonsExcluded(t *testing.T) {
	now := time.Now()
	groups := GroupDuplicates([]repository.Lead{
		lead("5551000", now),
		lead("5552000", now),
		lead("5551000", now.Add(time.Minute)),
	})
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1 (singleton keys must not appear)", len(groups))
	}
	if groups[0].PhoneKey != "5551000" {
		t.Errorf("grouped on %q, want 5551000", groups[0].PhoneKey)
	}
}

func TestGroupDuplicatesBlankKeyNeverGroups(t *testing.T) {
	now := time.Now()
	groups := GroupDuplicates([]repository.Lead{
		lead("", now),
		lead("", now),
		lead("", now),
	})
	if len(groups) != 0 {
		t.Fatalf("blank phone keys grouped: %v", groups)
	}
}

func TestGroupDuplicatesTieBreakDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	a := lead("5551000", now)
	b := lead("5551000", now)

	first := GroupDuplicates([]repository.Lead{a, b})
	second := GroupDuplicates([]repository.Lead{b, a})
	if first[0].Kept.ID != second[0].Kept.ID {
		t.Error("survivor must not depend on input order under exact ties")
	}
}

type fakeLeadStore struct {
	candidates []repository.Lead
	deleted    []uuid.UUID
}

func (f *fakeLeadStore) DuplicateCandidates(context.Context) ([]repository.Lead, error) {
	return f.candidates, nil
}

func (f *fakeLeadStore) Delete(_ context.Context, ids []uuid.UUID) (int64, error) {
	f.deleted = ids
	return int64(len(ids)), nil
}

type fakeVerifier struct{ password string }

func (f *fakeVerifier) VerifyPassword(_ context.Context, _ uuid.UUID, password string) error {
	if password != f.password {
		return apperr.Unauthorized("invalid password")
	}
	return nil
}

func TestPreviewCountsRemovals(t *testing.T) {
	now := time.Now()
	store := &fakeLeadStore{candidates: []repository.Lead{
		lead("5551000", now),
		lead("5551000", now.Add(time.Minute)),
		lead("5551000", now.Add(2*time.Minute)),
	}}
	svc := NewService(store, &fakeVerifier{}, logger.New("test"))

	preview, err := svc.Preview(context.Background())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if preview.RemovalCount != 2 {
		t.Errorf("removal count = %d, want 2", preview.RemovalCount)
	}
}

func TestApplyWrongPassword(t *testing.T) {
	store := &fakeLeadStore{}
	svc := NewService(store, &fakeVerifier{password: "hunter2"}, logger.New("test"))

	_, err := svc.Apply(context.Background(), uuid.New(), "wrong")
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if store.deleted != nil {
		t.Error("nothing should be deleted on a failed password check")
	}
}

func TestApplyDeletesOnlyLosers(t *testing.T) {
	now := time.Now()
	survivor := lead("5551000", now.Add(time.Hour))
	store := &fakeLeadStore{candidates: []repository.Lead{
		lead("5551000", now),
		survivor,
	}}
	svc := NewService(store, &fakeVerifier{password: "hunter2"}, logger.New("test"))

	removed, err := svc.Apply(context.Background(), uuid.New(), "hunter2")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	for _, id := range store.deleted {
		if id == survivor.ID {
			t.Error("survivor was deleted")
		}
	}
}
