package services

import (
	"context"
	"errors"
	"testing"

	"github.com/JaligamRishitha/renewmart-sub003/internal/db/models"
)

func TestAppendAssignsDenseVersionNumbers(t *testing.T) {
	env := newTestEnv(t)

	v1 := mustAppend(t, env, "land-1", "soil_report", "")
	if v1.VersionNumber != 1 || !v1.IsLatest || v1.ReviewStatus != models.StatusActive {
		t.Fatalf("unexpected first version: %+v", v1)
	}

	v2 := mustAppend(t, env, "land-1", "soil_report", "")
	if v2.VersionNumber != 2 || !v2.IsLatest {
		t.Fatalf("unexpected second version: %+v", v2)
	}

	// superseded version loses isLatest and is archived
	old := reload(t, env, v1.ID)
	if old.IsLatest {
		t.Fatalf("expected v1 to lose isLatest")
	}
	if old.ReviewStatus != models.StatusArchived {
		t.Fatalf("expected v1 archived, got %s", old.ReviewStatus)
	}
}

func TestAppendKeepsUnderReviewVersionStatus(t *testing.T) {
	env := newTestEnv(t)

	v1 := mustAppend(t, env, "land-1", "soil_report", "")
	if _, err := env.reviews.Lock(context.Background(), v1.ID, "reviewer-1", "checking"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	v2 := mustAppend(t, env, "land-1", "soil_report", "")
	if !v2.IsLatest {
		t.Fatalf("new version must become latest")
	}

	old := reload(t, env, v1.ID)
	if old.IsLatest {
		t.Fatalf("expected v1 to lose isLatest")
	}
	if old.ReviewStatus != models.StatusUnderReview {
		t.Fatalf("under-review version must keep its status, got %s", old.ReviewStatus)
	}
}

func TestAppendRejectsInvalidSlot(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.versions.Append(context.Background(), "land-1", "ownership_documents", "D3",
		FileRef{Name: "cert.pdf"}, "uploader-1")
	if !errors.Is(err, &EngineError{Kind: KindInvalidSlot}) {
		t.Fatalf("expected InvalidSlot, got %v", err)
	}
}

func TestAppendMultiSlotFillsFirstEmptySlot(t *testing.T) {
	env := newTestEnv(t)

	first := mustAppend(t, env, "land-1", "ownership_documents", "")
	if first.Slot != SlotD1 {
		t.Fatalf("expected D1, got %s", first.Slot)
	}

	second := mustAppend(t, env, "land-1", "ownership_documents", "")
	if second.Slot != SlotD2 {
		t.Fatalf("expected D2 for second unrequested upload, got %s", second.Slot)
	}
	if second.VersionNumber != 1 {
		t.Fatalf("new slot starts at version 1, got %d", second.VersionNumber)
	}

	// both slots occupied: falls back onto D1 as a new version there
	third := mustAppend(t, env, "land-1", "ownership_documents", "")
	if third.Slot != SlotD1 || third.VersionNumber != 2 {
		t.Fatalf("expected D1 v2, got %s v%d", third.Slot, third.VersionNumber)
	}
}

func TestListGroupsBySlotNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	mustAppend(t, env, "land-1", "ownership_documents", "D1")
	mustAppend(t, env, "land-1", "ownership_documents", "D1")
	mustAppend(t, env, "land-1", "ownership_documents", "D2")
	mustAppend(t, env, "land-1", "soil_report", "")

	groups, err := env.versions.List(context.Background(), "land-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}

	for _, g := range groups {
		for i := 1; i < len(g.Versions); i++ {
			if g.Versions[i-1].VersionNumber <= g.Versions[i].VersionNumber {
				t.Fatalf("group %s/%s not sorted descending", g.DocumentType, g.Slot)
			}
		}
	}

	filtered, err := env.versions.List(context.Background(), "land-1", "soil_report")
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].DocumentType != "soil_report" {
		t.Fatalf("type filter broken: %+v", filtered)
	}
}

func TestExactlyOneLatestPerSlot(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 4; i++ {
		mustAppend(t, env, "land-7", "soil_report", "")
	}

	var latest int64
	if err := env.db.Model(&models.DocumentVersion{}).
		Where("land_id = ? AND document_type = ? AND slot = ? AND is_latest = ?",
			"land-7", "soil_report", SlotD1, true).
		Count(&latest).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if latest != 1 {
		t.Fatalf("expected exactly one latest version, got %d", latest)
	}
}

func TestStatusSummary(t *testing.T) {
	env := newTestEnv(t)

	mustAppend(t, env, "land-1", "soil_report", "")
	mustAppend(t, env, "land-1", "soil_report", "")
	v3 := mustAppend(t, env, "land-1", "soil_report", "")

	if _, err := env.reviews.Lock(context.Background(), v3.ID, "reviewer-1", "check"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	summaries, err := env.versions.StatusSummary(context.Background(), "land-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one type summary, got %d", len(summaries))
	}
	s := summaries[0]
	if s.Total != 3 || s.UnderReview != 1 || s.Archived != 2 || s.Active != 0 || s.MaxVersion != 3 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestPurgeCascadesAssignmentsAndAudit(t *testing.T) {
	env := newTestEnv(t)

	doc := mustAppend(t, env, "land-1", "soil_report", "")
	if _, err := env.assignments.Create(context.Background(), CreateAssignmentInput{
		DocumentID:   doc.ID,
		AssignedTo:   "reviewer-1",
		AssignedBy:   "admin-1",
		ReviewerRole: "re_sales_advisor",
	}); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	if err := env.versions.Purge(context.Background(), doc.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	var docs, assignments, audits int64
	env.db.Model(&models.DocumentVersion{}).Where("id = ?", doc.ID).Count(&docs)
	env.db.Model(&models.Assignment{}).Where("document_id = ?", doc.ID).Count(&assignments)
	env.db.Model(&models.AuditEntry{}).Where("document_id = ?", doc.ID).Count(&audits)
	if docs != 0 || assignments != 0 || audits != 0 {
		t.Fatalf("purge left rows behind: docs=%d assignments=%d audits=%d", docs, assignments, audits)
	}

	if err := env.versions.Purge(context.Background(), doc.ID); !errors.Is(err, &EngineError{Kind: KindNotFound}) {
		t.Fatalf("expected NotFound on second purge, got %v", err)
	}
}

func TestPurgeOfLatestPromotesSurvivor(t *testing.T) {
	env := newTestEnv(t)

	v1 := mustAppend(t, env, "land-1", "soil_report", "")
	v2 := mustAppend(t, env, "land-1", "soil_report", "")

	if err := env.versions.Purge(context.Background(), v2.ID); err != nil {
		t.Fatalf("purge: %v", err)
	}

	survivor := reload(t, env, v1.ID)
	if !survivor.IsLatest {
		t.Fatalf("expected surviving version to become latest: %+v", survivor)
	}

	var latest int64
	if err := env.db.Model(&models.DocumentVersion{}).
		Where("land_id = ? AND document_type = ? AND slot = ? AND is_latest = ?",
			"land-1", "soil_report", SlotD1, true).
		Count(&latest).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if latest != 1 {
		t.Fatalf("expected exactly one latest version, got %d", latest)
	}

	// purging the sole remaining version empties the slot without error
	if err := env.versions.Purge(context.Background(), v1.ID); err != nil {
		t.Fatalf("purge survivor: %v", err)
	}
}

func TestVersionNumberUniqueWithinSlot(t *testing.T) {
	env := newTestEnv(t)

	doc := mustAppend(t, env, "land-1", "soil_report", "")

	dup := models.DocumentVersion{
		ID:            "dup-1",
		LandID:        doc.LandID,
		DocumentType:  doc.DocumentType,
		Slot:          doc.Slot,
		VersionNumber: doc.VersionNumber,
		FileName:      "deed.pdf",
		ReviewStatus:  models.StatusActive,
	}
	if err := env.db.Create(&dup).Error; err == nil {
		t.Fatalf("expected duplicate version number to be rejected")
	}

	// a different slot may reuse the number
	other := dup
	other.ID = "dup-2"
	other.Slot = SlotD2
	if err := env.db.Create(&other).Error; err != nil {
		t.Fatalf("distinct slot must accept the number: %v", err)
	}
}
