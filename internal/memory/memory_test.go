package memory

import (
	"context"
	"testing"

	"studio/internal/domain"
)

func snapshot(objectives []domain.Objective, frameworks ...string) domain.MemorySnapshot {
	return domain.MemorySnapshot{BrandID: "b1", Objectives: objectives, MessagingFrameworks: frameworks}
}

func TestSuggest(t *testing.T) {
	t.Parallel()
	conv := domain.ObjectiveConversion
	cases := []struct {
		name      string
		snap      domain.MemorySnapshot
		objective domain.Objective
		framework string
		want      Suggestion
	}{
		{
			name:      "no history",
			snap:      snapshot(nil),
			objective: conv,
			framework: "urgency",
		},
		{
			name:      "single use is not repetition",
			snap:      snapshot([]domain.Objective{conv}, "urgency"),
			objective: conv,
			framework: "urgency",
		},
		{
			name:      "repeated framework suggests first unused alternative",
			snap:      snapshot([]domain.Objective{conv}, "urgency", "Urgency", "scarcity"),
			objective: conv,
			framework: "urgency",
			want:      Suggestion{MessagingFramework: "clear CTA"},
		},
		{
			name:      "repeated objective suggests unused objective",
			snap:      snapshot([]domain.Objective{conv, conv, domain.ObjectiveAwareness}),
			objective: conv,
			framework: "urgency",
			want:      Suggestion{Objective: domain.ObjectiveEngagement},
		},
		{
			name:      "unknown objective uses awareness alternatives",
			snap:      snapshot(nil, "AIDA", "aida"),
			objective: "launch",
			framework: "AIDA",
			want:      Suggestion{MessagingFramework: "PAS"},
		},
		{
			name:      "each objective used once",
			snap:      snapshot(domain.Objectives, "x"),
			objective: domain.ObjectiveAwareness,
			framework: "x",
		},
	}
	for _, tc := range cases {
		got := Suggest(tc.snap, tc.objective, tc.framework)
		if got != tc.want {
			t.Fatalf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestHint(t *testing.T) {
	t.Parallel()
	if got := Hint(domain.MemorySnapshot{}); got != "" {
		t.Fatalf("empty snapshot hint = %q", got)
	}
	snap := snapshot(
		[]domain.Objective{domain.ObjectiveConversion, domain.ObjectiveConversion, domain.ObjectiveAwareness},
		"urgency", "urgency", "PAS",
	)
	want := "Recent: conversion, awareness; urgency, PAS. Prefer variety when appropriate." +
		" Consider objective engagement. Consider messaging framework scarcity."
	if got := Hint(snap); got != want {
		t.Fatalf("Hint = %q\nwant %q", got, want)
	}

	plain := snapshot([]domain.Objective{"awareness", "engagement", "conversion", "retention"}, "AIDA", "PAS", "storytelling", "benefit-led")
	got := Hint(plain)
	if got != "Recent: awareness, engagement, conversion; AIDA, PAS, storytelling. Prefer variety when appropriate." {
		t.Fatalf("Hint = %q", got)
	}
}

func TestLocalStoreCapsAndOrders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewLocalStore()
	for i := 0; i < RecentEntries+5; i++ {
		obj := domain.ObjectiveAwareness
		if i%2 == 1 {
			obj = domain.ObjectiveConversion
		}
		if err := s.Record(ctx, "b1", domain.MemoryEntry{Objective: obj, MessagingFramework: "AIDA", EmotionalTone: "warm"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	snap, err := s.Load(ctx, "b1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Objectives) != RecentObjectives {
		t.Fatalf("objectives = %d, want %d", len(snap.Objectives), RecentObjectives)
	}
	if len(snap.MessagingFrameworks) != RecentEntries || snap.AssetCount != RecentEntries {
		t.Fatalf("frameworks = %d count = %d", len(snap.MessagingFrameworks), snap.AssetCount)
	}
	// last recorded index 104 is even
	if snap.Objectives[0] != domain.ObjectiveAwareness {
		t.Fatalf("newest objective = %q", snap.Objectives[0])
	}
	if err := s.Record(ctx, "  ", domain.MemoryEntry{Objective: "awareness"}); err != nil {
		t.Fatalf("Record blank brand: %v", err)
	}
	other, _ := s.Load(ctx, "b2")
	if other.AssetCount != 0 || len(other.Objectives) != 0 {
		t.Fatalf("brands leak: %+v", other)
	}
}

func TestEntryFromBrief(t *testing.T) {
	t.Parallel()
	e := EntryFromBrief(domain.CreativeBrief{Objective: domain.ObjectiveRetention, MessagingFramework: " community ", EmotionalTone: "warm "})
	if e.Objective != domain.ObjectiveRetention || e.MessagingFramework != "community" || e.EmotionalTone != "warm" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestNopStore(t *testing.T) {
	t.Parallel()
	var s NopStore
	if err := s.Record(context.Background(), "b", domain.MemoryEntry{}); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Load(context.Background(), "b")
	if err != nil || snap.BrandID != "b" || len(snap.Objectives) != 0 {
		t.Fatalf("snap = %+v err = %v", snap, err)
	}
}
