package store

import (
	"path/filepath"
	"testing"

	"github.com/rebeliceyang/lazytab/internal/filter"
	"github.com/rebeliceyang/lazytab/internal/styling"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleExpr() filter.Expr {
	return filter.And(
		filter.Cond("age", filter.GreaterThan{Value: "30"}),
		filter.Or(filter.Cond("name", filter.IsNull{})),
	)
}

func TestSaveAndGetFilter(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.SaveFilter("adults", sampleExpr())
	if err != nil {
		t.Fatalf("SaveFilter: %v", err)
	}
	if saved.ID == "" {
		t.Errorf("saved filter has no ID")
	}
	if saved.Name != "adults" {
		t.Errorf("name = %q, want adults", saved.Name)
	}
	if !filter.Equal(saved.Expr, sampleExpr()) {
		t.Errorf("saved tree does not round trip")
	}

	got, err := s.GetFilter(saved.ID)
	if err != nil {
		t.Fatalf("GetFilter: %v", err)
	}
	if got.ID != saved.ID || !filter.Equal(got.Expr, sampleExpr()) {
		t.Errorf("reloaded filter does not match")
	}
}

func TestGetFilterNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetFilter("no-such-id"); err == nil {
		t.Errorf("expected an error for an unknown ID")
	}
}

func TestUpdateFilter(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.SaveFilter("f", sampleExpr())
	if err != nil {
		t.Fatalf("SaveFilter: %v", err)
	}

	updated := filter.Or(filter.Cond("score", filter.LessThan{Value: "1"}))
	if err := s.UpdateFilter(saved.ID, updated); err != nil {
		t.Fatalf("UpdateFilter: %v", err)
	}

	got, err := s.GetFilter(saved.ID)
	if err != nil {
		t.Fatalf("GetFilter: %v", err)
	}
	if !filter.Equal(got.Expr, updated) {
		t.Errorf("update did not persist")
	}

	if err := s.UpdateFilter("no-such-id", updated); err == nil {
		t.Errorf("expected an error updating an unknown ID")
	}
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)

	names := []string{"one", "two", "three"}
	for _, n := range names {
		if _, err := s.SaveFilter(n, sampleExpr()); err != nil {
			t.Fatalf("SaveFilter(%s): %v", n, err)
		}
	}

	filters, err := s.ListFilters()
	if err != nil {
		t.Fatalf("ListFilters: %v", err)
	}
	if len(filters) != 3 {
		t.Fatalf("got %d filters, want 3", len(filters))
	}
	seen := map[string]bool{}
	for _, f := range filters {
		seen[f.Name] = true
	}
	for _, n := range names {
		if !seen[n] {
			t.Errorf("filter %q missing from listing", n)
		}
	}
}

func TestDeleteFilter(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.SaveFilter("f", sampleExpr())
	if err != nil {
		t.Fatalf("SaveFilter: %v", err)
	}
	if err := s.DeleteFilter(saved.ID); err != nil {
		t.Fatalf("DeleteFilter: %v", err)
	}
	if _, err := s.GetFilter(saved.ID); err == nil {
		t.Errorf("filter still loadable after delete")
	}
}

func TestStyleSetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	set := styling.StyleSet{
		Name:        "alerts",
		Description: "red rows",
		Rules: []styling.StyleRule{
			{
				Match: filter.And(filter.Cond("age", filter.IsNull{})),
				Style: styling.ApplicationScope{
					Scope: styling.ScopeRow,
					Style: styling.Style{Fg: "red", Bold: true},
				},
			},
		},
	}

	saved, err := s.SaveStyleSet(set)
	if err != nil {
		t.Fatalf("SaveStyleSet: %v", err)
	}
	if saved.ID == "" {
		t.Errorf("saved style set has no ID")
	}

	got, err := s.GetStyleSet(saved.ID)
	if err != nil {
		t.Fatalf("GetStyleSet: %v", err)
	}
	if got.Set.Name != "alerts" || len(got.Set.Rules) != 1 {
		t.Fatalf("reloaded set = %+v", got.Set)
	}
	if !filter.Equal(got.Set.Rules[0].Match, set.Rules[0].Match) {
		t.Errorf("rule filter tree does not round trip")
	}
	if got.Set.Rules[0].Style.Style.Fg != "red" {
		t.Errorf("rule style lost: %+v", got.Set.Rules[0].Style)
	}

	sets, err := s.ListStyleSets()
	if err != nil {
		t.Fatalf("ListStyleSets: %v", err)
	}
	if len(sets) != 1 {
		t.Errorf("got %d style sets, want 1", len(sets))
	}

	if err := s.DeleteStyleSet(saved.ID); err != nil {
		t.Fatalf("DeleteStyleSet: %v", err)
	}
	if _, err := s.GetStyleSet(saved.ID); err == nil {
		t.Errorf("style set still loadable after delete")
	}
}
