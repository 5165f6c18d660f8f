package tasks

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/desertthunder/flix/internal/models"
	tu "github.com/desertthunder/flix/internal/testing"
)

func TestReconcile(t *testing.T) {
	tc := []struct {
		name    string
		catalog []models.Movie
		ids     []string
		want    []string
	}{
		{name: "single favorite", catalog: tu.Catalog(), ids: []string{"2"}, want: []string{"2"}},
		{name: "keeps catalog order", catalog: tu.Catalog(), ids: []string{"3", "1"}, want: []string{"1", "3"}},
		{name: "no favorites", catalog: tu.Catalog(), ids: []string{}, want: []string{}},
		{name: "nil favorites", catalog: tu.Catalog(), ids: nil, want: []string{}},
		{name: "empty catalog", catalog: []models.Movie{}, ids: []string{"1"}, want: []string{}},
		{name: "unknown ids ignored", catalog: tu.Catalog(), ids: []string{"9", "2", "x"}, want: []string{"2"}},
		{name: "duplicate ids", catalog: tu.Catalog(), ids: []string{"2", "2", "3", "2"}, want: []string{"2", "3"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.catalog, tt.ids)
			if got == nil {
				t.Fatal("expected non-nil result")
			}
			if ids := tu.IDs(got); !slices.Equal(ids, tt.want) {
				t.Errorf("Reconcile() = %v, want %v", ids, tt.want)
			}
		})
	}

	t.Run("does not modify inputs", func(t *testing.T) {
		catalog := tu.Catalog()
		ids := []string{"3", "1"}

		_ = Reconcile(catalog, ids)

		if got := tu.IDs(catalog); !slices.Equal(got, []string{"1", "2", "3"}) {
			t.Errorf("catalog changed: %v", got)
		}
		if !slices.Equal(ids, []string{"3", "1"}) {
			t.Errorf("ids changed: %v", ids)
		}
	})
}

func TestReconcileProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := range 200 {
		n := rng.Intn(20)
		catalog := make([]models.Movie, n)
		for j := range catalog {
			catalog[j] = models.Movie{ID: fmt.Sprintf("m%d", rng.Intn(1000)*100+j)}
		}

		ids := []string{}
		for range rng.Intn(10) {
			if n > 0 && rng.Intn(3) > 0 {
				ids = append(ids, catalog[rng.Intn(n)].ID)
			} else {
				ids = append(ids, fmt.Sprintf("missing%d", rng.Intn(50)))
			}
		}

		got := Reconcile(catalog, ids)

		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			// subsequence of the catalog
			pos := 0
			for _, m := range got {
				for pos < len(catalog) && catalog[pos].ID != m.ID {
					pos++
				}
				if pos == len(catalog) {
					t.Fatalf("%v is not a subsequence of %v", tu.IDs(got), tu.IDs(catalog))
				}
				pos++
			}

			// ids(C) ∩ F exactly
			want := map[string]bool{}
			for _, m := range catalog {
				if slices.Contains(ids, m.ID) {
					want[m.ID] = true
				}
			}
			gotSet := map[string]bool{}
			for _, m := range got {
				gotSet[m.ID] = true
			}
			if len(want) != len(gotSet) {
				t.Fatalf("expected ids %v, got %v", want, gotSet)
			}
			for id := range want {
				if !gotSet[id] {
					t.Fatalf("missing %s", id)
				}
			}

			if again := Reconcile(catalog, ids); !slices.Equal(tu.IDs(again), tu.IDs(got)) {
				t.Fatalf("not idempotent: %v vs %v", tu.IDs(again), tu.IDs(got))
			}
		})
	}
}
