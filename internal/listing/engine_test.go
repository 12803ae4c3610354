package listing

import (
	"testing"
	"time"

	"github.com/fadakar85/bazaar/internal/domain"
)

func tp(t time.Time) *time.Time { return &t }

func TestIsPromoted(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		p    domain.Product
		want bool
	}{
		{"nil window", domain.Product{}, false},
		{"future window", domain.Product{PromotedUntil: tp(now.Add(time.Hour))}, true},
		{"expired window", domain.Product{PromotedUntil: tp(now.Add(-time.Hour))}, false},
		{"boundary is not promoted", domain.Product{PromotedUntil: tp(now)}, false},
	}
	for _, c := range cases {
		if got := IsPromoted(&c.p, now); got != c.want {
			t.Errorf("%s: IsPromoted = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestRankPromotedBeforeNewer(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	a := domain.Product{ID: 1, Name: "A", CreatedAt: now.AddDate(0, 0, -30), PromotedUntil: tp(now.AddDate(0, 0, 10))}
	b := domain.Product{ID: 2, Name: "B", CreatedAt: now.AddDate(0, 0, -1)}

	ranked := Rank([]domain.Product{b, a}, now)
	if len(ranked) != 2 {
		t.Fatalf("got %d rows, want 2", len(ranked))
	}
	if ranked[0].ID != 1 || !ranked[0].Promoted {
		t.Fatalf("promoted product must rank first regardless of age, got id=%d promoted=%v", ranked[0].ID, ranked[0].Promoted)
	}
	if ranked[1].ID != 2 || ranked[1].Promoted {
		t.Fatalf("unpromoted product must rank second, got id=%d promoted=%v", ranked[1].ID, ranked[1].Promoted)
	}
}

func TestRankPromotedGroupOrder(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	five := domain.Product{ID: 1, CreatedAt: now, PromotedUntil: tp(now.AddDate(0, 0, 5))}
	ten := domain.Product{ID: 2, CreatedAt: now.Add(-time.Hour), PromotedUntil: tp(now.AddDate(0, 0, 10))}

	ranked := Rank([]domain.Product{five, ten}, now)
	if ranked[0].ID != 2 {
		t.Fatalf("the later promoted_until must rank first, got id=%d", ranked[0].ID)
	}
}

func TestRankNormalGroupNewestFirst(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	old := domain.Product{ID: 1, CreatedAt: now.AddDate(0, 0, -3)}
	fresh := domain.Product{ID: 2, CreatedAt: now.AddDate(0, 0, -1)}
	expired := domain.Product{ID: 3, CreatedAt: now.AddDate(0, 0, -2), PromotedUntil: tp(now.Add(-time.Minute))}

	ranked := Rank([]domain.Product{old, fresh, expired}, now)
	wantOrder := []int64{2, 3, 1}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Fatalf("position %d: got id=%d, want %d", i, ranked[i].ID, want)
		}
		if ranked[i].Promoted {
			t.Fatalf("id=%d must not carry the promoted flag", ranked[i].ID)
		}
	}
}

func TestRankSingleSnapshot(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	// expires one nanosecond after the snapshot: still promoted for the
	// whole result even though wall time moves on during ranking
	p := domain.Product{ID: 1, PromotedUntil: tp(now.Add(time.Nanosecond))}
	ranked := Rank([]domain.Product{p}, now)
	if !ranked[0].Promoted {
		t.Fatal("promotion state must be derived from the snapshot passed in")
	}
}

func TestNormalizeTerm(t *testing.T) {
	if got := NormalizeTerm("  DRILL "); got != "drill" {
		t.Fatalf("got %q", got)
	}
	// Arabic yeh folds to Farsi yeh
	if got := NormalizeTerm("ميز"); got != "میز" {
		t.Fatalf("arabic yeh not folded: %q", got)
	}
}
