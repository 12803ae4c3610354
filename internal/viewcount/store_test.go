package viewcount

import (
	"path/filepath"
	"testing"
)

func TestBumpGetDelete(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "views.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if got := store.Get(1); got != 0 {
		t.Fatalf("fresh counter = %d", got)
	}
	for i := 1; i <= 3; i++ {
		n, err := store.Bump(1)
		if err != nil {
			t.Fatal(err)
		}
		if n != uint64(i) {
			t.Fatalf("bump #%d returned %d", i, n)
		}
	}
	if _, err := store.Bump(2); err != nil {
		t.Fatal(err)
	}
	if got := store.Total(); got != 4 {
		t.Fatalf("total = %d, want 4", got)
	}
	if err := store.Delete(1); err != nil {
		t.Fatal(err)
	}
	if got := store.Get(1); got != 0 {
		t.Fatalf("deleted counter = %d", got)
	}
}
