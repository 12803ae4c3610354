package common

import (
	"strings"
	"testing"
)

func TestUUIDint64Unique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		if id <= 0 {
			t.Fatalf("non-positive id %d", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestSecureFilename(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":            "photo.jpg",
		"../../etc/passwd":     "passwd",
		"..\\..\\boot.ini":     "boot.ini",
		"my photo (1).png":     "my_photo__1_.png",
		"  ":                   "file",
		"عکس.jpg":              "jpg",
	}
	for in, want := range cases {
		got := SecureFilename(in)
		if got != want {
			t.Errorf("SecureFilename(%q) = %q, want %q", in, got, want)
		}
		if strings.ContainsAny(got, "/\\") {
			t.Errorf("SecureFilename(%q) kept a path separator: %q", in, got)
		}
	}
}

func TestSha256HashWithSalt(t *testing.T) {
	a := Sha256HashWithSalt("secret", "s1")
	b := Sha256HashWithSalt("secret", "s2")
	if a == b {
		t.Fatal("different salts produced identical hashes")
	}
	if a != Sha256HashWithSalt("secret", "s1") {
		t.Fatal("hash is not deterministic")
	}
}
