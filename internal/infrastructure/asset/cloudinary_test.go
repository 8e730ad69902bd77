package asset

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPublicIDFor(t *testing.T) {
	cases := map[string]string{
		"alice.png":         "alice_",
		"../../etc/passwd":  "passwd_",
		"dr house (1).jpeg": "dr_house__1__",
		".png":              "avatar_",
		"":                  "avatar_",
	}
	for in, prefix := range cases {
		if got := publicIDFor(in); !strings.HasPrefix(got, prefix) {
			t.Errorf("publicIDFor(%q) = %q, want prefix %q", in, got, prefix)
		}
	}
}

func TestDisabled(t *testing.T) {
	var d Disabled
	if _, err := d.Upload(context.Background(), "a.png", []byte("x")); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if err := d.Delete(context.Background(), "id"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
