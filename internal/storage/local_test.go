package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalProvider_RoundTrip(t *testing.T) {
	root := t.TempDir()
	c := NewClient(NewLocalProvider(root), "", "state")

	if _, err := c.ReadObject("current.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing object, got %v", err)
	}

	if err := c.WriteObject("current.json", []byte(`{"a":1}`), "application/json", ""); err != nil {
		t.Fatalf("WriteObject failed: %v", err)
	}
	if err := c.WriteObject("current.json", []byte(`{"a":2}`), "application/json", ""); err != nil {
		t.Fatalf("WriteObject (overwrite) failed: %v", err)
	}

	got, err := c.ReadObject("current.json")
	if err != nil {
		t.Fatalf("ReadObject failed: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("ReadObject = %s", got)
	}

	// No temp files are left behind.
	entries, _ := os.ReadDir(filepath.Join(root, "state"))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestLocalProvider_PutFailsOnReadOnlyDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	root := t.TempDir()
	p := NewLocalProvider(root)
	os.MkdirAll(filepath.Join(root, "ro"), 0555)

	err := p.Put("ro", "stats.json", strings.NewReader("{}"), "application/json", "")
	if err == nil {
		t.Error("expected write into read-only dir to fail")
	}
}
