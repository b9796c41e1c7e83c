package path

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ewanas/DFS/errors"
)

func TestListLocal(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a", "b.txt"), "b")
	mustWrite(t, filepath.Join(root, "c.txt"), "c")

	paths, err := ListLocal(root)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, p := range paths {
		got = append(got, p.String())
	}
	sort.Strings(got)
	want := []string{"/a/b.txt", "/c.txt"}
	if len(got) != len(want) {
		t.Fatalf("ListLocal() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListLocal()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListLocalNotFound(t *testing.T) {
	_, err := ListLocal("/no/such/directory/at/all")
	if errors.KindOf(err) != errors.NotFound {
		t.Errorf("Kind = %v, want NotFound", errors.KindOf(err))
	}
}

func TestListLocalNotADirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	mustWrite(t, file, "x")

	_, err := ListLocal(file)
	if errors.KindOf(err) != errors.InvalidArgument {
		t.Errorf("Kind = %v, want InvalidArgument", errors.KindOf(err))
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
