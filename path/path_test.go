package path

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/ewanas/DFS/errors"
)

type parseTest struct {
	in     string
	out    string
	isRoot bool
}

var goodParseTests = []parseTest{
	{"/", "/", true},
	{"/a/b/c", "/a/b/c", false},
	{"//a///b", "/a/b", false},
	{"/a", "/a", false},
	{"/a/", "/a", false},
}

func TestParse(t *testing.T) {
	for _, test := range goodParseTests {
		p, err := Parse(test.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.in, err)
			continue
		}
		if got := p.String(); got != test.out {
			t.Errorf("%q: String() = %q, want %q", test.in, got, test.out)
		}
		if p.IsRoot() != test.isRoot {
			t.Errorf("%q: IsRoot() = %v, want %v", test.in, p.IsRoot(), test.isRoot)
		}
	}
}

var badParseTests = []string{
	"a/b",
	"",
	"/a:b",
	"/a/b:c",
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, in := range badParseTests {
		_, err := Parse(in)
		if err == nil {
			t.Errorf("Parse(%q): expected error, got nil", in)
			continue
		}
		if errors.KindOf(err) != errors.InvalidArgument {
			t.Errorf("Parse(%q): Kind = %v, want InvalidArgument", in, errors.KindOf(err))
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, in := range []string{"/", "/a", "/a/b/c", "/x/y"} {
		p, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		p2, err := Parse(p.String())
		if err != nil {
			t.Fatalf("Parse(%q) round trip: %v", p.String(), err)
		}
		if !p.Equal(p2) {
			t.Errorf("round trip: %v != %v", p, p2)
		}
	}
}

func TestRootHasNoParentOrLast(t *testing.T) {
	root := Root()
	if _, err := root.Parent(); errors.KindOf(err) != errors.InvalidArgument {
		t.Errorf("root.Parent(): Kind = %v, want InvalidArgument", errors.KindOf(err))
	}
	if _, err := root.Last(); errors.KindOf(err) != errors.InvalidArgument {
		t.Errorf("root.Last(): Kind = %v, want InvalidArgument", errors.KindOf(err))
	}
}

func TestAppendParentLastInverse(t *testing.T) {
	parent, err := Parse("/a/b")
	if err != nil {
		t.Fatal(err)
	}
	child, err := Append(parent, "c")
	if err != nil {
		t.Fatal(err)
	}
	gotParent, err := child.Parent()
	if err != nil {
		t.Fatal(err)
	}
	if !gotParent.Equal(parent) {
		t.Errorf("Parent() = %v, want %v", gotParent, parent)
	}
	gotLast, err := child.Last()
	if err != nil {
		t.Fatal(err)
	}
	if gotLast != "c" {
		t.Errorf("Last() = %q, want %q", gotLast, "c")
	}
}

func TestAppendRejectsInvalidComponent(t *testing.T) {
	root := Root()
	for _, c := range []string{"", "a/b", "a:b"} {
		if _, err := Append(root, c); errors.KindOf(err) != errors.InvalidArgument {
			t.Errorf("Append(root, %q): Kind = %v, want InvalidArgument", c, errors.KindOf(err))
		}
	}
}

func TestIsSubpath(t *testing.T) {
	p, _ := Parse("/foo")
	q, _ := Parse("/foo")
	if !IsSubpath(p, q) {
		t.Error("IsSubpath(p, p) = false, want true")
	}

	foobar, _ := Parse("/foobar")
	foo, _ := Parse("/foo")
	if IsSubpath(foobar, foo) {
		t.Error("IsSubpath(/foobar, /foo) = true, want false (string-prefix false positive)")
	}

	child, _ := Append(foo, "bar")
	if !IsSubpath(child, foo) {
		t.Error("IsSubpath(/foo/bar, /foo) = false, want true")
	}

	root := Root()
	if !IsSubpath(foo, root) {
		t.Error("IsSubpath(/foo, /) = false, want true")
	}
}

func TestIterate(t *testing.T) {
	p, _ := Parse("/a/b/c")
	it := p.Iterate()
	var got []string
	for {
		c, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, c)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Iterate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Iterate()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if _, ok := it.Next(); ok {
		t.Error("exhausted iterator returned another component")
	}
}

func TestEqualAndCompare(t *testing.T) {
	a, _ := Parse("/a/b")
	b, _ := Parse("/a/b")
	c, _ := Parse("/a/c")
	if !a.Equal(b) {
		t.Error("a.Equal(b) = false, want true")
	}
	if a.Equal(c) {
		t.Error("a.Equal(c) = true, want false")
	}
	if a.Compare(b) != 0 {
		t.Errorf("a.Compare(b) = %d, want 0", a.Compare(b))
	}
	if a.Compare(c) >= 0 {
		t.Errorf("a.Compare(c) = %d, want < 0", a.Compare(c))
	}
}

func TestGobRoundTrip(t *testing.T) {
	for _, in := range []string{"/", "/a", "/a/b/c"} {
		p, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}

		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(p); err != nil {
			t.Fatalf("Encode(%v): %v", p, err)
		}

		var got Path
		if err := gob.NewDecoder(&buf).Decode(&got); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !got.Equal(p) {
			t.Errorf("gob round trip: %v != %v", got, p)
		}
	}
}

func TestGobRoundTripThroughInterface(t *testing.T) {
	p, err := Parse("/a/b")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&struct{ V interface{} }{V: p}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out struct{ V interface{} }
	if err := gob.NewDecoder(&buf).Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := out.V.(Path)
	if !ok {
		t.Fatalf("decoded value is %T, want Path", out.V)
	}
	if !got.Equal(p) {
		t.Errorf("gob round trip through interface{}: %v != %v", got, p)
	}
}

func TestToLocalFile(t *testing.T) {
	p, _ := Parse("/a/b")
	got := p.ToLocalFile("/root")
	want := "/root/a/b"
	if got != want {
		t.Errorf("ToLocalFile() = %q, want %q", got, want)
	}
}
