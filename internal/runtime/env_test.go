package runtime

import (
	"errors"
	"reflect"
	"testing"
)

func TestEnvDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	if err := env.Define("x", NumberVal(1), false); err != nil {
		t.Fatalf("define: %v", err)
	}
	val, ok := env.Get("x")
	if !ok || val != NumberVal(1) {
		t.Errorf("expected 1, got %v (found=%v)", val, ok)
	}
	if _, ok := env.Get("y"); ok {
		t.Error("expected 'y' to be missing")
	}
}

func TestEnvRedeclareSameFrame(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", NumberVal(1), true)
	if err := env.Define("x", NumberVal(2), true); !errors.Is(err, ErrRedeclared) {
		t.Errorf("expected ErrRedeclared, got %v", err)
	}
}

func TestEnvShadowing(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("x", NumberVal(1), false)
	inner := NewEnvironment(outer)
	if err := inner.Define("x", TextVal("inner"), false); err != nil {
		t.Fatalf("shadowing should be allowed: %v", err)
	}

	if v, _ := inner.Get("x"); v != TextVal("inner") {
		t.Errorf("inner lookup: expected inner, got %v", v)
	}
	if v, _ := outer.Get("x"); v != NumberVal(1) {
		t.Errorf("outer lookup: expected 1, got %v", v)
	}
}

func TestEnvAssignWalksOutward(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("count", NumberVal(0), true)
	inner := NewEnvironment(NewEnvironment(outer))

	if err := inner.Assign("count", NumberVal(5)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if v, _ := outer.Get("count"); v != NumberVal(5) {
		t.Errorf("expected the declaring frame to see 5, got %v", v)
	}
	if inner.HasLocal("count") {
		t.Error("assignment must not create a local binding")
	}
}

func TestEnvAssignErrors(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("k", NumberVal(1), false)

	if err := env.Assign("k", NumberVal(2)); !errors.Is(err, ErrImmutable) {
		t.Errorf("expected ErrImmutable, got %v", err)
	}
	if err := env.Assign("missing", NumberVal(2)); !errors.Is(err, ErrUndeclared) {
		t.Errorf("expected ErrUndeclared, got %v", err)
	}
	if v, _ := env.Get("k"); v != NumberVal(1) {
		t.Errorf("failed assignment must leave the value alone, got %v", v)
	}
}

func TestEnvNames(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("total", NumberVal(0), true)
	root.Define("add", &FuncVal{Name: "add"}, false)
	child := NewEnvironment(root)
	child.Define("total", TextVal("shadow"), false)
	child.Define("item", UndefinedVal{}, true)

	if got, want := child.Names(), []string{"add", "item", "total"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names: expected %v, got %v", want, got)
	}
	if got, want := child.FuncNames(), []string{"add"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FuncNames: expected %v, got %v", want, got)
	}
}

func TestEnvDepth(t *testing.T) {
	root := NewEnvironment(nil)
	if root.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", root.Depth())
	}
	child := NewEnvironment(NewEnvironment(root))
	if child.Depth() != 3 {
		t.Errorf("expected depth 3, got %d", child.Depth())
	}
	if child.Parent().Parent() != root {
		t.Error("expected parent chain to reach root")
	}
}

func TestFindClosestMatch(t *testing.T) {
	names := []string{"count", "index", "total"}
	tests := []struct {
		target string
		want   string
	}{
		{"cnt", "count"},
		{"cuont", "count"},
		{"totl", "total"},
		{"zzzzzz", ""},
	}
	for _, tt := range tests {
		if got := findClosestMatch(tt.target, names); got != tt.want {
			t.Errorf("findClosestMatch(%q): expected %q, got %q", tt.target, tt.want, got)
		}
	}
	if got := findClosestMatch("x", nil); got != "" {
		t.Errorf("expected no match without candidates, got %q", got)
	}
}
