package blameattr

import (
	"errors"
	"testing"
)

func TestAttribute_StripsBoundaryCaret(t *testing.T) {
	annotation := []string{
		"deadbeefdeadbeefdeadbeefdeadbeefdeadbeef 1 1 1",
		"^cafebabecafebabecafebabecafebabecafebabe 2 2 1",
	}
	got, err := Attribute(annotation, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "cafebabecafebabecafebabecafebabecafebabe"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAttribute_FirstToken(t *testing.T) {
	annotation := []string{"abc123 1 1 1 (Author 2020-01-01 00:00:00 +0000 1) line content"}
	got, err := Attribute(annotation, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abc123" {
		t.Errorf("got %q, want abc123", got)
	}
}

func TestAttribute_OutOfRange(t *testing.T) {
	annotation := []string{"abc123 1 1 1"}
	for _, n := range []int{0, -1, 2, 100} {
		if _, err := Attribute(annotation, n); !errors.Is(err, ErrLineOutOfRange) {
			t.Errorf("preStart=%d: got %v, want ErrLineOutOfRange", n, err)
		}
	}
}

func TestAttribute_EmptyAnnotation(t *testing.T) {
	if _, err := Attribute(nil, 1); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("got %v, want ErrLineOutOfRange", err)
	}
}
