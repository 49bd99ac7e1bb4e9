package hashengine

import (
	"errors"
	"strings"
	"testing"
)

func TestHashErrorIsMatchesByKindOnly(t *testing.T) {
	e := newError(KindNotFound, "Get", []byte("k"), "key not found")
	if !errors.Is(e, ErrNotFound) {
		t.Fatalf("errors.Is(e, ErrNotFound) = false, want true")
	}
	if errors.Is(e, ErrInvalidArgument) {
		t.Fatalf("errors.Is(e, ErrInvalidArgument) = true, want false")
	}
}

func TestHashErrorMessageIncludesOpAndKey(t *testing.T) {
	e := newError(KindInvalidArgument, "Put", []byte("k"), "value must not be empty")
	msg := e.Error()
	if msg == "" {
		t.Fatalf("Error() returned empty string")
	}
	if !strings.Contains(msg, "Put") {
		t.Fatalf("Error() = %q, want it to mention op %q", msg, "Put")
	}
	if !strings.Contains(msg, `"k"`) {
		t.Fatalf("Error() = %q, want it to mention key %q", msg, "k")
	}
}
