package oracle

import (
	"testing"

	"github.com/avifenesh/hashengine/test"
)

func TestOraclePutGetDelete(t *testing.T) {
	o := New()
	if isNew := o.Put([]byte("a"), []byte("1")); !isNew {
		t.Fatalf("Put(a) should report isNew=true")
	}
	v, ok := o.Get([]byte("a"))
	if !ok || string(v) != "1" {
		t.Fatalf("Get(a) = (%q,%v), want (1,true)", v, ok)
	}
	if isNew := o.Put([]byte("a"), []byte("2")); isNew {
		t.Fatalf("Put(a) replace should report isNew=false")
	}
	if !o.Delete([]byte("a")) {
		t.Fatalf("Delete(a) should report found=true")
	}
	if _, ok := o.Get([]byte("a")); ok {
		t.Fatalf("Get(a) after delete should fail")
	}
}

func TestOraclePutPanicsOnEmptyKeyOrValue(t *testing.T) {
	o := New()
	test.ShouldPanic(t, func() { o.Put(nil, []byte("v")) })
	test.ShouldPanic(t, func() { o.Put([]byte("k"), nil) })
}

func TestOracleTotalMemory(t *testing.T) {
	o := New()
	o.Put([]byte("k1"), []byte("v1"))
	o.Put([]byte("k2"), []byte("v22"))
	want := len("k1") + len("v1") + len("k2") + len("v22")
	if got := o.TotalMemory(); got != want {
		t.Fatalf("TotalMemory() = %d, want %d", got, want)
	}
}
