package hashengine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/avifenesh/hashengine/internal/oracle"
	"github.com/avifenesh/hashengine/test"
)

// snapshot is a comparable summary of an Engine/Oracle's live state, used
// with test.Diff to get a readable failure message instead of two separate
// field-by-field checks.
type snapshot struct {
	ItemCount   int
	TotalMemory int
}

// TestRandomizedWorkloadMatchesOracle drives a single-goroutine mixed
// put/get/delete workload through both an Engine and a reference Oracle and
// checks every read against the oracle's expectation. Single-goroutine so
// the comparison can be exact rather than probabilistic.
func TestRandomizedWorkloadMatchesOracle(t *testing.T) {
	e := newTestEngine(t, 4)
	o := oracle.New()
	rng := rand.New(rand.NewSource(1))

	const keySpace = 64
	const iterations = 3000

	for i := 0; i < iterations; i++ {
		key := []byte(fmt.Sprintf("key-%d", rng.Intn(keySpace)))
		switch rng.Intn(3) {
		case 0:
			value := []byte(fmt.Sprintf("v%d", rng.Intn(1<<20)))
			wantNew := o.Put(key, value)
			gotNew, err := e.Put(key, value)
			if err != nil {
				t.Fatalf("iteration %d: Put(%s) failed: %v", i, key, err)
			}
			if gotNew != wantNew {
				t.Fatalf("iteration %d: Put(%s) isNew = %v, want %v", i, key, gotNew, wantNew)
			}
		case 1:
			wantValue, wantOK := o.Get(key)
			gotValue, err := e.Get(key)
			gotOK := err == nil
			if gotOK != wantOK {
				t.Fatalf("iteration %d: Get(%s) found = %v, want %v", i, key, gotOK, wantOK)
			}
			if wantOK && string(gotValue) != string(wantValue) {
				t.Fatalf("iteration %d: Get(%s) = %q, want %q", i, key, gotValue, wantValue)
			}
		case 2:
			wantFound := o.Delete(key)
			err := e.Delete(key)
			gotFound := err == nil
			if gotFound != wantFound {
				t.Fatalf("iteration %d: Delete(%s) found = %v, want %v", i, key, gotFound, wantFound)
			}
		}
	}

	stats := e.Stats()
	got := snapshot{ItemCount: int(stats.ItemCount), TotalMemory: int(stats.TotalMemory)}
	want := snapshot{ItemCount: o.Len(), TotalMemory: o.TotalMemory()}
	if diff := test.Diff(got, want); diff != "" {
		t.Fatalf("engine snapshot mismatch:\n%s\nengine: %s\noracle: %s",
			diff, test.PrettyPrint(got), test.PrettyPrint(want))
	}
	for _, key := range o.Keys() {
		want, _ := o.Get(key)
		got, err := e.Get(key)
		if err != nil {
			t.Fatalf("final Get(%s) failed: %v", key, err)
		}
		if string(got) != string(want) {
			t.Fatalf("final Get(%s) = %q, want %q", key, got, want)
		}
	}
}
