package hashengine

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/avifenesh/hashengine/logger"
)

// sipHash24 computes SipHash-2-4 (2 compression rounds, 4 finalization
// rounds) of data under the given 128-bit key, split into the two 64-bit
// subkeys k0 and k1.
func sipHash24(k0, k1 uint64, data []byte) uint64 {
	v0 := k0 ^ 0x736f6d6570736575
	v1 := k1 ^ 0x646f72616e646f6d
	v2 := k0 ^ 0x6c7967656e657261
	v3 := k1 ^ 0x7465646279746573

	length := len(data)
	end := length - (length % 8)

	for i := 0; i < end; i += 8 {
		m := binary.LittleEndian.Uint64(data[i : i+8])
		v3 ^= m
		v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
		v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
		v0 ^= m
	}

	var last uint64
	tail := data[end:]
	for i, b := range tail {
		last |= uint64(b) << (8 * uint(i))
	}
	last |= uint64(byte(length)) << 56

	v3 ^= last
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0 ^= last

	v2 ^= 0xff
	for i := 0; i < 4; i++ {
		v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	}

	return v0 ^ v1 ^ v2 ^ v3
}

func sipRound(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v1 = rotl64(v1, 13)
	v1 ^= v0
	v0 = rotl64(v0, 32)
	v2 += v3
	v3 = rotl64(v3, 16)
	v3 ^= v2
	v0 += v3
	v3 = rotl64(v3, 21)
	v3 ^= v0
	v2 += v1
	v1 = rotl64(v1, 17)
	v1 ^= v2
	v2 = rotl64(v2, 32)
	return v0, v1, v2, v3
}

func rotl64(x uint64, b uint) uint64 {
	return (x << b) | (x >> (64 - b))
}

// subkeys are seeded exactly once per process: the first Engine built
// determines k0/k1 for every Engine that follows. subkeyOnce is replaced
// wholesale (not Do-reset) by resetSubkeysForTest so package tests can get a
// fresh seed without racing a concurrent Do call.
var (
	subkeyOnce sync.Once
	subkeyK0   uint64
	subkeyK1   uint64
	subkeyWeak bool
)

// ensureSubkeys seeds the process-wide SipHash subkeys on first call and
// returns them. entropy and log are only consulted by the call that wins
// the seeding race; later callers get the already-seeded values.
func ensureSubkeys(entropy io.Reader, log logger.Logger, m *metrics) (uint64, uint64) {
	subkeyOnce.Do(func() {
		k0, k1, weak := seedSubkeys(entropy)
		subkeyK0, subkeyK1, subkeyWeak = k0, k1, weak
		if weak {
			if log != nil {
				log.Infof("hashengine: falling back to a weak time/pid-derived key for SipHash subkeys")
			}
			if m != nil {
				m.weakKeyTotal.Inc()
			}
		}
	})
	return subkeyK0, subkeyK1
}

// seedSubkeys draws 16 bytes from entropy (crypto/rand.Reader by default),
// retrying briefly with backoff before falling back to a weak, time/PID
// derived key so that an Engine can still start under a starved entropy
// pool instead of blocking indefinitely.
func seedSubkeys(entropy io.Reader) (k0, k1 uint64, weak bool) {
	if entropy == nil {
		entropy = rand.Reader
	}
	var buf [16]byte
	readEntropy := func() error {
		_, err := io.ReadFull(entropy, buf[:])
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 50 * time.Millisecond
	b.MaxElapsedTime = 200 * time.Millisecond

	if err := backoff.Retry(readEntropy, b); err != nil {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(time.Now().UnixNano()))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(os.Getpid())^uint64(time.Now().UnixNano()))
		weak = true
	}

	k0 = binary.LittleEndian.Uint64(buf[0:8])
	k1 = binary.LittleEndian.Uint64(buf[8:16])
	return k0, k1, weak
}

// resetSubkeysForTest discards the latched subkeys so the next call to
// ensureSubkeys reseeds. Only the package's own tests may call this; it
// exists because production code must never reseed mid-process.
func resetSubkeysForTest() {
	subkeyOnce = sync.Once{}
	subkeyK0, subkeyK1, subkeyWeak = 0, 0, false
}
