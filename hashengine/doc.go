// Package hashengine implements a concurrent, open-addressing hash table
// with linear probing, tombstone-based deletion, and incremental resizing.
//
// Resizing never stops the world: a grow or shrink swaps in a new bucket
// array and leaves the old one reachable until a bounded number of buckets
// have been migrated out of it on each subsequent Put, Get or Delete call.
// Keys are hashed with SipHash-2-4 under a pair of subkeys drawn once per
// process from system entropy.
package hashengine
