// Package batch partitions a run of key-generation or evaluation slots
// into streams and dispatches them across a worker pool. It is the
// parallel driver the C-ABI entry points sit on top of.
//
// Grounded on the teacher's pcg/utils.go worker-dispatch pattern
// (task list + bounded fan-out + first error wins), generalized from
// the teacher's hand-rolled channel/sync.WaitGroup pair to
// golang.org/x/sync/errgroup, the dependency luxfi-threshold pulls in
// for exactly this concern.
package batch

import (
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"fssinfer/eq"
	"fssinfer/fsskey"
	"fssinfer/le"
	"fssinfer/prg"
)

// Operation identifiers, matching the op_id parameter of every function
// in this package.
const (
	OpEQ = 0
	OpLE = 1
)

// numStreams is S, the fixed number of streams n_values is partitioned
// into regardless of n_threads.
const numStreams = 128

// KeyLen reports the fixed serialized key length for opID.
func KeyLen(opID int) (int, error) {
	switch opID {
	case OpEQ:
		return eq.Len, nil
	case OpLE:
		return le.Len, nil
	default:
		return 0, fmt.Errorf("batch: unknown op_id %d", opID)
	}
}

// NumSubkeys reports how many AES subkeys the PRG needs for opID.
func NumSubkeys(opID int) (int, error) {
	switch opID {
	case OpEQ:
		return 2, nil
	case OpLE:
		return 3, nil
	default:
		return 0, fmt.Errorf("batch: unknown op_id %d", opID)
	}
}

// pool is the package-level worker pool size handle. Only the slot
// count is idempotent (spec: "first call wins") — errgroup.Group itself
// is not a reusable pool type and is constructed fresh per batch.
var pool struct {
	once  sync.Once
	limit int
}

func poolLimit(nThreads int) int {
	if nThreads < 1 {
		nThreads = 1
	}
	pool.once.Do(func() {
		pool.limit = nThreads
	})
	return pool.limit
}

type stream struct {
	start, length int
}

// partitionStreams splits [0, nValues) into up to numStreams ranges: the
// first nValues mod numStreams streams get ceil(nValues/numStreams)
// slots, the rest get floor(nValues/numStreams). Streams that would be
// empty are dropped rather than dispatched.
func partitionStreams(nValues int) []stream {
	if nValues <= 0 {
		return nil
	}
	base := nValues / numStreams
	rem := nValues % numStreams

	streams := make([]stream, 0, numStreams)
	pos := 0
	for i := 0; i < numStreams; i++ {
		length := base
		if i < rem {
			length++
		}
		if length == 0 {
			continue
		}
		streams = append(streams, stream{start: pos, length: length})
		pos += length
	}
	return streams
}

func checkBufLen(name string, buf []byte, need int) error {
	if len(buf) < need {
		return fmt.Errorf("batch: %s too small: need %d bytes, got %d", name, need, len(buf))
	}
	return nil
}

// Keygen fills keysA and keysB, each sized key_len(opID)*nValues bytes,
// with nValues freshly generated key pairs for opID. At most the pool
// size goroutines run at once; the pool size is the nThreads of the
// first Keygen or Eval call in the process (see pool).
func Keygen(keysA, keysB []byte, nValues, nThreads, opID int) error {
	keyLen, err := KeyLen(opID)
	if err != nil {
		return err
	}
	numSubkeys, err := NumSubkeys(opID)
	if err != nil {
		return err
	}
	need := keyLen * nValues
	if err := checkBufLen("keysA", keysA, need); err != nil {
		return err
	}
	if err := checkBufLen("keysB", keysB, need); err != nil {
		return err
	}

	subkeys := prg.DefaultSubkeys(numSubkeys)
	streams := partitionStreams(nValues)

	g := new(errgroup.Group)
	g.SetLimit(poolLimit(nThreads))

	for _, str := range streams {
		str := str
		g.Go(func() error {
			p, err := prg.NewAESMMO(subkeys)
			if err != nil {
				return err
			}
			for slot := str.start; slot < str.start+str.length; slot++ {
				off := slot * keyLen

				var keyA, keyB fsskey.Key
				switch opID {
				case OpEQ:
					keyA, keyB, err = eq.GenerateKeypair(p)
				case OpLE:
					keyA, keyB, err = le.GenerateKeypair(p)
				}
				if err != nil {
					return fmt.Errorf("batch: generating keypair for slot %d: %w", slot, err)
				}
				if err := keyA.WriteTo(keysA[off : off+keyLen]); err != nil {
					return err
				}
				if err := keyB.WriteTo(keysB[off : off+keyLen]); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// Eval evaluates nValues keys from keys (each key_len(opID) bytes) on
// the inputs in xs (each a little-endian uint32) as party partyID,
// writing each 32-bit output zero-extended into the matching slot of
// results.
func Eval(partyID int, xs, keys []byte, results []int64, nValues, nThreads, opID int) error {
	if partyID != 0 && partyID != 1 {
		return fmt.Errorf("batch: party id must be 0 or 1, got %d", partyID)
	}
	keyLen, err := KeyLen(opID)
	if err != nil {
		return err
	}
	numSubkeys, err := NumSubkeys(opID)
	if err != nil {
		return err
	}
	if err := checkBufLen("xs", xs, 4*nValues); err != nil {
		return err
	}
	if err := checkBufLen("keys", keys, keyLen*nValues); err != nil {
		return err
	}
	if len(results) < nValues {
		return fmt.Errorf("batch: results too small: need %d slots, got %d", nValues, len(results))
	}

	subkeys := prg.DefaultSubkeys(numSubkeys)
	streams := partitionStreams(nValues)
	pid := uint8(partyID)

	g := new(errgroup.Group)
	g.SetLimit(poolLimit(nThreads))

	for _, str := range streams {
		str := str
		g.Go(func() error {
			p, err := prg.NewAESMMO(subkeys)
			if err != nil {
				return err
			}
			for slot := str.start; slot < str.start+str.length; slot++ {
				x := binary.LittleEndian.Uint32(xs[slot*4 : slot*4+4])
				kOff := slot * keyLen

				var out uint32
				switch opID {
				case OpEQ:
					var k eq.Key
					k, err = eq.ReadFrom(keys[kOff : kOff+keyLen])
					if err == nil {
						out, err = k.Eval(p, pid, x)
					}
				case OpLE:
					var k le.Key
					k, err = le.ReadFrom(keys[kOff : kOff+keyLen])
					if err == nil {
						out, err = k.Eval(p, pid, x)
					}
				}
				if err != nil {
					return fmt.Errorf("batch: evaluating slot %d: %w", slot, err)
				}

				results[slot] = int64(uint64(out))
			}
			return nil
		})
	}

	return g.Wait()
}
