// Command cabi is the C-ABI boundary: two exported entry points,
// keygen and eval, wrapping package batch for consumption from a
// C-shared build (go build -buildmode=c-shared). It owns no logic of
// its own beyond pointer conversion and the fail-fast panic contract a
// cgo //export function is bound to, since it cannot return a Go error
// across the FFI boundary.
package main

/*
#include <stdint.h>
#include <stddef.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"fssinfer/batch"
)

func mustNotFail(err error) {
	if err != nil {
		panic(fmt.Sprintf("fssinfer/cabi: %v", err))
	}
}

//export keygen
func keygen(keysA, keysB *C.uint8_t, nValues, nThreads, opID C.size_t) {
	n := int(nValues)
	keyLen, err := batch.KeyLen(int(opID))
	mustNotFail(err)

	bufA := unsafe.Slice((*byte)(unsafe.Pointer(keysA)), keyLen*n)
	bufB := unsafe.Slice((*byte)(unsafe.Pointer(keysB)), keyLen*n)

	mustNotFail(batch.Keygen(bufA, bufB, n, int(nThreads), int(opID)))
}

//export eval
func eval(partyID C.size_t, xs, keys *C.uint8_t, results *C.int64_t, nValues, nThreads, opID C.size_t) {
	n := int(nValues)
	keyLen, err := batch.KeyLen(int(opID))
	mustNotFail(err)

	xsBuf := unsafe.Slice((*byte)(unsafe.Pointer(xs)), 4*n)
	keysBuf := unsafe.Slice((*byte)(unsafe.Pointer(keys)), keyLen*n)
	resultsBuf := unsafe.Slice((*int64)(unsafe.Pointer(results)), n)

	mustNotFail(batch.Eval(int(partyID), xsBuf, keysBuf, resultsBuf, n, int(nThreads), int(opID)))
}

func main() {}
