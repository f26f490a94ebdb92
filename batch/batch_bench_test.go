package batch

import "testing"

func benchmarkKeygen(b *testing.B, opID, nThreads int) {
	const n = 256
	keyLen, err := KeyLen(opID)
	if err != nil {
		b.Fatal(err)
	}
	keysA := make([]byte, keyLen*n)
	keysB := make([]byte, keyLen*n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Keygen(keysA, keysB, n, nThreads, opID); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkKeygenEQ1Thread(b *testing.B)  { benchmarkKeygen(b, OpEQ, 1) }
func BenchmarkKeygenEQ4Threads(b *testing.B) { benchmarkKeygen(b, OpEQ, 4) }
func BenchmarkKeygenLE1Thread(b *testing.B)  { benchmarkKeygen(b, OpLE, 1) }
func BenchmarkKeygenLE4Threads(b *testing.B) { benchmarkKeygen(b, OpLE, 4) }
