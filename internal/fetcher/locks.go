package fetcher

import "sync"

const lockStripes = 64

// Набор мьютексов, один хэш всегда попадает на один и тот же мьютекс
type hashLocks [lockStripes]sync.Mutex

func (l *hashLocks) lock(hash string) func() {
	m := &l[stripe(hash)]
	m.Lock()

	return m.Unlock
}

func stripe(hash string) uint32 {
	var n uint32
	for i := 0; i < len(hash); i++ {
		n = n*31 + uint32(hash[i])
	}

	return n % lockStripes
}
