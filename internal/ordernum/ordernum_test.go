package ordernum

import (
	"sync"
	"testing"
	"time"
)

func TestNextUniqueUnderConcurrency(t *testing.T) {
	g := NewGenerator()
	at := time.Now() // fixed instant: all numbers share the ms prefix

	const goroutines = 8
	const perGoroutine = 500

	var mu sync.Mutex
	seen := make(map[string]bool, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perGoroutine)
			for j := 0; j < perGoroutine; j++ {
				local = append(local, g.Next(at))
			}
			mu.Lock()
			defer mu.Unlock()
			for _, n := range local {
				if seen[n] {
					t.Errorf("duplicate order number %q", n)
				}
				seen[n] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Fatalf("expected %d unique numbers, got %d", goroutines*perGoroutine, len(seen))
	}
}

func TestNextDistinctNodes(t *testing.T) {
	at := time.Now()
	a := NewGenerator().Next(at)
	b := NewGenerator().Next(at)
	if a == b {
		t.Fatalf("two generators issued the same number %q", a)
	}
}
