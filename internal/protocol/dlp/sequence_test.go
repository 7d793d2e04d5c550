package dlp

import (
	"sync"
	"testing"
)

func TestCounterStepAndWrap(t *testing.T) {
	var c Counter
	prev := c.Next()
	for i := 1; i < 512; i++ {
		cur := c.Next()
		if cur != prev+1 { // byte 自然回绕
			t.Fatalf("step %d: prev=%d cur=%d", i, prev, cur)
		}
		prev = cur
	}
}

func TestCounterPeriod256(t *testing.T) {
	var c Counter
	start := c.Next()
	for i := 0; i < 255; i++ {
		c.Next()
	}
	if got := c.Next(); got != start {
		t.Fatalf("after 256 ticks: start=%d got=%d", start, got)
	}
}

func TestCounterConcurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	seen := make([]int32, 256)
	var mu sync.Mutex
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 32; i++ {
				v := c.Next()
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	// 8*32 = 256 次取号应恰好覆盖每个值一次
	for v, n := range seen {
		if n != 1 {
			t.Fatalf("value %d issued %d times", v, n)
		}
	}
}
