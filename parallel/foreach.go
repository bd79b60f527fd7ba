// Package parallel provides bounded fan-out helpers for the float kernels
package parallel

import "sync"

// ForEach runs body(i) for every i in [0, length) using at most limit
// concurrent goroutines. Iterations must be independent.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 || limit > length {
		limit = length
	}
	if limit == 1 {
		for i := 0; i < length; i++ {
			body(i)
		}
		return
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	wg.Add(limit)
	for w := 0; w < limit; w++ {
		go func() {
			defer wg.Done()
			for i := range idx {
				body(i)
			}
		}()
	}
	for i := 0; i < length; i++ {
		idx <- i
	}
	close(idx)
	wg.Wait()
}
