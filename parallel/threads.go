package parallel

import "runtime"

import "github.com/klauspost/cpuid/v2"

var threads int

func init() {
	// SMT siblings share FPU ports, so the float kernels only scale with
	// physical cores.
	threads = cpuid.CPU.PhysicalCores
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
}

// Threads reports the worker count used by the math kernels.
func Threads() int {
	return threads
}
