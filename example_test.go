package carena

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Example wires the manager to a host allocator with human-readable debug
// logging of every hook invocation. Run once at process start, before any
// arena traffic exists.
func Example() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelDebug,
	}))

	var host HostAllocator = newFakeHost()

	m := Initialize(host,
		WithWindowSize(1<<26),
		WithLogger(logger),
	)

	// Every pointer the arena returns falls inside the reserved window.
	p := m.AllocateAligned(4096, 4096)
	fmt.Println(m.Contains(p, 4096))

	p = m.Reallocate(p, 8192)
	m.Free(p)

	metrics := m.Metrics()
	fmt.Printf("allocated %d of %d bytes\n", metrics.Allocated, metrics.WindowSize)
}
