package utils

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"nba-stats-explorer/src/logger"
)

// -----------------------------------------------------------------------------
// MemoryManager keeps the process under a soft heap limit. Season tables are
// the bulk of the heap and live in the store, so the manager only tunes the
// runtime and returns freed pages to the OS.
// -----------------------------------------------------------------------------

type MemoryManager struct {
	MaxMemoryMB int
	Logger      *logger.Logger
}

// -----------------------------------------------------------------------------

func NewMemoryManager(maxMemoryMB int, log *logger.Logger) *MemoryManager {
	return &MemoryManager{
		MaxMemoryMB: maxMemoryMB,
		Logger:      log,
	}
}

// -----------------------------------------------------------------------------

// Apply sets the runtime soft memory limit.
func (mm *MemoryManager) Apply() {
	debug.SetMemoryLimit(int64(mm.MaxMemoryMB) << 20)
	mm.Logger.Info("Memory Limit set to: %d MB", mm.MaxMemoryMB)
}

// -----------------------------------------------------------------------------

// CheckMemoryLimits forces a collection when the heap exceeds the limit and
// reports whether it did.
func (mm *MemoryManager) CheckMemoryLimits() bool {
	current := mm.GetProcessMemoryMB()
	if current <= float64(mm.MaxMemoryMB) {
		return false
	}

	mm.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Cleaning up.", current, mm.MaxMemoryMB)
	runtime.GC()
	debug.FreeOSMemory()
	return true
}

// -----------------------------------------------------------------------------

// Run checks the limit every interval until ctx is done.
func (mm *MemoryManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mm.CheckMemoryLimits()
		}
	}
}

// -----------------------------------------------------------------------------

// GetProcessMemoryMB returns the live heap in MB.
func (mm *MemoryManager) GetProcessMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / 1024 / 1024
}
