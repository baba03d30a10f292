package gldevice

import (
	"sync"

	"MirrorShade/internal/logger"
	"MirrorShade/internal/renderer"

	"go.uber.org/zap"
)

// ResourceSnapshot provides debugging and profiling information
type ResourceSnapshot struct {
	TotalTextures      int
	ActiveTextures     int
	ActiveFramebuffers int
	ActivePrograms     int
	TotalMemoryMB      float64
}

// ResourceStats tracks the GPU objects a Device has created and not yet
// deleted. Reads may come from a logging goroutine, hence the lock.
type ResourceStats struct {
	mu           sync.RWMutex
	textureBytes map[uint32]int
	labels       map[uint32]string
	stats        ResourceSnapshot
}

func NewResourceStats() *ResourceStats {
	return &ResourceStats{
		textureBytes: make(map[uint32]int),
		labels:       make(map[uint32]string),
	}
}

func (rs *ResourceStats) TextureCreated(id uint32, desc renderer.TextureDesc) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	size := 0
	if f, err := glFormat(desc.Format); err == nil {
		size = desc.Width * desc.Height * f.bytes
	}
	rs.textureBytes[id] = size
	rs.labels[id] = desc.Label
	rs.stats.TotalTextures++
}

func (rs *ResourceStats) TextureDeleted(id uint32) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if _, exists := rs.textureBytes[id]; !exists {
		logger.Log.Warn("Attempted to release unknown texture", zap.Uint32("textureID", id))
		return
	}
	delete(rs.textureBytes, id)
	delete(rs.labels, id)
}

func (rs *ResourceStats) FramebufferCreated() { rs.add(&rs.stats.ActiveFramebuffers, 1) }
func (rs *ResourceStats) FramebufferDeleted() { rs.add(&rs.stats.ActiveFramebuffers, -1) }
func (rs *ResourceStats) ProgramCreated()     { rs.add(&rs.stats.ActivePrograms, 1) }
func (rs *ResourceStats) ProgramDeleted()     { rs.add(&rs.stats.ActivePrograms, -1) }

func (rs *ResourceStats) add(counter *int, delta int) {
	rs.mu.Lock()
	*counter += delta
	rs.mu.Unlock()
}

// Snapshot returns current resource statistics
func (rs *ResourceStats) Snapshot() ResourceSnapshot {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	snap := rs.stats
	snap.ActiveTextures = len(rs.textureBytes)
	total := 0
	for _, b := range rs.textureBytes {
		total += b
	}
	snap.TotalMemoryMB = float64(total) / (1024 * 1024)
	return snap
}

// Label returns the debug label a live texture was created with.
func (rs *ResourceStats) Label(id uint32) (string, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	label, ok := rs.labels[id]
	return label, ok
}

// LogStats logs current resource statistics
func (rs *ResourceStats) LogStats() {
	snap := rs.Snapshot()
	logger.Log.Info("GPU resource stats",
		zap.Int("totalTextures", snap.TotalTextures),
		zap.Int("activeTextures", snap.ActiveTextures),
		zap.Int("activeFramebuffers", snap.ActiveFramebuffers),
		zap.Int("activePrograms", snap.ActivePrograms),
		zap.Float64("textureMemoryMB", snap.TotalMemoryMB))
}
