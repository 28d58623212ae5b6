package test

import (
	"runtime"
	"syscall"
	"time"

	"github.com/relex/gotils/logger"
)

// CostTracker tracks CPU usage and memory allocations
type CostTracker struct {
	initRealTime      time.Time
	initUserTime      time.Duration
	initSystemTime    time.Duration
	initNumHeapAllocs uint64
}

// CostReport contains measurements since StartCostTracking()
type CostReport struct {
	RealTime      time.Duration
	UserTime      time.Duration
	SystemTime    time.Duration
	NumHeapAllocs uint64
	GCCPUFraction float64
}

// StartCostTracking creates a cost tracker and starts tracking
func StartCostTracking() *CostTracker {
	runtime.GC()
	ct := &CostTracker{initRealTime: time.Now()}
	ct.initUserTime, ct.initSystemTime = readCPUTimes()
	ct.initNumHeapAllocs = readNumHeapAllocs()
	return ct
}

// Report reports measurements since the tracker was started
func (ct *CostTracker) Report() CostReport {
	runtime.GC()
	userTime, systemTime := readCPUTimes()
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	return CostReport{
		RealTime:      time.Since(ct.initRealTime),
		UserTime:      userTime - ct.initUserTime,
		SystemTime:    systemTime - ct.initSystemTime,
		NumHeapAllocs: memStats.Mallocs - ct.initNumHeapAllocs,
		GCCPUFraction: memStats.GCCPUFraction,
	}
}

func readCPUTimes() (time.Duration, time.Duration) {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		logger.Panic("failed to get resource usage: ", err)
	}
	return time.Duration(rusage.Utime.Nano()), time.Duration(rusage.Stime.Nano())
}

func readNumHeapAllocs() uint64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	return memStats.Mallocs
}
