package diag

import (
	"sync"

	"github.com/google/pprof/profile"
)

var (
	mu      sync.Mutex
	enabled bool
	samples = map[string][]int64{} // object label -> recorded wait durations, nanoseconds
)

// Enable turns on sample recording. Disabled by default, matching the Go
// runtime's Blockprofilerate == 0 meaning "block profiling off":
// diagnostics must not cost anything when unused.
func Enable() {
	mu.Lock()
	enabled = true
	mu.Unlock()
}

// Disable turns off sample recording; Record becomes a no-op.
func Disable() {
	mu.Lock()
	enabled = false
	mu.Unlock()
}

// Reset discards every recorded sample.
func Reset() {
	mu.Lock()
	samples = map[string][]int64{}
	mu.Unlock()
}

// Record appends a wait-time sample for the named synchronization object.
// A no-op unless Enable has been called.
func Record(object string, nanoseconds int64) {
	mu.Lock()
	if enabled {
		samples[object] = append(samples[object], nanoseconds)
	}
	mu.Unlock()
}

// Profile renders every recorded sample as a pprof profile, one Location
// per object label and one Sample per recorded wait.
func Profile() *profile.Profile {
	mu.Lock()
	defer mu.Unlock()

	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "delay", Unit: "nanoseconds"},
		},
		PeriodType: &profile.ValueType{Type: "delay", Unit: "nanoseconds"},
		Period:     1,
	}

	var nextID uint64 = 1
	for object, durations := range samples {
		fn := &profile.Function{
			ID:   nextID,
			Name: object,
		}
		loc := &profile.Location{
			ID:   nextID,
			Line: []profile.Line{{Function: fn}},
		}
		nextID++

		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)

		for _, d := range durations {
			p.Sample = append(p.Sample, &profile.Sample{
				Location: []*profile.Location{loc},
				Value:    []int64{d},
			})
		}
	}

	return p
}
