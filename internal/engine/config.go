package engine

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Options configures a new Engine. The zero value is usable: it picks a
// modest shadow-stack capacity and a GC threshold generous enough that
// short-lived programs never trigger a collection at all.
type Options struct {
	// ShadowStackSize is the number of Value slots reserved up front for
	// GC roots. Exceeding it aborts the process (see shadowStack.push);
	// it is not resizable at runtime because slot addresses must stay stable.
	ShadowStackSize int `toml:"shadow_stack_size"`

	// GCThreshold is the number of allocations between automatic
	// collections. ForceGC overrides it to mean "every allocation",
	// which is how the GC stress tests exercise collection without
	// waiting for real allocation pressure.
	GCThreshold int  `toml:"gc_threshold"`
	ForceGC     bool `toml:"force_gc"`
}

// DefaultOptions returns the Options a bare NewEngine(DefaultOptions()) would use.
func DefaultOptions() Options {
	return Options{
		ShadowStackSize: 4096,
		GCThreshold:     1000,
		ForceGC:         false,
	}
}

func (o Options) withDefaults() Options {
	if o.ShadowStackSize <= 0 {
		o.ShadowStackSize = DefaultOptions().ShadowStackSize
	}
	if o.GCThreshold <= 0 {
		o.GCThreshold = DefaultOptions().GCThreshold
	}
	return o
}

// LoadOptions reads Options from a TOML config file (aotjs.toml by
// convention), layering file values over DefaultOptions so a partial
// file is enough.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("engine: reading config %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &opts); err != nil {
		return Options{}, fmt.Errorf("engine: parsing config %s: %w", path, err)
	}
	return opts.withDefaults(), nil
}
