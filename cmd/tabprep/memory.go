package main

import (
	"os"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ajitpratap0/tabprep/pkg/compression"
	"github.com/ajitpratap0/tabprep/pkg/errors"
)

// A loaded table takes several times its encoded size: every cell is
// expanded into a float64 or string plus a validity flag, and compressed
// inputs grow further when decoded.
const (
	expansionFactor  = 4
	compressedFactor = 5
)

// estimateFootprint returns the approximate in-memory size of the table at path
func estimateFootprint(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeFile, "failed to stat "+path)
	}
	size := uint64(info.Size()) * expansionFactor
	if compression.FromPath(path) != compression.None {
		size *= compressedFactor
	}
	return size, nil
}

// checkMemory refuses to load path when its estimated footprint exceeds
// fraction of the available system memory. A fraction <= 0 disables the check,
// as does a failure to read the system memory statistics.
func checkMemory(path string, fraction float64) error {
	need, err := estimateFootprint(path)
	if err != nil {
		return err
	}
	if fraction <= 0 {
		return nil
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil
	}
	limit := uint64(float64(vm.Available) * fraction)
	if need > limit {
		return errors.Newf(errors.ErrorTypeValidation,
			"%s needs about %d MiB, more than %.0f%% of the %d MiB available",
			path, need>>20, fraction*100, vm.Available>>20).
			WithDetail("path", path).
			WithDetail("estimated_bytes", need).
			WithDetail("available_bytes", vm.Available)
	}
	return nil
}
