package shared

import (
	"github.com/ricochet2200/go-disk-usage/du"
)

// AvailableSpace returns the number of bytes available to the current user at path.
func AvailableSpace(path string) uint64 {
	usage := du.NewDiskUsage(path)
	return usage.Available()
}

// EnsureSpace checks that dir has at least required bytes available.
func EnsureSpace(dir string, required uint64) error {
	if required == 0 {
		return nil
	}
	if available := AvailableSpace(dir); required > available {
		return InsufficientSpaceError{Dir: dir, Required: required, Available: available}
	}
	return nil
}
