package exclusion

import "strings"

// Policy decides whether a library path must be left to the host instead of
// being bundled. Host-ABI libraries encode kernel interface and CPU-ABI
// details, so a bundled copy would have to match the target host exactly,
// which is the one thing a bundle cannot guarantee.
//
// Matching is substring containment over the whole path, not filename
// equality. That means a path which merely contains a marker as a path
// component is excluded as well. This mirrors the original exclusion
// behavior and is kept intentionally.
type Policy struct {
	markers []string
}

// hostABIMarkers are the libraries every Linux host is expected to provide:
// the dynamic linker and the core glibc components.
var hostABIMarkers = []string{
	"ld-linux",
	"libc.so",
	"libm.so",
	"libpthread.so",
	"libdl.so",
	"librt.so",
}

// Default returns the policy excluding the dynamic linker and core glibc
// libraries.
func Default() *Policy {
	return New(hostABIMarkers...)
}

// New returns a policy excluding every path which contains one of the given
// markers as a substring.
func New(markers ...string) *Policy {
	p := &Policy{markers: make([]string, len(markers))}
	copy(p.markers, markers)
	return p
}

// Excluded reports whether path is host-provided and must not be bundled.
// The path is not required to exist.
func (p *Policy) Excluded(path string) bool {
	for _, marker := range p.markers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}

// Markers returns a copy of the marker list.
func (p *Policy) Markers() []string {
	markers := make([]string, len(p.markers))
	copy(markers, p.markers)
	return markers
}
