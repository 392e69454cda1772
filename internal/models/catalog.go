// Package models implements the Model Catalog & Loader (§4.3): a static
// registry of embedded-model descriptors, a cache-directory resolver,
// an atomic download protocol, and on-load verification.
package models

// Variant distinguishes a descriptor's architectural target.
type Variant string

const (
	VariantCPU Variant = "cpu"
	VariantGPU Variant = "gpu" // Apple Silicon only, per §4.4
)

// Descriptor is an immutable catalog entry (§3 Model Descriptor).
type Descriptor struct {
	ID           string
	DisplayName  string
	RemoteRepo   string // e.g. "caro-project/caro-7b-gguf"
	Filename     string
	ExpectedMiB  int64
	Variant      Variant
	CISuitable   bool // true when small enough for CI smoke tests
}

// catalog is the static registry, keyed by descriptor id. It is never
// mutated after package init.
var catalog = []Descriptor{
	{
		ID:          "caro-7b-cpu",
		DisplayName: "caro 7B (CPU, Q4_K_M)",
		RemoteRepo:  "caro-project/caro-7b-gguf",
		Filename:    "caro-7b-q4_k_m.gguf",
		ExpectedMiB: 4_370,
		Variant:     VariantCPU,
		CISuitable:  false,
	},
	{
		ID:          "caro-7b-gpu",
		DisplayName: "caro 7B (Metal, Q4_K_M)",
		RemoteRepo:  "caro-project/caro-7b-gguf",
		Filename:    "caro-7b-q4_k_m.gguf",
		ExpectedMiB: 4_370,
		Variant:     VariantGPU,
		CISuitable:  false,
	},
	{
		ID:          "caro-1b-cpu",
		DisplayName: "caro 1B (CPU, Q4_K_M, CI)",
		RemoteRepo:  "caro-project/caro-1b-gguf",
		Filename:    "caro-1b-q4_k_m.gguf",
		ExpectedMiB: 780,
		Variant:     VariantCPU,
		CISuitable:  true,
	},
}

const defaultModelID = "caro-7b-cpu"

// ByID looks up a descriptor by its stable id.
func ByID(id string) (Descriptor, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Default returns the catalog's default descriptor.
func Default() Descriptor {
	d, _ := ByID(defaultModelID)
	return d
}

// All returns every catalog entry.
func All() []Descriptor {
	out := make([]Descriptor, len(catalog))
	copy(out, catalog)
	return out
}

// CISuitable returns entries small enough for CI smoke tests.
func CISuitable() []Descriptor {
	var out []Descriptor
	for _, d := range catalog {
		if d.CISuitable {
			out = append(out, d)
		}
	}
	return out
}

// Smallest returns the catalog entry with the lowest expected size.
func Smallest() Descriptor {
	smallest := catalog[0]
	for _, d := range catalog[1:] {
		if d.ExpectedMiB < smallest.ExpectedMiB {
			smallest = d
		}
	}
	return smallest
}
