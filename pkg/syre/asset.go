package syre

import (
	"path/filepath"
)

// Properties are the user-assigned properties of an asset.
type Properties struct {
	Name     string                 `json:"name,omitempty"`
	Kind     string                 `json:"kind,omitempty"`
	Tags     []string               `json:"tags,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Asset is a data resource registered in a project container.
type Asset struct {
	// ID is the asset's resource id.
	ID string `json:"rid"`
	Properties
	// Path is the asset file path relative to its container directory.
	Path string `json:"path"`

	container string
}

// File returns the absolute path of the asset's data file.
func (a *Asset) File() string {
	return filepath.Join(a.container, filepath.FromSlash(a.Path))
}

// Container returns the absolute path of the container directory holding
// the asset.
func (a *Asset) Container() string { return a.container }

// Filter selects assets by their properties. Nil fields match anything.
type Filter struct {
	// Name matches the asset name exactly.
	Name *string
	// Kind matches the asset kind exactly.
	Kind *string
	// Tags requires the asset to carry every listed tag.
	Tags []string
	// Metadata requires every key to be present with an equal value.
	// Numeric values compare across int and float representations.
	Metadata map[string]interface{}
}

// Matches reports whether the asset satisfies the filter.
func (f Filter) Matches(a *Asset) bool {
	if f.Name != nil && a.Name != *f.Name {
		return false
	}
	if f.Kind != nil && a.Kind != *f.Kind {
		return false
	}
	for _, tag := range f.Tags {
		if !containsTag(a.Tags, tag) {
			return false
		}
	}
	for key, want := range f.Metadata {
		got, ok := a.Metadata[key]
		if !ok || !metadataEqual(got, want) {
			return false
		}
	}
	return true
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// metadataEqual compares metadata values, treating all numeric types as
// float64 the way JSON decoding does.
func metadataEqual(a, b interface{}) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf
	}
	return a == b
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
