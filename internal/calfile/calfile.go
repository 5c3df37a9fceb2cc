// Package calfile reads and writes the calibration container format: a
// self-describing binary file holding named, typed arrays addressed by
// hierarchical group paths. The layout mirrors the archive hierarchy
// downstream consumers expect:
//
//	CALIBRATION/BANDPASS/ANTENNA       antenna name strings
//	CALIBRATION/BANDPASS/CHANNEL       channel indices
//	CALIBRATION/BANDPASS/POLARIZATION  polarization labels
//	CALIBRATION/BANDPASS/TIME          time strings
//	CALIBRATION/BANDPASS/FIELD         field strings
//	CALIBRATION/BANDPASS/GAIN/CPARAM   complex gains (nants, nchans, npol)
package calfile

import (
	"fmt"
	"sort"
	"strings"
)

// FormatVersion is the current container format version.
const FormatVersion uint16 = 1

// fileMagic identifies a calibration container file.
const fileMagic = "CALTB"

// Dataset paths inside the container.
const (
	GroupBandpass    = "CALIBRATION/BANDPASS"
	PathAntenna      = GroupBandpass + "/ANTENNA"
	PathChannel      = GroupBandpass + "/CHANNEL"
	PathPolarization = GroupBandpass + "/POLARIZATION"
	PathTime         = GroupBandpass + "/TIME"
	PathField        = GroupBandpass + "/FIELD"
	PathGain         = GroupBandpass + "/GAIN/CPARAM"
)

// DType identifies the element type of a stored dataset.
type DType uint8

const (
	DTypeString DType = iota + 1 // fixed-width byte strings
	DTypeInt64
	DTypeComplex128
)

func (t DType) String() string {
	switch t {
	case DTypeString:
		return "string"
	case DTypeInt64:
		return "int64"
	case DTypeComplex128:
		return "complex128"
	default:
		return fmt.Sprintf("dtype(%d)", uint8(t))
	}
}

// Entry is one stored dataset: a typed array with its path and dimensions.
// Exactly one of Strings, Ints or Complex is populated, per Type.
type Entry struct {
	Path string
	Type DType
	Dims []uint64

	Strings []string
	Ints    []int64
	Complex []complex128
}

// Len returns the element count implied by the entry dimensions.
func (e *Entry) Len() int {
	n := 1
	for _, d := range e.Dims {
		n *= int(d)
	}
	return n
}

// ShapeString renders the dimensions as e.g. "(27, 64, 2)".
func (e *Entry) ShapeString() string {
	parts := make([]string, len(e.Dims))
	for i, d := range e.Dims {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// File is a fully decoded calibration container.
type File struct {
	Version uint16
	Entries []Entry

	byPath map[string]*Entry
}

// Dataset looks up a stored dataset by its full path.
func (f *File) Dataset(path string) (*Entry, bool) {
	e, ok := f.byPath[path]
	return e, ok
}

// Groups returns the top-level group names present in the container, in
// stored order.
func (f *File) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, e := range f.Entries {
		top := e.Path
		if i := strings.Index(top, "/"); i >= 0 {
			top = top[:i]
		}
		if !seen[top] {
			seen[top] = true
			groups = append(groups, top)
		}
	}
	return groups
}

// Members returns the names of the direct members of a group: dataset
// names, plus sub-group names for nested datasets. The result is sorted.
func (f *File) Members(group string) []string {
	prefix := group + "/"
	var members []string
	seen := make(map[string]bool)
	for _, e := range f.Entries {
		if !strings.HasPrefix(e.Path, prefix) {
			continue
		}
		name := strings.TrimPrefix(e.Path, prefix)
		if i := strings.Index(name, "/"); i >= 0 {
			name = name[:i]
		}
		if !seen[name] {
			seen[name] = true
			members = append(members, name)
		}
	}
	sort.Strings(members)
	return members
}

// Summary lists the container hierarchy for diagnostics.
type Summary struct {
	Groups   []string // top-level group names
	Bandpass []string // member names of the bandpass calibration group
}

// Inspect enumerates the groups and bandpass datasets stored in a
// container without transforming any data.
func Inspect(filename string) (*Summary, error) {
	f, err := ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container: %w", err)
	}
	return &Summary{
		Groups:   f.Groups(),
		Bandpass: f.Members(GroupBandpass),
	}, nil
}
