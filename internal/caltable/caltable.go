// Package caltable parses a joined bandpass calibration table into a
// structured dataset of complex gains.
package caltable

import (
	"fmt"
)

// DefaultPolarizations is the polarization cardinality of standard
// dual-polarization VLA data.
const DefaultPolarizations = 2

// Dataset is the structured result of parsing one calibration solution: a
// complex gain for every (antenna, channel, polarization) triple plus the
// coordinate arrays that index it. A Dataset is created once by Parse and
// not modified afterward.
type Dataset struct {
	Antennas      []string
	Channels      []int64
	Polarizations []string
	Times         []string
	Fields        []string

	// Gains holds the complex gain array flattened row-major over
	// (antenna, channel, polarization).
	Gains []complex128
}

// Shape returns the gain array dimensions (nants, nchans, npol).
func (d *Dataset) Shape() (nants, nchans, npol int) {
	return len(d.Antennas), len(d.Channels), len(d.Polarizations)
}

// Gain returns the complex gain for one (antenna, channel, polarization)
// index triple.
func (d *Dataset) Gain(ant, ch, pol int) complex128 {
	nchans := len(d.Channels)
	npol := len(d.Polarizations)
	return d.Gains[(ant*nchans+ch)*npol+pol]
}

// ShapeError reports a data record whose value count disagrees with the
// expected antenna and polarization counts. Once the header is trusted this
// indicates a structural parse fault upstream, so parsing aborts rather
// than dropping the row.
type ShapeError struct {
	Time     string
	Channel  int64
	Expected int
	Got      int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("record %s channel %d has %d values, expected %d",
		e.Time, e.Channel, e.Got, e.Expected)
}
