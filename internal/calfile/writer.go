package calfile

import (
	"encoding/binary"
	"fmt"
	"os"

	"caltab-archiver/internal/caltable"
)

type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteFile serializes a calibration dataset into a container file,
// creating or overwriting the target path.
func (w *Writer) WriteFile(filename string, ds *caltable.Dataset) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	nants, nchans, npol := ds.Shape()
	entries := []Entry{
		{Path: PathAntenna, Type: DTypeString, Dims: []uint64{uint64(nants)}, Strings: ds.Antennas},
		{Path: PathChannel, Type: DTypeInt64, Dims: []uint64{uint64(nchans)}, Ints: ds.Channels},
		{Path: PathPolarization, Type: DTypeString, Dims: []uint64{uint64(npol)}, Strings: ds.Polarizations},
		{Path: PathTime, Type: DTypeString, Dims: []uint64{uint64(len(ds.Times))}, Strings: ds.Times},
		{Path: PathField, Type: DTypeString, Dims: []uint64{uint64(len(ds.Fields))}, Strings: ds.Fields},
		{Path: PathGain, Type: DTypeComplex128, Dims: []uint64{uint64(nants), uint64(nchans), uint64(npol)}, Complex: ds.Gains},
	}

	if err := w.writeHeader(file, uint32(len(entries))); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, entry := range entries {
		if err := w.writeEntry(file, &entry); err != nil {
			return fmt.Errorf("failed to write %s: %w", entry.Path, err)
		}
	}

	return nil
}

func (w *Writer) writeHeader(file *os.File, entryCount uint32) error {
	if _, err := file.WriteString(fileMagic); err != nil {
		return err
	}
	if err := binary.Write(file, binary.LittleEndian, FormatVersion); err != nil {
		return err
	}
	return binary.Write(file, binary.LittleEndian, entryCount)
}

func (w *Writer) writeEntry(file *os.File, entry *Entry) error {
	pathBytes := []byte(entry.Path)
	if err := binary.Write(file, binary.LittleEndian, uint16(len(pathBytes))); err != nil {
		return err
	}
	if _, err := file.Write(pathBytes); err != nil {
		return err
	}

	if err := binary.Write(file, binary.LittleEndian, uint8(entry.Type)); err != nil {
		return err
	}

	if err := binary.Write(file, binary.LittleEndian, uint8(len(entry.Dims))); err != nil {
		return err
	}
	for _, dim := range entry.Dims {
		if err := binary.Write(file, binary.LittleEndian, dim); err != nil {
			return err
		}
	}

	switch entry.Type {
	case DTypeString:
		return w.writeStrings(file, entry.Strings)
	case DTypeInt64:
		return w.writeInts(file, entry.Ints)
	case DTypeComplex128:
		return w.writeComplex(file, entry.Complex)
	default:
		return fmt.Errorf("unknown dtype %d", entry.Type)
	}
}

// writeStrings stores a string array as fixed-width byte strings, padded
// with spaces to the width of the longest value.
func (w *Writer) writeStrings(file *os.File, values []string) error {
	width := 1
	for _, v := range values {
		if len(v) > width {
			width = len(v)
		}
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(width)); err != nil {
		return err
	}

	cell := make([]byte, width)
	for _, v := range values {
		for i := range cell {
			cell[i] = ' '
		}
		copy(cell, v)
		if _, err := file.Write(cell); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeInts(file *os.File, values []int64) error {
	for _, v := range values {
		if err := binary.Write(file, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeComplex(file *os.File, values []complex128) error {
	for _, v := range values {
		if err := binary.Write(file, binary.LittleEndian, real(v)); err != nil {
			return err
		}
		if err := binary.Write(file, binary.LittleEndian, imag(v)); err != nil {
			return err
		}
	}
	return nil
}
