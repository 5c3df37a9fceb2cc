package calfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadFile decodes a complete calibration container.
func ReadFile(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(file, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if string(magic) != fileMagic {
		return nil, fmt.Errorf("invalid file format")
	}

	f := &File{byPath: make(map[string]*Entry)}
	if err := binary.Read(file, binary.LittleEndian, &f.Version); err != nil {
		return nil, err
	}
	if f.Version > FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", f.Version)
	}

	var entryCount uint32
	if err := binary.Read(file, binary.LittleEndian, &entryCount); err != nil {
		return nil, err
	}

	f.Entries = make([]Entry, entryCount)
	for i := range f.Entries {
		if err := readEntry(file, &f.Entries[i]); err != nil {
			return nil, fmt.Errorf("failed to read entry %d: %w", i, err)
		}
		f.byPath[f.Entries[i].Path] = &f.Entries[i]
	}

	return f, nil
}

func readEntry(file *os.File, entry *Entry) error {
	var pathLen uint16
	if err := binary.Read(file, binary.LittleEndian, &pathLen); err != nil {
		return err
	}
	pathBytes := make([]byte, pathLen)
	if _, err := io.ReadFull(file, pathBytes); err != nil {
		return err
	}
	entry.Path = string(pathBytes)

	var dtype uint8
	if err := binary.Read(file, binary.LittleEndian, &dtype); err != nil {
		return err
	}
	entry.Type = DType(dtype)

	var rank uint8
	if err := binary.Read(file, binary.LittleEndian, &rank); err != nil {
		return err
	}
	entry.Dims = make([]uint64, rank)
	for i := range entry.Dims {
		if err := binary.Read(file, binary.LittleEndian, &entry.Dims[i]); err != nil {
			return err
		}
	}

	n := entry.Len()
	switch entry.Type {
	case DTypeString:
		return readStrings(file, entry, n)
	case DTypeInt64:
		entry.Ints = make([]int64, n)
		for i := range entry.Ints {
			if err := binary.Read(file, binary.LittleEndian, &entry.Ints[i]); err != nil {
				return err
			}
		}
		return nil
	case DTypeComplex128:
		entry.Complex = make([]complex128, n)
		for i := range entry.Complex {
			var re, im float64
			if err := binary.Read(file, binary.LittleEndian, &re); err != nil {
				return err
			}
			if err := binary.Read(file, binary.LittleEndian, &im); err != nil {
				return err
			}
			entry.Complex[i] = complex(re, im)
		}
		return nil
	default:
		return fmt.Errorf("unknown dtype %d in %s", dtype, entry.Path)
	}
}

func readStrings(file *os.File, entry *Entry, n int) error {
	var width uint32
	if err := binary.Read(file, binary.LittleEndian, &width); err != nil {
		return err
	}

	cell := make([]byte, width)
	entry.Strings = make([]string, n)
	for i := range entry.Strings {
		if _, err := io.ReadFull(file, cell); err != nil {
			return err
		}
		entry.Strings[i] = strings.TrimRight(string(cell), " ")
	}
	return nil
}
