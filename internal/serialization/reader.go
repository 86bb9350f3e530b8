package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/born-ml/bridge/internal/ndarray"
)

// File is a decoded SafeTensors file.
type File struct {
	Metadata map[string]string
	Arrays   map[string]*ndarray.Array
}

// Names returns the array names in sorted order.
func (f *File) Names() []string {
	return slices.Sorted(maps.Keys(f.Arrays))
}

// ReadSafeTensors loads every array of a SafeTensors file into host memory.
func ReadSafeTensors(path string) (*File, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Read-only, close error carries no information
	}()

	f, err := ReadFrom(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ReadFrom decodes a SafeTensors stream.
func ReadFrom(r io.Reader) (*File, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, &ValidationError{
			Err:     ErrHeaderTooLarge,
			Details: fmt.Sprintf("%d bytes, max %d", headerSize, MaxHeaderSize),
		}
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateHeader(&header, int64(len(data))); err != nil {
		return nil, err
	}

	f := &File{
		Metadata: header.Metadata,
		Arrays:   make(map[string]*ndarray.Array, len(header.Tensors)),
	}
	for name, info := range header.Tensors {
		dt, err := tagToDType(info.DType)
		if err != nil {
			return nil, err
		}
		// FromBytes copies, so every array gets its own aligned storage.
		a, err := ndarray.FromBytes(ndarray.ShapeFromInt64(info.Shape), dt, data[info.DataOffsets[0]:info.DataOffsets[1]])
		if err != nil {
			return nil, fmt.Errorf("tensor %s: %w", name, err)
		}
		f.Arrays[name] = a
	}
	return f, nil
}
