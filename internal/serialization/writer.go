package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/born-ml/bridge/internal/ndarray"
)

// headerAlignment pads the JSON header so the data section starts 8-byte aligned.
const headerAlignment = 8

// WriteSafeTensors writes arrays to a SafeTensors file.
// Arrays are packed in alphabetical order by name.
func WriteSafeTensors(path string, arrays map[string]*ndarray.Array, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(file)
	if err := WriteTo(w, arrays, metadata); err != nil {
		return err
	}
	return w.Flush()
}

// WriteTo encodes arrays as a SafeTensors stream.
func WriteTo(w io.Writer, arrays map[string]*ndarray.Array, metadata map[string]string) error {
	names := slices.Sorted(maps.Keys(arrays))

	header := Header{Metadata: metadata, Tensors: make(map[string]TensorInfo, len(arrays))}
	var offset int64
	for _, name := range names {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		a := arrays[name]
		if a == nil {
			return fmt.Errorf("tensor %s: nil array", name)
		}
		tag, err := dtypeToTag(a.DType())
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		size := int64(a.ByteSize())
		header.Tensors[name] = TensorInfo{
			DType:       tag,
			Shape:       a.Shape().Int64(),
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if pad := len(headerJSON) % headerAlignment; pad != 0 {
		headerJSON = append(headerJSON, bytes.Repeat([]byte{' '}, headerAlignment-pad)...)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, name := range names {
		if _, err := w.Write(arrays[name].Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}
	return nil
}
