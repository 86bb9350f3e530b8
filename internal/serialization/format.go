package serialization

import (
	"encoding/json"
	"fmt"

	"github.com/born-ml/bridge/internal/ndarray"
)

const metadataKey = "__metadata__"

// SafeTensors dtype tags.
const (
	DTypeF32  = "F32"
	DTypeF64  = "F64"
	DTypeI32  = "I32"
	DTypeI64  = "I64"
	DTypeU8   = "U8"
	DTypeBool = "BOOL"
)

// TensorInfo describes one array in the header.
type TensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end) relative to the data section
}

// Header is the decoded JSON header.
type Header struct {
	Metadata map[string]string
	Tensors  map[string]TensorInfo
}

// MarshalJSON flattens the header into the single object SafeTensors expects.
func (h Header) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(h.Tensors)+1)
	if len(h.Metadata) > 0 {
		flat[metadataKey] = h.Metadata
	}
	for name, info := range h.Tensors {
		flat[name] = info
	}
	return json.Marshal(flat)
}

// UnmarshalJSON splits the metadata entry from the tensor entries.
func (h *Header) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap[metadataKey]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		delete(rawMap, metadataKey)
	}

	h.Tensors = make(map[string]TensorInfo, len(rawMap))
	for key, value := range rawMap {
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}
	return nil
}

func dtypeToTag(dt ndarray.DataType) (string, error) {
	switch dt {
	case ndarray.Float32:
		return DTypeF32, nil
	case ndarray.Float64:
		return DTypeF64, nil
	case ndarray.Int32:
		return DTypeI32, nil
	case ndarray.Int64:
		return DTypeI64, nil
	case ndarray.Uint8:
		return DTypeU8, nil
	case ndarray.Bool:
		return DTypeBool, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}
}

func tagToDType(tag string) (ndarray.DataType, error) {
	switch tag {
	case DTypeF32:
		return ndarray.Float32, nil
	case DTypeF64:
		return ndarray.Float64, nil
	case DTypeI32:
		return ndarray.Int32, nil
	case DTypeI64:
		return ndarray.Int64, nil
	case DTypeU8:
		return ndarray.Uint8, nil
	case DTypeBool:
		return ndarray.Bool, nil
	default:
		// F16 and BF16 have no host representation here.
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedDType, tag)
	}
}
