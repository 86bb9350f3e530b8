package serialization

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
)

type span struct {
	name       string
	start, end int64
}

// ValidateHeader checks names, dtype tags, sizes and offsets of every entry
// against a data section of dataSize bytes.
func ValidateHeader(h *Header, dataSize int64) error {
	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Err:     ErrTooManyTensors,
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	spans := make([]span, 0, len(h.Tensors))
	for name, info := range h.Tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		dt, err := tagToDType(info.DType)
		if err != nil {
			return &ValidationError{Err: ErrUnsupportedDType, Tensor: name, Details: info.DType}
		}

		start, end := info.DataOffsets[0], info.DataOffsets[1]
		if start < 0 || end < start {
			return &ValidationError{
				Err:     ErrNegativeOffset,
				Tensor:  name,
				Details: fmt.Sprintf("data_offsets [%d, %d]", start, end),
			}
		}
		if end > dataSize {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  name,
				Details: fmt.Sprintf("end %d > data_size %d", end, dataSize),
			}
		}

		want := int64(dt.Size())
		for _, dim := range info.Shape {
			if dim <= 0 {
				return &ValidationError{Err: ErrSizeMismatch, Tensor: name, Details: fmt.Sprintf("shape %v", info.Shape)}
			}
			want *= dim
		}
		if end-start != want {
			return &ValidationError{
				Err:     ErrSizeMismatch,
				Tensor:  name,
				Details: fmt.Sprintf("%d bytes for shape %v of %s, want %d", end-start, info.Shape, info.DType, want),
			}
		}
		spans = append(spans, span{name: name, start: start, end: end})
	}

	slices.SortFunc(spans, func(a, b span) int {
		return cmp.Or(cmp.Compare(a.start, b.start), strings.Compare(a.name, b.name))
	})
	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if prev.end > cur.start {
			return &ValidationError{
				Err:     ErrOffsetOverlap,
				Tensor:  prev.name,
				Tensor2: cur.name,
				Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap", prev.start, prev.end, cur.start, cur.end),
			}
		}
	}
	return nil
}

// ValidateTensorName rejects empty, oversized and NUL-containing names.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Err: ErrInvalidTensorName, Details: "empty name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{
			Err:     ErrInvalidTensorName,
			Tensor:  name[:64],
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	case strings.Contains(name, "\x00"):
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Details: "contains null byte"}
	case name == metadataKey:
		return &ValidationError{Err: ErrInvalidTensorName, Tensor: name, Details: "reserved name"}
	}
	return nil
}
