// Package ndarray provides the host-resident dense array used as the common
// interchange format between frameworks.
package ndarray

import (
	"fmt"

	"github.com/born-ml/bridge/internal/dlpack"
)

// DType is a constraint for supported element types.
type DType interface {
	float32 | float64 | int32 | int64 | uint8 | bool
}

// DataType represents runtime element type information.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// DataTypes lists every supported data type.
var DataTypes = []DataType{Float32, Float64, Int32, Int64, Uint8, Bool}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		return 0
	}
}

// Valid reports whether dt is a supported data type.
func (dt DataType) Valid() bool {
	return dt.Size() > 0
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// DLPack returns the capsule element type for dt.
func (dt DataType) DLPack() dlpack.DataType {
	switch dt {
	case Float32:
		return dlpack.DataType{Code: dlpack.Float, Bits: 32, Lanes: 1}
	case Float64:
		return dlpack.DataType{Code: dlpack.Float, Bits: 64, Lanes: 1}
	case Int32:
		return dlpack.DataType{Code: dlpack.Int, Bits: 32, Lanes: 1}
	case Int64:
		return dlpack.DataType{Code: dlpack.Int, Bits: 64, Lanes: 1}
	case Uint8:
		return dlpack.DataType{Code: dlpack.UInt, Bits: 8, Lanes: 1}
	case Bool:
		return dlpack.DataType{Code: dlpack.Bool, Bits: 8, Lanes: 1}
	default:
		return dlpack.DataType{}
	}
}

// DataTypeFromDLPack maps a capsule element type back to a DataType.
func DataTypeFromDLPack(dt dlpack.DataType) (DataType, error) {
	if dt.Lanes > 1 {
		return 0, fmt.Errorf("ndarray: vector dtype %s x%d not supported", dt, dt.Lanes)
	}
	switch {
	case dt.Code == dlpack.Float && dt.Bits == 32:
		return Float32, nil
	case dt.Code == dlpack.Float && dt.Bits == 64:
		return Float64, nil
	case dt.Code == dlpack.Int && dt.Bits == 32:
		return Int32, nil
	case dt.Code == dlpack.Int && dt.Bits == 64:
		return Int64, nil
	case dt.Code == dlpack.UInt && dt.Bits == 8:
		return Uint8, nil
	case dt.Code == dlpack.Bool && dt.Bits == 8:
		return Bool, nil
	default:
		return 0, fmt.Errorf("ndarray: dtype %s not supported", dt)
	}
}

// dataTypeOf infers the DataType of a generic element type.
func dataTypeOf[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
