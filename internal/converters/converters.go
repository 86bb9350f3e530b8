// Package converters implements convert.Converter for every supported framework.
package converters

import (
	"fmt"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/framework"
)

// All returns one converter per framework, in canonical order.
func All() []convert.Converter {
	return []convert.Converter{
		NDArray(),
		WebGPU(),
		Tensor(),
		Gorgonia(),
	}
}

// unexpected reports a value of the wrong type handed to a converter.
func unexpected(id framework.ID, v convert.Value) error {
	return fmt.Errorf("%s converter: unexpected value of type %T", id, v)
}

// unsupported wraps a capsule rejection so the dispatcher falls back.
func unsupported(id framework.ID, err error) error {
	return fmt.Errorf("%s converter: %w: %w", id, convert.ErrZeroCopyUnsupported, err)
}
