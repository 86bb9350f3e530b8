package convert

import (
	"fmt"

	"github.com/born-ml/bridge/internal/framework"
)

// validate checks that every framework in ids has a well-formed converter and
// that all len(ids)^2 routes exist with every primitive bound. It returns the
// first hole found, in canonical order.
func validate(ids []framework.ID, converters map[framework.ID]Converter, routes map[routeKey]route) error {
	for _, id := range ids {
		c, ok := converters[id]
		if !ok {
			return &RegistryIntegrityError{Framework: id, Missing: "no converter registered"}
		}
		if c == nil {
			return &RegistryIntegrityError{Framework: id, Missing: "converter is nil"}
		}
		if got := c.Framework(); got != id {
			return &RegistryIntegrityError{Framework: id, Missing: fmt.Sprintf("converter reports framework %s", got)}
		}
	}

	for _, src := range ids {
		for _, tgt := range ids {
			rt, ok := routes[routeKey{src, tgt}]
			if !ok {
				return &RegistryIntegrityError{Framework: src, Missing: fmt.Sprintf("no route to %s", tgt)}
			}
			if rt.source != src || rt.target != tgt {
				return &RegistryIntegrityError{Framework: src, Missing: fmt.Sprintf("route to %s is bound to %s -> %s", tgt, rt.source, rt.target)}
			}
			switch {
			case rt.toHost == nil:
				return &RegistryIntegrityError{Framework: src, Missing: fmt.Sprintf("route to %s lacks to_common_format", tgt)}
			case rt.fromHost == nil:
				return &RegistryIntegrityError{Framework: tgt, Missing: fmt.Sprintf("route from %s lacks from_common_format", src)}
			case rt.fromCapsule == nil:
				return &RegistryIntegrityError{Framework: tgt, Missing: fmt.Sprintf("route from %s lacks from_zero_copy_capsule", src)}
			case rt.move == nil:
				return &RegistryIntegrityError{Framework: tgt, Missing: fmt.Sprintf("route from %s lacks move_to_device", src)}
			}
		}
	}
	return nil
}
