package convert

import (
	"fmt"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/probe"
	"github.com/charmbracelet/log"
)

// routeKey identifies an ordered (source, target) pair.
type routeKey struct {
	source framework.ID
	target framework.ID
}

// route binds the primitives a conversion from source to target needs.
type route struct {
	source framework.ID
	target framework.ID

	toHost      func(Value, framework.Device) (*ndarray.Array, error)
	fromHost    func(*ndarray.Array, framework.Device) (Value, error)
	fromCapsule func(*dlpack.Capsule, framework.Device) (Value, error)
	move        func(Value, framework.Device) (Value, error)
}

// Route is the public description of one route.
type Route struct {
	Source framework.ID
	Target framework.ID
}

// Registry holds the validated conversion matrix. It is immutable after Init
// and safe for concurrent use.
type Registry struct {
	converters map[framework.ID]Converter
	routes     map[routeKey]route

	probe    *probe.Probe
	logger   *log.Logger
	zeroCopy bool
	device   framework.Device
}

// Init registers converters, builds every route and validates the matrix.
// It fails with a *RegistryIntegrityError when any framework of the closed
// set lacks a converter or a route.
func Init(converters []Converter, opts ...Option) (*Registry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	byID := make(map[framework.ID]Converter, len(converters))
	for i, c := range converters {
		if c == nil {
			return nil, &RegistryIntegrityError{Framework: framework.ID(255), Missing: fmt.Sprintf("nil converter at position %d", i)}
		}
		id := c.Framework()
		if !id.Valid() {
			return nil, &RegistryIntegrityError{Framework: id, Missing: "converter reports a framework outside the closed set"}
		}
		if _, dup := byID[id]; dup {
			return nil, &RegistryIntegrityError{Framework: id, Missing: "duplicate converter registration"}
		}
		byID[id] = c
	}

	routes := buildRoutes(framework.All(), byID)
	if err := validate(framework.All(), byID, routes); err != nil {
		return nil, err
	}

	o.logger.Debug("conversion registry ready", "converters", len(byID), "routes", len(routes))

	return &Registry{
		converters: byID,
		routes:     routes,
		probe:      o.probe,
		logger:     o.logger,
		zeroCopy:   o.zeroCopy,
		device:     o.device,
	}, nil
}

// MustInit is like Init but panics on an integrity error.
func MustInit(converters []Converter, opts ...Option) *Registry {
	r, err := Init(converters, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// buildRoutes binds the primitives of every (source, target) pair for which
// both converters exist. Missing converters leave holes for validate to find.
func buildRoutes(ids []framework.ID, converters map[framework.ID]Converter) map[routeKey]route {
	routes := make(map[routeKey]route, len(ids)*len(ids))
	for _, src := range ids {
		from, ok := converters[src]
		if !ok || from == nil {
			continue
		}
		for _, tgt := range ids {
			to, ok := converters[tgt]
			if !ok || to == nil {
				continue
			}
			routes[routeKey{src, tgt}] = route{
				source:      src,
				target:      tgt,
				toHost:      from.ToHost,
				fromHost:    to.FromHost,
				fromCapsule: to.FromCapsule,
				move:        to.MoveToDevice,
			}
		}
	}
	return routes
}

// Converter returns the converter registered for id.
func (r *Registry) Converter(id framework.ID) (Converter, bool) {
	c, ok := r.converters[id]
	return c, ok
}

// Probe returns the probe used for detection.
func (r *Registry) Probe() *probe.Probe {
	return r.probe
}

// Device returns the device Convert places values on.
func (r *Registry) Device() framework.Device {
	return r.device
}

// ZeroCopy reports whether the capsule path is enabled.
func (r *Registry) ZeroCopy() bool {
	return r.zeroCopy
}

// Detect returns the framework that produced value.
func (r *Registry) Detect(value Value) (framework.ID, error) {
	return r.probe.Detect(value)
}

// HasRoute reports whether a route from source to target is registered.
func (r *Registry) HasRoute(source, target framework.ID) bool {
	_, ok := r.routes[routeKey{source, target}]
	return ok
}

// Routes returns every route in canonical (source, target) order.
func (r *Registry) Routes() []Route {
	out := make([]Route, 0, len(r.routes))
	for _, src := range framework.All() {
		for _, tgt := range framework.All() {
			if r.HasRoute(src, tgt) {
				out = append(out, Route{Source: src, Target: tgt})
			}
		}
	}
	return out
}
