package convert

import (
	"errors"
	"testing"

	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireIntegrity(t *testing.T, err error, id framework.ID) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistryIntegrity))

	var rie *RegistryIntegrityError
	require.ErrorAs(t, err, &rie)
	assert.Equal(t, id, rie.Framework)
}

func TestInitMissingConverter(t *testing.T) {
	fakes := newFakes()
	convs := asConverters(fakes)
	convs = append(convs[:2], convs[3:]...) // drop tensor

	_, err := Init(convs, WithLogger(logging.Discard()))
	requireIntegrity(t, err, framework.Tensor)
}

func TestInitNilConverter(t *testing.T) {
	convs := append(asConverters(newFakes()), nil)
	_, err := Init(convs, WithLogger(logging.Discard()))
	require.ErrorIs(t, err, ErrRegistryIntegrity)
}

func TestInitDuplicateConverter(t *testing.T) {
	convs := append(asConverters(newFakes()), &fakeConverter{id: framework.WebGPU})
	_, err := Init(convs, WithLogger(logging.Discard()))
	requireIntegrity(t, err, framework.WebGPU)
}

func TestInitOutOfSetConverter(t *testing.T) {
	convs := append(asConverters(newFakes()), &fakeConverter{id: framework.ID(200)})
	_, err := Init(convs, WithLogger(logging.Discard()))
	require.ErrorIs(t, err, ErrRegistryIntegrity)
}

func TestMustInitPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustInit(nil, WithLogger(logging.Discard()))
	})
	assert.NotPanics(t, func() {
		MustInit(asConverters(newFakes()), WithLogger(logging.Discard()), WithProbe(fakeProbe()))
	})
}

func fullTables() (map[framework.ID]Converter, map[routeKey]route) {
	byID := map[framework.ID]Converter{}
	for _, f := range newFakes() {
		byID[f.id] = f
	}
	return byID, buildRoutes(framework.All(), byID)
}

func TestValidateComplete(t *testing.T) {
	byID, routes := fullTables()
	assert.NoError(t, validate(framework.All(), byID, routes))
}

func TestValidateWrongIdentity(t *testing.T) {
	byID, routes := fullTables()
	byID[framework.Gorgonia] = &fakeConverter{id: framework.NDArray}

	requireIntegrity(t, validate(framework.All(), byID, routes), framework.Gorgonia)
}

func TestValidateNilEntry(t *testing.T) {
	byID, routes := fullTables()
	byID[framework.NDArray] = nil

	requireIntegrity(t, validate(framework.All(), byID, routes), framework.NDArray)
}

func TestValidateMissingRoute(t *testing.T) {
	byID, routes := fullTables()
	delete(routes, routeKey{framework.WebGPU, framework.Gorgonia})

	err := validate(framework.All(), byID, routes)
	requireIntegrity(t, err, framework.WebGPU)
	assert.Contains(t, err.Error(), "no route to gorgonia")
}

func TestValidateUnboundPrimitive(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*route)
		blame  framework.ID
	}{
		{"to host", func(r *route) { r.toHost = nil }, framework.Tensor},
		{"from host", func(r *route) { r.fromHost = nil }, framework.NDArray},
		{"from capsule", func(r *route) { r.fromCapsule = nil }, framework.NDArray},
		{"move", func(r *route) { r.move = nil }, framework.NDArray},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			byID, routes := fullTables()
			key := routeKey{framework.Tensor, framework.NDArray}
			rt := routes[key]
			tc.mutate(&rt)
			routes[key] = rt

			requireIntegrity(t, validate(framework.All(), byID, routes), tc.blame)
		})
	}
}

func TestValidateMisboundRoute(t *testing.T) {
	byID, routes := fullTables()
	key := routeKey{framework.NDArray, framework.WebGPU}
	routes[key] = routes[routeKey{framework.NDArray, framework.Tensor}]

	requireIntegrity(t, validate(framework.All(), byID, routes), framework.NDArray)
}
