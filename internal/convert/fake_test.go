package convert

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/probe"
)

// fakeArray is a host array posing as a buffer on WebGPU device dev. It
// exports device capsules whose handle is the array itself.
type fakeArray struct {
	arr *ndarray.Array
	dev framework.Device
	// host makes the array report host memory.
	host bool
	// spent makes DLPack hand out an already consumed capsule.
	spent bool
}

func (f *fakeArray) DLPack() (*dlpack.Capsule, error) {
	c := dlpack.NewCapsule(&dlpack.Tensor{
		Device: f.DLPackDevice(),
		DType:  f.arr.DType().DLPack(),
		Shape:  f.arr.Shape().Int64(),
		Handle: f.arr,
	}, nil)
	if f.spent {
		_, _ = c.Consume()
	}
	return c, nil
}

func (f *fakeArray) DLPackDevice() dlpack.Device {
	if f.host {
		return dlpack.Device{Type: dlpack.CPU}
	}
	return dlpack.Device{Type: dlpack.WebGPU, ID: int(f.dev)}
}

type alphaArray struct{ fakeArray }

type betaArray struct{ fakeArray }

type gammaArray struct{ fakeArray }

// deltaArray cannot export capsules.
type deltaArray struct {
	arr *ndarray.Array
	dev framework.Device
}

func makeFake(id framework.ID, arr *ndarray.Array, dev framework.Device) Value {
	switch id {
	case framework.NDArray:
		return &alphaArray{fakeArray{arr: arr, dev: dev}}
	case framework.WebGPU:
		return &betaArray{fakeArray{arr: arr, dev: dev}}
	case framework.Tensor:
		return &gammaArray{fakeArray{arr: arr, dev: dev}}
	default:
		return &deltaArray{arr: arr, dev: dev}
	}
}

func unwrapFake(v Value) (*ndarray.Array, framework.Device, bool) {
	switch x := v.(type) {
	case *alphaArray:
		return x.arr, x.dev, true
	case *betaArray:
		return x.arr, x.dev, true
	case *gammaArray:
		return x.arr, x.dev, true
	case *deltaArray:
		return x.arr, x.dev, true
	default:
		return nil, 0, false
	}
}

// fakeConverter serves one fake framework and counts which primitives ran.
type fakeConverter struct {
	id framework.ID

	capsuleErr   error
	capsulePanic bool
	toHostErr    error

	capsuleImports atomic.Int32
	hostImports    atomic.Int32
	moves          atomic.Int32
}

func (c *fakeConverter) Framework() framework.ID { return c.id }

func (c *fakeConverter) ToHost(v Value, _ framework.Device) (*ndarray.Array, error) {
	if c.toHostErr != nil {
		return nil, c.toHostErr
	}
	arr, _, ok := unwrapFake(v)
	if !ok {
		return nil, fmt.Errorf("fake %s: unexpected %T", c.id, v)
	}
	return arr.Clone(), nil
}

func (c *fakeConverter) FromHost(a *ndarray.Array, dev framework.Device) (Value, error) {
	c.hostImports.Add(1)
	return makeFake(c.id, a.Clone(), dev), nil
}

func (c *fakeConverter) FromCapsule(capsule *dlpack.Capsule, dev framework.Device) (Value, error) {
	if c.capsulePanic {
		panic("fake capsule import")
	}
	if c.capsuleErr != nil {
		return nil, c.capsuleErr
	}
	t, err := capsule.Consume()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrZeroCopyUnsupported, err)
	}
	arr, ok := t.Handle.(*ndarray.Array)
	if !ok {
		return nil, fmt.Errorf("%w: handle %T", ErrZeroCopyUnsupported, t.Handle)
	}
	c.capsuleImports.Add(1)
	return makeFake(c.id, arr.Clone(), dev), nil
}

func (c *fakeConverter) MoveToDevice(v Value, dev framework.Device) (Value, error) {
	c.moves.Add(1)
	arr, cur, ok := unwrapFake(v)
	if !ok {
		return nil, errors.New("fake: foreign value")
	}
	if cur == dev {
		return v, nil
	}
	return makeFake(c.id, arr, dev), nil
}

func newFakes() []*fakeConverter {
	out := make([]*fakeConverter, 0, framework.Count())
	for _, id := range framework.All() {
		out = append(out, &fakeConverter{id: id})
	}
	return out
}

func asConverters(fakes []*fakeConverter) []Converter {
	out := make([]Converter, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}

func mustSignature(id framework.ID, sample any) probe.Signature {
	sig, err := probe.SignatureOf(id, sample)
	if err != nil {
		panic(err)
	}
	return sig
}

func fakeProbe() *probe.Probe {
	return probe.New(
		mustSignature(framework.NDArray, (*alphaArray)(nil)),
		mustSignature(framework.WebGPU, (*betaArray)(nil)),
		mustSignature(framework.Tensor, (*gammaArray)(nil)),
		mustSignature(framework.Gorgonia, (*deltaArray)(nil)),
	)
}
