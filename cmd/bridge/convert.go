package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/serialization"
	"github.com/spf13/cobra"
)

var errRoundTrip = errors.New("round trip changed the array")

type convertFlags struct {
	to     string
	device int
	out    string
}

func newConvertCommand(a *app) *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert <in.safetensors>",
		Short: "Convert every array of a SafeTensors file into a framework",
		Long: `Convert every array of a SafeTensors file into the target framework,
report what the registry detected, convert back to host memory and check
that the values survived. With --out the host arrays are written back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.to, "to", "", "target framework (ndarray, webgpu, tensor, gorgonia)")
	cmd.Flags().IntVar(&f.device, "device", -1, "device index (default from config)")
	cmd.Flags().StringVar(&f.out, "out", "", "write the converted arrays to this file")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runConvert(cmd *cobra.Command, a *app, path string, f convertFlags) error {
	target, err := framework.ParseID(f.to)
	if err != nil {
		return err
	}
	reg, err := a.registry(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	dev := reg.Device()
	if f.device >= 0 {
		dev = framework.Device(f.device)
	}

	file, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s %s %s\n", TitleStyle.Render("Converting"), path, SubtitleStyle.Render("->"), KeyStyle.Render(target.String()))
	fmt.Fprintln(w)

	results := make(map[string]*ndarray.Array, len(file.Arrays))
	for _, name := range file.Names() {
		host, err := convertOne(w, reg, name, file.Arrays[name], target, dev)
		if err != nil {
			fmt.Fprintf(w, "  %s %s: %v\n", ErrorStyle.Render("✗"), name, err)
			return err
		}
		results[name] = host
	}

	if f.out != "" {
		meta := map[string]string{"bridge.target": target.String()}
		for k, v := range file.Metadata {
			meta[k] = v
		}
		if err := serialization.WriteSafeTensors(f.out, results, meta); err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %d arrays to %s\n", SuccessStyle.Render("wrote"), len(results), f.out)
	}
	return nil
}

// convertOne converts a to target and back, reporting the detected framework.
func convertOne(w io.Writer, reg *convert.Registry, name string, a *ndarray.Array, target framework.ID, dev framework.Device) (*ndarray.Array, error) {
	out, err := reg.ConvertOn(a, target, dev)
	if err != nil {
		return nil, err
	}
	defer release(out)

	detected, err := reg.Detect(out)
	if err != nil {
		return nil, err
	}
	back, err := reg.Convert(out, framework.NDArray)
	if err != nil {
		return nil, err
	}
	host, ok := back.(*ndarray.Array)
	if !ok {
		return nil, fmt.Errorf("%s: host conversion produced %T", name, back)
	}
	if !host.Equal(a) {
		return nil, fmt.Errorf("%s: %w", name, errRoundTrip)
	}

	fmt.Fprintf(w, "  %s %s %s %v %s %s\n",
		SuccessStyle.Render("✓"),
		cell(KeyStyle, name, 24),
		SubtitleStyle.Render("shape"), host.Shape(),
		SubtitleStyle.Render(host.DType().String()+" as"),
		detected)
	return host, nil
}

// release frees device storage held by a converted value.
func release(v any) {
	if r, ok := v.(interface{ Release() }); ok {
		r.Release()
	}
}
