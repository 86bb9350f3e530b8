package main

import (
	"fmt"
	"strings"

	"github.com/born-ml/bridge/internal/convert"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/serialization"
	"github.com/born-ml/bridge/internal/stack"
	"github.com/spf13/cobra"
)

type stackFlags struct {
	out  string
	name string
	via  string
}

func newStackCommand(a *app) *cobra.Command {
	var f stackFlags
	cmd := &cobra.Command{
		Use:   "stack <in.safetensors>",
		Short: "Stack every 2-D array of a file into one 3-D array",
		Long: `Stack every 2-D array of a SafeTensors file, in name order, into one
3-D array and write it to --out. With --via the slices are first converted
into that framework, so the stack runs on mixed inputs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStack(cmd, a, args[0], f)
		},
	}
	cmd.Flags().StringVar(&f.out, "out", "", "output file")
	cmd.Flags().StringVar(&f.name, "name", "volume", "name of the stacked array")
	cmd.Flags().StringVar(&f.via, "via", "", "convert slices into this framework before stacking")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runStack(cmd *cobra.Command, a *app, path string, f stackFlags) error {
	reg, err := a.registry(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	file, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return err
	}

	via := framework.NDArray
	if f.via != "" {
		if via, err = framework.ParseID(f.via); err != nil {
			return err
		}
	}

	var names []string
	var slices []convert.Value
	for _, name := range file.Names() {
		arr := file.Arrays[name]
		if len(arr.Shape()) != 2 {
			continue
		}
		v, err := reg.Convert(arr, via)
		if err != nil {
			return err
		}
		defer release(v)
		names = append(names, name)
		slices = append(slices, v)
	}

	volume, err := stack.StackAs(reg, slices, framework.NDArray, reg.Device())
	if err != nil {
		return err
	}
	host := volume.(*ndarray.Array)

	meta := map[string]string{"bridge.stacked_from": strings.Join(names, ",")}
	if err := serialization.WriteSafeTensors(f.out, map[string]*ndarray.Array{f.name: host}, meta); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d slices into %s %v -> %s\n",
		SuccessStyle.Render("stacked"), len(slices), KeyStyle.Render(f.name), host.Shape(), f.out)
	return nil
}
