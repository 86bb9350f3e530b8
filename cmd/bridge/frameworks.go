package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/born-ml/bridge/internal/dlpack"
	"github.com/born-ml/bridge/internal/framework"
	"github.com/born-ml/bridge/internal/gpuarray"
	"github.com/born-ml/bridge/internal/ndarray"
	"github.com/born-ml/bridge/internal/tensor"
	"github.com/spf13/cobra"
	gorgonia "gorgonia.org/tensor"
)

// nativeTypes maps each framework to a typed nil of its native type.
var nativeTypes = map[framework.ID]any{
	framework.NDArray:  (*ndarray.Array)(nil),
	framework.WebGPU:   (*gpuarray.Array)(nil),
	framework.Tensor:   (*tensor.Tensor)(nil),
	framework.Gorgonia: (*gorgonia.Dense)(nil),
}

func newFrameworksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "frameworks",
		Short: "List supported frameworks and their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listFrameworks(cmd.OutOrStdout(), a)
		},
	}
}

func listFrameworks(w io.Writer, a *app) error {
	fmt.Fprintln(w, TitleStyle.Render("Frameworks"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s%s%s%s\n",
		cell(SubtitleStyle, "NAME", 10),
		cell(SubtitleStyle, "TYPE", 26),
		cell(SubtitleStyle, "CLASS", 7),
		cell(SubtitleStyle, "CAPSULE", 9),
		SubtitleStyle.Render("STATUS"))

	for _, id := range framework.All() {
		class := "CPU"
		if id.IsGPU() {
			class = "GPU"
		}
		capsule := "no"
		if _, ok := nativeTypes[id].(dlpack.Exporter); ok {
			capsule = "yes"
		}
		fmt.Fprintf(w, "%s%s%s%s%s\n",
			cell(KeyStyle, id.String(), 10),
			cell(SubtitleStyle, fmt.Sprintf("%T", nativeTypes[id]), 26),
			cell(SubtitleStyle, class, 7),
			cell(SubtitleStyle, capsule, 9),
			status(id, a.cfg.DefaultDevice))
	}
	return nil
}

func status(id framework.ID, device int) string {
	switch id {
	case framework.WebGPU:
		dev, err := gpuarray.Open(device)
		if err != nil {
			return WarningStyle.Render("unavailable (no WebGPU adapter)")
		}
		return SuccessStyle.Render("available") + SubtitleStyle.Render(" on "+describe(dev))
	case framework.Tensor:
		if tensor.GPUAvailable() {
			return SuccessStyle.Render("available") + SubtitleStyle.Render(" (GPU)")
		}
		return SuccessStyle.Render("available") + WarningStyle.Render(" (CPU-resident, no GPU)")
	default:
		return SuccessStyle.Render("available")
	}
}

func describe(dev *gpuarray.Device) string {
	info := dev.Info()
	parts := []string{dev.String()}
	for _, s := range []string{info.Vendor, info.Device} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
