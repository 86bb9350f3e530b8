package main

import (
	"fmt"
	"io"

	"github.com/born-ml/bridge/internal/framework"
	"github.com/spf13/cobra"
)

func newMatrixCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Validate the registry and print the conversion matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("registry invalid"))
				return err
			}
			printMatrix(cmd.OutOrStdout(), reg.HasRoute, len(reg.Routes()))
			return nil
		},
	}
}

func printMatrix(w io.Writer, hasRoute func(source, target framework.ID) bool, routes int) {
	const width = 10
	ids := framework.All()

	fmt.Fprintln(w, TitleStyle.Render("Conversion matrix")+SubtitleStyle.Render(" (source \\ target)"))
	fmt.Fprintln(w)
	fmt.Fprint(w, cell(SubtitleStyle, "", width))
	for _, tgt := range ids {
		fmt.Fprint(w, cell(KeyStyle, tgt.String(), width))
	}
	fmt.Fprintln(w)

	for _, src := range ids {
		fmt.Fprint(w, cell(KeyStyle, src.String(), width))
		for _, tgt := range ids {
			switch {
			case !hasRoute(src, tgt):
				fmt.Fprint(w, cell(ErrorStyle, "x", width))
			case src == tgt:
				fmt.Fprint(w, cell(SubtitleStyle, "move", width))
			default:
				fmt.Fprint(w, cell(SuccessStyle, "ok", width))
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d of %d routes\n", SuccessStyle.Render("valid:"), routes, len(ids)*len(ids))
}
