package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the version of the stakedash CLI and build information.",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			if jsonOutput() {
				_ = printJSON(w, map[string]string{
					"version":    GetVersion(),
					"commit":     GetCommit(),
					"build_date": BuildDate,
					"go_version": GetGoVersion(),
					"platform":   runtime.GOOS + "/" + runtime.GOARCH,
				})
				return
			}
			fmt.Fprintln(w, "stakedash CLI")
			fmt.Fprintln(w, "=============")
			fmt.Fprintf(w, "Version:    %s\n", GetVersion())
			fmt.Fprintf(w, "Commit:     %s\n", GetCommit())
			fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(w, "Go Version: %s\n", GetGoVersion())
			fmt.Fprintf(w, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
