package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	terrors "github.com/vango-dev/tessera/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗┌─┐┌─┐┌─┐┌─┐┬─┐┌─┐
   ║ ├┤ └─┐└─┐├┤ ├┬┘├─┤
   ╩ └─┘└─┘└─┘└─┘┴└─┴ ┴
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		terrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tessera",
		Short: "Server-side component UI over WebSocket",
		Long: `Tessera keeps a component tree on the server and mirrors it to a
thin client over a WebSocket.

The server paints only what changed since the last synchronization
and applies variable changes sent back by the client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		inspectCmd(),
		explainCmd(),
		versionCmd(),
	)
	return root
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}
