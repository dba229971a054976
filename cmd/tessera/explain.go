package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	terrors "github.com/vango-dev/tessera/internal/errors"
)

func explainCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "explain [CODE]",
		Short: "Explain an error code",
		Long: `Print the description and hint registered for an error code.

Examples:
  tessera explain T062
  tessera explain --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list || len(args) == 0 {
				for _, code := range terrors.GetAllCodes() {
					t, _ := terrors.GetTemplate(code)
					fmt.Fprintf(out, "%s  %-10s %s\n", code, t.Category, t.Message)
				}
				return nil
			}

			code := strings.ToUpper(args[0])
			if _, ok := terrors.GetTemplate(code); !ok {
				return terrors.New("T100").
					WithDetail(fmt.Sprintf("%q is not a registered error code.", args[0])).
					WithSuggestion("Run: tessera explain --list")
			}
			fmt.Fprint(out, terrors.New(code).Format())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List every registered code")

	return cmd
}
