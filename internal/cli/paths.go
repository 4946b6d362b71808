package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"ctxcat/internal/concat"
	"ctxcat/internal/config"
	"ctxcat/internal/flags"
	"ctxcat/internal/source"
	"ctxcat/internal/textenc"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	pathsCfg   = config.New()
	pathsCheck bool
)

var pathsCmd = &cobra.Command{
	Use:   "paths [paths...]",
	Short: "Print the resolved path list",
	Long: `Print the path list a concat run would use, one path per line, in order.

The list is resolved with the same precedence as concat: positional
arguments, then the manifest "paths" list, then the built-in list.

With --check, every path is also read and decoded from --root and prefixed
with its status (OK, NOT_FOUND, DECODE_ERROR, READ_ERROR). The command then
exits 2 if any path would be replaced by a marker.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := prepareConfig(cmd, pathsCfg, args); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			os.Exit(3)
		}

		paths := pathsCfg.ResolvedPaths()
		if !pathsCheck {
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		code, err := checkPaths(ctx, cmd.OutOrStdout(), pathsCfg, paths)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		if code != 0 {
			os.Exit(code)
		}
	},
}

// checkPaths reads every path from the local root and prints one status line
// per path. It returns 2 if any path failed, 3 on a fatal error.
func checkPaths(ctx context.Context, w io.Writer, c *config.Config, paths []string) (int, error) {
	if !c.Input.Repo.IsZero() {
		return 3, errors.New("--check reads the local disk only; drop --github")
	}
	enc, err := textenc.Lookup(c.Input.Encoding)
	if err != nil {
		return 3, err
	}

	bold := color.New(color.Bold)
	cc := concat.New(source.Dir(c.Input.Root), enc)
	failed := 0
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return 3, err
		}
		e := cc.ReadEntry(ctx, p)
		if e.Failed() {
			failed++
		}
		kindColor(e.Kind).Fprintf(w, "%-15s", "["+string(e.Kind)+"]")
		bold.Fprintf(w, "%s", p)
		fmt.Fprintln(w)
	}

	if failed > 0 {
		fmt.Fprintf(w, "\n%d of %d paths would be replaced by a marker\n", failed, len(paths))
		return 2, nil
	}
	return 0, nil
}

func kindColor(k concat.Kind) *color.Color {
	switch k {
	case concat.KindOK:
		return color.New(color.FgGreen)
	case concat.KindNotFound:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func init() {
	rootCmd.AddCommand(pathsCmd)

	pathsCmd.Flags().StringVarP(&pathsCfg.Input.Manifest, flags.FlagManifest, "m", "", "YAML manifest providing the path list")
	pathsCmd.Flags().StringVarP(&pathsCfg.Input.Root, flags.FlagRoot, "C", config.DefaultRoot, "Base directory for --check")
	pathsCmd.Flags().StringVarP(&pathsCfg.Input.Encoding, flags.FlagEncoding, "e", config.DefaultEncoding, "Text encoding used by --check")
	pathsCmd.Flags().BoolVar(&pathsCheck, flags.FlagCheck, false, "Read every path and print its status")
}
