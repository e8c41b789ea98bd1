// Package cli is the marketplace-init command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dalemusser/marketplace-init/app"
	"github.com/dalemusser/marketplace-init/config"
	"github.com/dalemusser/marketplace-init/internal/app/bootstrap"
	"github.com/dalemusser/marketplace-init/internal/schema"
	"github.com/dalemusser/marketplace-init/version"
)

// Run is the entrypoint used by main.
//
// binName is the CLI name to show in help/usage text.
// args are the command-line arguments excluding the binary name (i.e. os.Args[1:]).
// With no command, init runs, so the binary can be dropped into a container
// startup hook as-is.
//
// It returns a process exit code; callers should os.Exit(Run(...)).
func Run(binName string, args []string, stdout, stderr io.Writer) int {
	cmd := "init"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "init":
		fs := newFlagSet(binName, cmd, stderr)
		return exitCode(app.Run(context.Background(), bootstrap.InitHooks(fs, args, stdout)))
	case "verify":
		fs := newFlagSet(binName, cmd, stderr)
		return exitCode(app.Run(context.Background(), bootstrap.VerifyHooks(fs, args, stdout)))
	case "plan":
		return planCmd(binName, args, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "%s %s\n", binName, version.Long())
		return 0
	case "help":
		usage(binName, stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %q\n\n", cmd)
		usage(binName, stderr)
		return 2
	}
}

func usage(binName string, w io.Writer) {
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s [init] [flags]     create collections and indexes (default)\n", binName)
	fmt.Fprintf(w, "  %s verify [flags]     check a database against the plan\n", binName)
	fmt.Fprintf(w, "  %s plan [--format]    print the collections and indexes\n", binName)
	fmt.Fprintf(w, "  %s version            print build information\n", binName)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run \"%s <command> --help\" for the flags of a command.\n", binName)
	fmt.Fprintf(w, "Every flag can also be set as %s_<FLAG> in the environment or in config.yaml.\n", config.EnvPrefix)
}

func newFlagSet(binName, cmd string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s %s [flags]\n", binName, cmd)
		fs.PrintDefaults()
	}
	return fs
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pflag.ErrHelp):
		return 0
	default:
		return 1
	}
}

func planCmd(binName string, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(binName, "plan", stderr)
	format := fs.String("format", "yaml", "Output format: yaml or json")
	database := fs.String("mongo_database", schema.DefaultDatabase, "Database name to show in the plan")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := schema.Marketplace(*database).Render(stdout, *format); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
