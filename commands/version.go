package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
)

const VERSION = "v0.1.0"

var VersionCmd = Version{}

// Version displays the ledger-sheets version and, with --verbose, the Go runtime and
// the versions of the Google API and storage modules the binary was built with.
type Version struct {
	verbose bool
}

func (cmd *Version) Name() string {
	return "version"
}

func (cmd *Version) Description() string {
	return "Displays the current version"
}

func (cmd *Version) Usage() string {
	return "[--verbose]"
}

func (cmd *Version) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s version [--verbose]\n", APP)
	fmt.Println()
	fmt.Printf("  Displays the %v version in the format v<major>.<minor>.<build> e.g. %v\n", APP, VERSION)
	fmt.Println()
	fmt.Println("    --verbose  Also lists the Go version and the main module dependencies")
	fmt.Println()
}

func (cmd *Version) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("version", flag.ExitOnError)

	flagset.BoolVar(&cmd.verbose, "verbose", cmd.verbose, "Lists the Go version and main module dependencies")

	return flagset
}

func (cmd *Version) Execute(args ...any) error {
	cmd.print(os.Stdout)

	return nil
}

func (cmd *Version) print(w io.Writer) {
	fmt.Fprintf(w, "%s\n", VERSION)

	if !cmd.verbose {
		return
	}

	fmt.Fprintf(w, "  %-32s %v\n", "go", runtime.Version())

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if strings.HasPrefix(dep.Path, "google.golang.org/api") || strings.HasPrefix(dep.Path, "github.com/xuri/excelize") || strings.HasPrefix(dep.Path, "github.com/gin-gonic/gin") {
				fmt.Fprintf(w, "  %-32s %v\n", dep.Path, dep.Version)
			}
		}
	}
}
