package commands

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/cgim/ledger-sheets/tsv"
)

var GetCmd = Get{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		debug:       false,
	},

	file: time.Now().Format("ledger-2006-01-02T150405.tsv"),
}

type Get struct {
	command
	file string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the ledger entries and stores them to a local TSV file"
}

func (cmd *Get) Usage() string {
	return "--file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] get [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the ledger entries to a TSV file. The file can be edited and uploaded with 'put'.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug get --credentials "credentials.json" --file "ledger.tsv"`+"\n", APP)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to 'ledger-<yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	options := args[0].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	// ... check parameters
	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	ctx, cancel := cmd.context(conf)
	defer cancel()

	l, _, err := cmd.connect(ctx, conf)
	if err != nil {
		return err
	}

	table, err := l.FetchAll(ctx)
	if err != nil {
		return err
	}

	if conf.Ledger.CheckRevision {
		if revision, err := l.Revision(ctx); err != nil {
			return err
		} else {
			infof("ledger revision %v (put --revision %v fails if the ledger has been modified in the meantime)", revision, revision)
		}
	}

	if err := tsv.Save(cmd.file, table); err != nil {
		return err
	}

	infof("retrieved %v ledger entries to file %s", len(table.Records), cmd.file)

	return nil
}
