package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cgim/ledger-sheets/export"
)

var ExportCmd = Export{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		debug:       false,
	},

	file: time.Now().Format("ledger-2006-01-02T150405.xlsx"),
}

type Export struct {
	command
	file string
}

func (cmd *Export) Name() string {
	return "export"
}

func (cmd *Export) Description() string {
	return "Exports the ledger entries to an Excel workbook"
}

func (cmd *Export) Usage() string {
	return "--file <file>"
}

func (cmd *Export) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] export [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Exports the ledger entries to an XLSX workbook")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s export --credentials "credentials.json" --file "ledger.xlsx"`+"\n", APP)
	fmt.Println()
}

func (cmd *Export) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("export")

	flagset.StringVar(&cmd.file, "file", cmd.file, "XLSX file name. Defaults to 'ledger-<yyyy-mm-ddTHHmmss>.xlsx'")

	return flagset
}

func (cmd *Export) Execute(args ...any) error {
	options := args[0].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	ctx, cancel := cmd.context(conf)
	defer cancel()

	l, sheet, err := cmd.connect(ctx, conf)
	if err != nil {
		return err
	}

	table, err := l.FetchAll(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.xlsx")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := export.XLSX(tmp, sheet.Title(), table); err != nil {
		return fmt.Errorf("error creating XLSX file (%w)", err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	infof("exported %v ledger entries to %v", len(table.Records), cmd.file)

	return nil
}
