package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cgim/ledger-sheets/tsv"
)

var PutCmd = Put{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		debug:       false,
	},

	file:     "",
	revision: "",
	backup:   true,
}

type Put struct {
	command
	file     string
	revision string
	backup   bool
}

func (cmd *Put) Name() string {
	return "put"
}

func (cmd *Put) Description() string {
	return "Replaces the ledger entries with the contents of an edited TSV file"
}

func (cmd *Put) Usage() string {
	return "--file <file>"
}

func (cmd *Put) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] put [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Uploads an edited TSV file (e.g. retrieved with 'get') and replaces the ledger entries with its")
	fmt.Println("  rows. Summaries are recomputed, blank rows are dropped and the current ledger is backed up to")
	fmt.Println("  <workdir>/backups before it is modified.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug put --credentials "credentials.json" --file "ledger.tsv"`+"\n", APP)
	fmt.Println()
}

func (cmd *Put) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("put")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file")
	flagset.StringVar(&cmd.revision, "revision", cmd.revision, "Ledger revision reported by 'get'. The update is rejected if the ledger has since been modified")
	flagset.BoolVar(&cmd.backup, "backup", cmd.backup, "Backs up the ledger to the working directory before updating it")

	return flagset
}

func (cmd *Put) Execute(args ...any) error {
	options := args[0].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	// ... check parameters
	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	if cmd.revision != "" && !conf.Ledger.CheckRevision {
		return fmt.Errorf("--revision requires 'ledger.check-revision' to be enabled in the configuration")
	}

	f, err := os.Open(cmd.file)
	if err != nil {
		return err
	}

	defer f.Close()

	table, err := tsv.Read(f)
	if err != nil {
		return fmt.Errorf("invalid TSV file (%w)", err)
	}

	ctx, cancel := cmd.context(conf)
	defer cancel()

	l, sheet, err := cmd.connect(ctx, conf)
	if err != nil {
		return err
	}

	if cmd.backup {
		l.SetBackup(tsv.Backup(filepath.Join(cmd.workdir, "backups")))
	}

	if err := l.Reconcile(ctx, table, cmd.revision); err != nil {
		return err
	}

	infof("uploaded TSV file %v to worksheet '%v'", cmd.file, sheet.Title())

	return nil
}
