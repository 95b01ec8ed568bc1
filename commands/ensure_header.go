package commands

import (
	"flag"
	"fmt"
)

var EnsureHeaderCmd = EnsureHeader{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		debug:       false,
	},
}

type EnsureHeader struct {
	command
}

func (cmd *EnsureHeader) Name() string {
	return "ensure-header"
}

func (cmd *EnsureHeader) Description() string {
	return "Restores the ledger header row and removes a duplicated header"
}

func (cmd *EnsureHeader) Usage() string {
	return "[--credentials <file>]"
}

func (cmd *EnsureHeader) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] ensure-header [options]\n", APP)
	fmt.Println()
	fmt.Println("  Inserts the ledger header at row 1 if it is missing or does not match the configured header,")
	fmt.Println("  emphasises it and deletes a duplicate header row immediately after it.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s --debug ensure-header --credentials \"credentials.json\"\n", APP)
	fmt.Println()
}

func (cmd *EnsureHeader) FlagSet() *flag.FlagSet {
	return cmd.flagset("ensure-header")
}

func (cmd *EnsureHeader) Execute(args ...any) error {
	options := args[0].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	ctx, cancel := cmd.context(conf)
	defer cancel()

	l, sheet, err := cmd.connect(ctx, conf)
	if err != nil {
		return err
	}

	if err := l.EnsureHeader(ctx); err != nil {
		return err
	}

	infof("ledger header verified for worksheet '%v'", sheet.Title())

	return nil
}
