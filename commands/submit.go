package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/cgim/ledger-sheets/ledger"
	"github.com/cgim/ledger-sheets/store"
)

var SubmitCmd = Submit{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		debug:       false,
	},

	date:   "",
	dryrun: false,
}

type Submit struct {
	command
	author      string
	date        string
	category    string
	description string
	dryrun      bool
}

func (cmd *Submit) Name() string {
	return "submit"
}

func (cmd *Submit) Description() string {
	return "Appends a delivery entry to the ledger"
}

func (cmd *Submit) Usage() string {
	return "--author <name> --category <category> --description <text> [--date <DD/MM/YYYY>]"
}

func (cmd *Submit) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] submit [options] --author <name> --category <category> --description <text>\n", APP)
	fmt.Println()
	fmt.Println("  Validates a delivery entry and appends it to the ledger. The date defaults to today and the")
	fmt.Println("  summary column is derived from the date and description.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s submit --author "Ricardo Zomer" \`+"\n", APP)
	fmt.Println(`                   --date 05/03/2024 \`)
	fmt.Println(`                   --category "Análise de demandas atribuídas à CGIM" \`)
	fmt.Println(`                   --description "Nota técnica sobre ex-tarifários"`)
	fmt.Println()
}

func (cmd *Submit) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("submit")

	flagset.StringVar(&cmd.author, "author", cmd.author, "Name of the person filling in the entry")
	flagset.StringVar(&cmd.date, "date", cmd.date, "Date of the activity (DD/MM/YYYY). Defaults to today")
	flagset.StringVar(&cmd.category, "category", cmd.category, "Delivery type")
	flagset.StringVar(&cmd.description, "description", cmd.description, "Description of the work done")
	flagset.BoolVar(&cmd.dryrun, "dryrun", cmd.dryrun, "Validates the entry and displays the ledger row without updating the ledger")

	return flagset
}

func (cmd *Submit) Execute(args ...any) error {
	options := args[0].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	entry, err := cmd.entry()
	if err != nil {
		return err
	}

	ctx, cancel := cmd.context(conf)
	defer cancel()

	if cmd.dryrun {
		return dryrun(ctx, conf.Options(), entry)
	}

	l, sheet, err := cmd.connect(ctx, conf)
	if err != nil {
		return err
	}

	if err := l.EnsureHeader(ctx); err != nil {
		return err
	}

	if err := l.Submit(ctx, entry); err != nil {
		return err
	}

	infof("entry saved to worksheet '%v'", sheet.Title())

	return nil
}

func (cmd *Submit) entry() (ledger.Entry, error) {
	date := ledger.Today()

	if strings.TrimSpace(cmd.date) != "" {
		d, err := ledger.ParseDate(cmd.date)
		if err != nil {
			return ledger.Entry{}, &ledger.ValidationError{Field: "date", Message: err.Error()}
		}

		date = d
	}

	return ledger.Entry{
		Date:        date,
		Category:    cmd.category,
		Description: cmd.description,
		Author:      cmd.author,
	}, nil
}

// dryrun submits the entry to an in-memory ledger and prints the resulting row.
func dryrun(ctx context.Context, options ledger.Options, entry ledger.Entry) error {
	m := store.NewMemory(options.Header)

	l, err := ledger.New(m, options)
	if err != nil {
		return err
	}

	if err := l.Submit(ctx, entry); err != nil {
		return err
	}

	rows := m.Snapshot()
	fmt.Println(strings.Join(rows[len(rows)-1], "\t"))

	return nil
}
