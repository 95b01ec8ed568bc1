package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/cgim/ledger-sheets/config"
	"github.com/cgim/ledger-sheets/credentials"
	"github.com/cgim/ledger-sheets/ledger"
	"github.com/cgim/ledger-sheets/log"
	"github.com/cgim/ledger-sheets/store"
)

const APP = "ledger-sheets"

type Options struct {
	Config string
	Debug  bool
}

// command holds the options common to every command that accesses the ledger.
type command struct {
	workdir     string
	credentials string
	tokens      string
	debug       bool
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (tokens, backups, etc)")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the 'credentials.json' file")
	flagset.StringVar(&c.tokens, "tokens", c.tokens, "Path for the OAuth2 tokens file. Defaults to <workdir>/<credentials>.tokens")

	return flagset
}

// configure loads the configuration and applies the log settings. A missing default
// configuration file is not an error.
func (c *command) configure(options *Options) (*config.Config, error) {
	c.debug = options.Debug

	conf, err := config.Load(options.Config, options.Config != DEFAULT_CONFIG)
	if err != nil {
		return nil, err
	}

	if err := log.SetLevel(conf.Log.Level); err != nil {
		return nil, fmt.Errorf("invalid log level (%w)", err)
	}

	if err := log.SetFormat(conf.Log.Format); err != nil {
		return nil, err
	}

	log.SetDebug(c.debug)

	return conf, nil
}

func (c *command) tokensFile() string {
	if strings.TrimSpace(c.tokens) != "" {
		return c.tokens
	}

	return credentials.TokensFile(c.credentials, c.workdir)
}

// connect resolves the Google credentials and opens the configured ledger worksheet.
func (c *command) connect(ctx context.Context, conf *config.Config) (*ledger.Ledger, *store.Sheet, error) {
	debugf("spreadsheet ID:%v  worksheet:%q", conf.Ledger.Spreadsheet, conf.Ledger.Worksheet)

	// the token source refreshes tokens for as long as the client is in use
	client, err := conf.Providers(c.credentials, c.tokensFile()).Client(context.Background(), conf.Scopes()...)
	if err != nil {
		return nil, nil, fmt.Errorf("authentication/authorization error (%w)", err)
	}

	sheet, err := store.Open(ctx, client, conf.Ledger.Spreadsheet, conf.Ledger.Worksheet, conf.Ledger.CheckRevision)
	if err != nil {
		return nil, nil, err
	}

	debugf("opened worksheet '%v' (%v)", sheet.Title(), sheet.URL())

	l, err := ledger.New(sheet, conf.Options())
	if err != nil {
		return nil, nil, err
	}

	return l, sheet, nil
}

// context returns a context bounded by the configured ledger timeout.
func (c *command) context(conf *config.Config) (context.Context, context.CancelFunc) {
	if conf.Ledger.Timeout > 0 {
		return context.WithTimeout(context.Background(), conf.Ledger.Timeout)
	}

	return context.WithCancel(context.Background())
}

func helpOptions(flagset *flag.FlagSet) {
	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	fmt.Println()
	fmt.Println("  Options:")
	fmt.Println()
	fmt.Printf("    --config  Configuration file. Defaults to %v\n", DEFAULT_CONFIG)
	fmt.Println("    --debug   Displays internal information for diagnosing errors")
}

func debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

func infof(format string, args ...any) {
	log.Infof(format, args...)
}

func warnf(format string, args ...any) {
	log.Warnf(format, args...)
}
