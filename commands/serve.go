package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cgim/ledger-sheets/web"
)

var ServeCmd = Serve{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		debug:       false,
	},

	bind: "",
}

type Serve struct {
	command
	bind string
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Serves the ledger entry form over HTTP"
}

func (cmd *Serve) Usage() string {
	return "[--bind <address:port>]"
}

func (cmd *Serve) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] serve [options]\n", APP)
	fmt.Println()
	fmt.Println("  Serves the ledger entry form, the editable ledger table and the Excel export over HTTP,")
	fmt.Println("  along with a JSON API at /api/entries.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s serve --credentials "credentials.json" --bind 0.0.0.0:8501`+"\n", APP)
	fmt.Println()
}

func (cmd *Serve) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("serve")

	flagset.StringVar(&cmd.bind, "bind", cmd.bind, "HTTP server address. Defaults to the configured 'server.address'")

	return flagset
}

func (cmd *Serve) Execute(args ...any) error {
	options := args[0].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	address := conf.Server.Address
	if strings.TrimSpace(cmd.bind) != "" {
		address = cmd.bind
	}

	ctx, cancel := cmd.context(conf)
	defer cancel()

	l, sheet, err := cmd.connect(ctx, conf)
	if err != nil {
		return err
	}

	server := web.NewServer(l, web.Options{
		Mode:          conf.Server.Mode,
		Link:          sheet.URL(),
		Timeout:       conf.Ledger.Timeout,
		CheckRevision: conf.Ledger.CheckRevision,
	})

	interrupt, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(interrupt, address)
}
