package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/cgim/ledger-sheets/credentials"
)

var AuthoriseCmd = Authorise{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		tokens:      "",
		debug:       false,
	},

	port:    8085,
	timeout: 5 * time.Minute,
}

type Authorise struct {
	command
	port    uint
	timeout time.Duration
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises ledger-sheets to access the ledger spreadsheet with an OAuth2 client credentials file"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] authorise [options]\n", APP)
	fmt.Println()
	fmt.Println("  Runs the OAuth2 authorisation flow for an OAuth2 client ('installed' application) credentials")
	fmt.Println("  file and saves the authorised tokens to the tokens file. Service account credentials do not")
	fmt.Println("  need to be authorised.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s authorise --credentials \"credentials.json\" --workdir .\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("authorise")

	flagset.UintVar(&cmd.port, "port", cmd.port, "Local port for the OAuth2 redirect")
	flagset.DurationVar(&cmd.timeout, "timeout", cmd.timeout, "Time to wait for the authorisation to complete")

	return flagset
}

func (cmd *Authorise) Execute(args ...any) error {
	options := args[0].(*Options)

	conf, err := cmd.configure(options)
	if err != nil {
		return err
	}

	// ... check parameters
	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	b, err := os.ReadFile(cmd.credentials)
	if err != nil {
		return err
	}

	if !credentials.IsOAuthClient(b) {
		return fmt.Errorf("%v is not an OAuth2 client credentials file - service account credentials do not need to be authorised", cmd.credentials)
	}

	config, err := google.ConfigFromJSON(b, conf.Scopes()...)
	if err != nil {
		return fmt.Errorf("invalid OAuth2 client credentials (%w)", err)
	}

	config.RedirectURL = fmt.Sprintf("http://localhost:%v", cmd.port)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, cmd.timeout)
	defer cancel()

	token, err := cmd.authorise(ctx, config)
	if err != nil {
		return fmt.Errorf("authorisation error (%w)", err)
	}

	tokens := cmd.tokensFile()
	if err := credentials.SaveToken(tokens, token); err != nil {
		return err
	}

	infof("saved OAuth2 tokens to %v", tokens)

	return nil
}

// authorise serves the OAuth2 redirect on localhost and exchanges the returned
// authorisation code for a token.
func (cmd *Authorise) authorise(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	state := uuid.NewString()
	authorised := make(chan string, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, rq *http.Request) {
		debugf("OAuth2 redirect %v", rq.URL.Path)

		if rq.FormValue("state") != state {
			http.Error(w, "Invalid OAuth2 state", http.StatusBadRequest)
			return
		}

		if code := rq.FormValue("code"); code == "" {
			http.Error(w, fmt.Sprintf("Not authorised (%v)", rq.FormValue("error")), http.StatusForbidden)
		} else {
			fmt.Fprintln(w, "ledger-sheets authorised - you can close this window")

			select {
			case authorised <- code:
			default:
			}
		}
	})

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%v", cmd.port))
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			warnf("OAuth2 redirect server (%v)", err)
		}
	}()

	defer func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			warnf("%v", err)
		}
	}()

	url := config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	// ... open OAuth2 URL in browser
	fmt.Printf("\n  Open the following link in your browser to authorise %v:\n\n    %v\n\n", APP, url)

	if err := exec.Command(_browser, url).Start(); err != nil {
		debugf("could not open the authorisation page in a browser (%v)", err)
	}

	// ... wait for authorisation
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("authorisation cancelled (%w)", ctx.Err())

	case code := <-authorised:
		return config.Exchange(ctx, code)
	}
}
