// Command fintrack is a terminal front end for the Fintrack API. It mirrors
// the server's transactions locally and renders the dashboard from them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/client"
	"fintrack/internal/config"
	"fintrack/internal/logger"
)

const usage = `usage: fintrack <command> [flags]

commands:
  summary                 dashboard cards, recent activity and top spending
  list                    all transactions, newest first
  add  -amount N -description TEXT [-type income|expense] [-category C] [-date YYYY-MM-DD]
  edit ID [-amount N] [-description TEXT] [-type T] [-category C] [-date D]
  delete ID`

func main() {
	logger.Init(os.Getenv("ENV"), getLogLevel())
	defer logger.Sync()

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func getLogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "warn"
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	api := client.NewClient(cfg.APIURL, cfg.APIKey, &http.Client{Timeout: cfg.Timeout})
	app := &app{ledger: cache.NewLedger(api), out: out, now: time.Now}
	return app.dispatch(ctx, args)
}

type app struct {
	ledger *cache.Ledger
	out    io.Writer
	now    func() time.Time
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	command, rest := args[0], args[1:]
	log := logger.Get()
	log.Debugw("running command", "command", command)

	switch command {
	case "summary":
		if err := a.ledger.Load(ctx); err != nil {
			return err
		}
		renderSummary(a.out, a.ledger.Summary(a.now()))

	case "list":
		if err := a.ledger.Load(ctx); err != nil {
			return err
		}
		renderList(a.out, a.ledger.Transactions())

	case "add":
		in, err := parseForm("add", rest)
		if err != nil {
			return err
		}
		if in.Amount == nil || in.Description == nil {
			return errors.New("add requires -amount and -description")
		}
		created, err := a.ledger.Add(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "added %s\n", created.ID)

	case "edit":
		if len(rest) == 0 {
			return errors.New("edit requires a transaction ID")
		}
		in, err := parseForm("edit", rest[1:])
		if err != nil {
			return err
		}
		updated, err := a.ledger.Update(ctx, rest[0], in)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "updated %s\n", updated.ID)

	case "delete":
		if len(rest) == 0 {
			return errors.New("delete requires a transaction ID")
		}
		if err := a.ledger.Delete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted %s\n", rest[0])

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	return nil
}

// parseForm reads the transaction flags. Only flags given on the command
// line end up in the input, so edit leaves the rest unchanged.
func parseForm(name string, args []string) (client.TransactionInput, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	amount := fs.String("amount", "", "amount, a positive number")
	description := fs.String("description", "", "what the entry is for")
	txType := fs.String("type", "", "income or expense")
	category := fs.String("category", "", "category name")
	date := fs.String("date", "", "date as YYYY-MM-DD or RFC 3339")

	if err := fs.Parse(args); err != nil {
		return client.TransactionInput{}, err
	}

	var in client.TransactionInput
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "amount":
			d, err := decimal.NewFromString(*amount)
			if err != nil {
				parseErr = fmt.Errorf("invalid amount %q", *amount)
				return
			}
			in.Amount = &d
		case "description":
			in.Description = description
		case "type":
			in.Type = txType
		case "category":
			in.Category = category
		case "date":
			in.Date = date
		}
	})
	if parseErr != nil {
		return client.TransactionInput{}, parseErr
	}
	return in, nil
}
