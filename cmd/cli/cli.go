package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/finsova/fundrequest/pkg/app"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/finsova/fundrequest/pkg/domain/user"
	txsvc "github.com/finsova/fundrequest/pkg/service/transaction"
	usersvc "github.com/finsova/fundrequest/pkg/service/user"
	"github.com/google/uuid"
)

var errUsage = errors.New("usage")

var (
	pendingColor  = color.New(color.FgYellow)
	approvedColor = color.New(color.FgGreen)
	rejectedColor = color.New(color.FgRed)
	labelColor    = color.New(color.Bold)
	okColor       = color.New(color.FgGreen, color.Bold)
)

type cli struct {
	app      *app.App
	out      io.Writer
	password func(prompt string) (string, error)
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register-user":
		return c.registerUser(ctx, args)
	case "submit":
		return c.submit(ctx, args)
	case "decide":
		return c.decide(ctx, args)
	case "list":
		return c.list(ctx, args)
	case "export":
		return c.export(ctx, args)
	case "summary":
		return c.summary(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	as := fs.String("as", "", "username of the acting account")
	return fs, as
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

// principal resolves the --as account. Inactive accounts may not act.
func (c *cli) principal(ctx context.Context, username string) (user.Principal, error) {
	if strings.TrimSpace(username) == "" {
		return user.Principal{}, fmt.Errorf("%w: --as is required", errUsage)
	}
	u, err := c.app.UserService.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return user.Principal{}, domain.NewError(domain.ErrUnauthorized, "as", "unknown account "+username)
		}
		return user.Principal{}, err
	}
	if !u.IsActive {
		return user.Principal{}, domain.NewError(domain.ErrUnauthorized, "as", "account is inactive")
	}
	return u.Principal(), nil
}

func (c *cli) registerUser(ctx context.Context, args []string) error {
	fs, as := newFlagSet("register-user")
	var in usersvc.RegisterInput
	var inactive, withPassword bool
	fs.StringVar(&in.FullName, "full-name", "", "full name")
	fs.StringVar(&in.Username, "username", "", "login name")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Role, "role", string(user.RoleUser), "user or admin")
	fs.StringVar(&in.Country, "country", "", "country")
	fs.StringVar(&in.ContactNumber, "contact", "", "contact number")
	fs.StringVar(&in.Plan, "plan", "", "subscription plan")
	fs.BoolVar(&inactive, "inactive", false, "create the account disabled")
	fs.BoolVar(&withPassword, "password", false, "prompt for a login password")
	if err := parse(fs, args); err != nil {
		return err
	}
	p, err := c.principal(ctx, *as)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return domain.Forbidden("only admins may register accounts")
	}
	in.IsActive = !inactive
	if withPassword {
		if in.Password, err = c.password("Password: "); err != nil {
			return err
		}
	}

	u, err := c.app.UserService.Register(ctx, in)
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "Registered %s\n", u.Username)
	fmt.Fprintf(c.out, "%s %s\n", labelColor.Sprint("ID:"), u.ID)
	fmt.Fprintf(c.out, "%s %s\n", labelColor.Sprint("Role:"), u.Role)
	return nil
}

func (c *cli) submit(ctx context.Context, args []string) error {
	fs, as := newFlagSet("submit")
	var in txsvc.SubmitInput
	var transferredAt string
	fs.StringVar(&in.SenderBankAccount, "sender", "", "sender bank account")
	fs.StringVar(&in.DepositAccount, "deposit", "", "company deposit account")
	fs.StringVar(&in.UTRNumber, "utr", "", "unique transaction reference")
	fs.StringVar(&in.Recipient, "recipient", "", "recipient")
	fs.StringVar(&transferredAt, "transferred-at", "", "RFC 3339 timestamp or YYYY-MM-DD")
	if err := parse(fs, args); err != nil {
		return err
	}
	p, err := c.principal(ctx, *as)
	if err != nil {
		return err
	}
	if in.TransferredAt, err = transaction.ParseDate("transferredAt", transferredAt, false); err != nil {
		return err
	}

	tx, err := c.app.TransactionService.Submit(ctx, p, in)
	if err != nil {
		return err
	}
	okColor.Fprintln(c.out, "Fund request submitted")
	c.printTransaction(tx)
	return nil
}

func (c *cli) decide(ctx context.Context, args []string) error {
	fs, as := newFlagSet("decide")
	id := fs.String("id", "", "transaction ID")
	decision := fs.String("decision", "", "Approved or Rejected")
	remark := fs.String("remark", "", "admin remark")
	if err := parse(fs, args); err != nil {
		return err
	}
	p, err := c.principal(ctx, *as)
	if err != nil {
		return err
	}
	txID, err := uuid.Parse(*id)
	if err != nil {
		return domain.Validation("id", "must be a valid UUID")
	}

	tx, err := c.app.TransactionService.Decide(ctx, p, txID, *decision, *remark)
	if err != nil {
		return err
	}
	okColor.Fprintln(c.out, "Decision recorded")
	c.printTransaction(tx)
	return nil
}

// filterFlags registers the list filters on fs and returns a parser for them.
func filterFlags(fs *flag.FlagSet) func() (transaction.Filter, error) {
	status := fs.String("status", "", "Pending, Approved or Rejected")
	from := fs.String("from", "", "inclusive lower bound on submission time")
	to := fs.String("to", "", "inclusive upper bound on submission time")
	submittedBy := fs.String("submitted-by", "", "owner user ID")
	return func() (transaction.Filter, error) {
		var (
			f   transaction.Filter
			err error
		)
		if *status != "" {
			if f.Status, err = transaction.ParseStatus(*status); err != nil {
				return f, err
			}
		}
		if f.DateFrom, err = transaction.ParseDate("from", *from, false); err != nil {
			return f, err
		}
		if f.DateTo, err = transaction.ParseDate("to", *to, true); err != nil {
			return f, err
		}
		if *submittedBy != "" {
			if f.SubmittedBy, err = uuid.Parse(*submittedBy); err != nil {
				return f, domain.Validation("submitted-by", "must be a valid UUID")
			}
		}
		return f, nil
	}
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs, as := newFlagSet("list")
	filter := filterFlags(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	p, err := c.principal(ctx, *as)
	if err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}

	txs, err := c.app.TransactionService.List(ctx, p, f)
	if err != nil {
		return err
	}
	n := 0
	for tx := range txs {
		fmt.Fprintf(c.out, "%s  %s  %-10s  %s  %s -> %s\n",
			tx.ID,
			tx.SubmittedAt.Format("2006-01-02 15:04"),
			colorStatus(tx.Status),
			tx.UTRNumber,
			tx.SenderBankAccount,
			tx.DepositAccount,
		)
		n++
	}
	fmt.Fprintf(c.out, "%s %d\n", labelColor.Sprint("Total:"), n)
	return nil
}

func (c *cli) export(ctx context.Context, args []string) error {
	fs, as := newFlagSet("export")
	filter := filterFlags(fs)
	format := fs.String("format", "delimited", "delimited or tabular")
	out := fs.String("out", "", "output file, stdout when empty")
	if err := parse(fs, args); err != nil {
		return err
	}
	p, err := c.principal(ctx, *as)
	if err != nil {
		return err
	}
	f, err := filter()
	if err != nil {
		return err
	}

	data, err := c.app.TransactionService.Export(ctx, p, f, *format)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = c.out.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	okColor.Fprintf(c.out, "Exported %d bytes to %s\n", len(data), *out)
	return nil
}

func (c *cli) summary(ctx context.Context, args []string) error {
	fs, as := newFlagSet("summary")
	if err := parse(fs, args); err != nil {
		return err
	}
	p, err := c.principal(ctx, *as)
	if err != nil {
		return err
	}

	s, err := c.app.TransactionService.Summary(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %d\n", labelColor.Sprint("Total:"), s.Total)
	fmt.Fprintf(c.out, "%s %d\n", pendingColor.Sprint("Pending:"), s.Pending)
	fmt.Fprintf(c.out, "%s %d\n", approvedColor.Sprint("Approved:"), s.Approved)
	fmt.Fprintf(c.out, "%s %d\n", rejectedColor.Sprint("Rejected:"), s.Rejected)
	fmt.Fprintf(c.out, "%s %d\n", labelColor.Sprint("Today:"), s.Today)
	fmt.Fprintf(c.out, "%s %d\n", labelColor.Sprint("This month:"), s.ThisMonth)
	return nil
}

func (c *cli) printTransaction(tx *transaction.Transaction) {
	fmt.Fprintf(c.out, "%s %s\n", labelColor.Sprint("ID:"), tx.ID)
	fmt.Fprintf(c.out, "%s %s\n", labelColor.Sprint("UTR:"), tx.UTRNumber)
	fmt.Fprintf(c.out, "%s %s\n", labelColor.Sprint("Status:"), colorStatus(tx.Status))
	if tx.AdminRemark != "" {
		fmt.Fprintf(c.out, "%s %s\n", labelColor.Sprint("Remark:"), tx.AdminRemark)
	}
}

func colorStatus(s transaction.Status) string {
	switch s {
	case transaction.StatusPending:
		return pendingColor.Sprint(s)
	case transaction.StatusApproved:
		return approvedColor.Sprint(s)
	case transaction.StatusRejected:
		return rejectedColor.Sprint(s)
	}
	return string(s)
}
