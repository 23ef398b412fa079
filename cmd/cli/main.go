package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/finsova/fundrequest/infra/initializer"
	"github.com/finsova/fundrequest/pkg/app"
	"github.com/finsova/fundrequest/pkg/config"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	if len(args) < 1 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(os.Stderr)
		return 2
	}

	cfg, err := config.Load(".env")
	if err != nil {
		color.Red("Failed to load configuration: %v", err)
		return 1
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		color.Red("Failed to initialize dependencies: %v", err)
		return 1
	}
	defer func() {
		if cerr := initializer.Close(deps); cerr != nil {
			color.Red("Failed to release resources: %v", cerr)
			code = 1
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{
		app:      app.New(deps),
		out:      os.Stdout,
		password: promptPassword,
	}
	if err := c.run(ctx, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
			return 2
		}
		color.Red("Error: %v", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: finsova-cli <command> --as <username> [flags]")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  register-user --full-name --username --email --country --contact [--role user|admin] [--plan] [--inactive] [--password]")
	fmt.Fprintln(w, "  submit        --sender --deposit --utr [--recipient] [--transferred-at]")
	fmt.Fprintln(w, "  decide        --id --decision Approved|Rejected [--remark]")
	fmt.Fprintln(w, "  list          [--status] [--from] [--to] [--submitted-by]")
	fmt.Fprintln(w, "  export        --format delimited|tabular [--out file] [list filters]")
	fmt.Fprintln(w, "  summary")
}

// promptPassword reads a password without echo when stdin is a terminal and
// falls back to a plain line otherwise.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
