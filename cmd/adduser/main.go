package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"motogiro/internal/auth"
	"motogiro/internal/models"
	"motogiro/internal/storage"

	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Login email")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	goalFlag := fs.String("goal", "", "Daily income goal, e.g. 250,00 (optional)")
	dbPath := fs.String("db", "motogiro.db", "Path to database file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-password <password>] [-goal <amount>] [-db <db_path>]")
		fs.PrintDefaults()
		var missing []string
		if *name == "" {
			missing = append(missing, "name")
		}
		if *email == "" {
			missing = append(missing, "email")
		}
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	var goalCents int64
	if *goalFlag != "" {
		var err error
		goalCents, err = models.ParseDecimalToCents(*goalFlag)
		if err != nil {
			return fmt.Errorf("invalid goal amount %q: %w", *goalFlag, err)
		}
	}

	// Allow overriding db path via env var if not explicitly set via flag (flag default is used)
	if path := os.Getenv("DB_PATH"); path != "" && *dbPath == "motogiro.db" {
		*dbPath = path
	}

	db, err := storage.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if _, err := db.GetAccountByEmail(ctx, *email); err == nil {
		return fmt.Errorf("account %s already exists", *email)
	} else if err != storage.ErrNotFound {
		return fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := db.CreateAccount(ctx, *name, *email, hash)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	if goalCents > 0 {
		if err := db.UpdateDailyGoal(ctx, account.ID, goalCents); err != nil {
			return fmt.Errorf("failed to set daily goal: %w", err)
		}
	}

	fmt.Fprintf(stdout, "Account %s created successfully with ID %d\n", account.Email, account.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
