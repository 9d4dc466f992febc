// Command create-admin creates an active admin account.
//
// ADMIN_EMAIL selects the account email; ADMIN_PASSWORD is read from stdin
// when unset.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/stwalsh4118/motopark/api/internal/config"
	"github.com/stwalsh4118/motopark/api/internal/database"
	"github.com/stwalsh4118/motopark/api/internal/logger"
	"github.com/stwalsh4118/motopark/api/internal/repository"
	"github.com/stwalsh4118/motopark/api/internal/services"
	"github.com/stwalsh4118/motopark/api/internal/validation"
)

const timeout = 30 * time.Second

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "create-admin: %v\n", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	cfg, err := config.LoadAdmin()
	if err != nil {
		return err
	}

	password := cfg.Password
	if password == "" {
		password, err = prompt(in, out, "Password for "+cfg.Email+": ")
		if err != nil {
			return err
		}
	}
	if err := validation.CheckPassword(password); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	log := logger.New("production", "warn")
	svc := services.NewAuthService(repository.NewUserRepository(db), nil, log)

	user, err := svc.CreateAdmin(ctx, cfg.Email, password)
	if errors.Is(err, services.ErrUserExists) {
		fmt.Fprintf(out, "Admin %s already exists, nothing to do\n", cfg.Email)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Admin user created\n  id:    %s\n  email: %s\n", user.ID, user.Email)
	return nil
}

func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
