// Package configure holds the interactive setup command. It writes the
// client ID, tenant ID, refresh token and owner address to the encrypted
// settings store; the environment still overrides everything at run time.
package configure

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/uthapjhojho/graphmail/internal/config"
	"github.com/uthapjhojho/graphmail/internal/settings"
	"github.com/uthapjhojho/graphmail/internal/validate"
)

// ConfigureCommand prompts for mailbox credentials and saves them.
var ConfigureCommand = &cli.Command{
	Name:  "configure",
	Usage: "Save mailbox credentials for use when MS_GRAPH_* variables are unset",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "show",
			Usage: "Show the current configuration (token redacted) and exit",
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete the saved configuration and exit",
		},
	},
	Action: configureAction,
}

func configureAction(ctx context.Context, cmd *cli.Command) error {
	store, err := settings.NewStore()
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}

	if cmd.Bool("reset") {
		if err := store.Delete(); err != nil {
			return err
		}
		fmt.Println("Saved configuration deleted.")
		return nil
	}

	if cmd.Bool("show") {
		return showConfiguration(store)
	}

	saved, err := store.Load()
	if err != nil {
		fmt.Println("Saved configuration unreadable, starting fresh.")
		saved = nil
	}
	if saved == nil {
		saved = &settings.Settings{}
	}

	fmt.Println("Configure the Microsoft Graph mailbox. Press Enter to keep a shown value.")
	fmt.Println()

	if saved.ClientID, err = promptKeep("Application (client) ID", saved.ClientID); err != nil {
		return err
	}
	if saved.TenantID, err = promptKeep("Directory (tenant) ID", saved.TenantID); err != nil {
		return err
	}

	token, err := promptSecret("Refresh token (input hidden): ")
	if err != nil {
		return err
	}
	if token != "" {
		saved.RefreshToken = token
	}

	owner, err := promptKeep("Mailbox owner address (optional)", saved.OwnerAddress)
	if err != nil {
		return err
	}
	if owner != "" && !validate.IsValidEmailAddress(owner) {
		return fmt.Errorf("owner address %q is not a valid email address", owner)
	}
	saved.OwnerAddress = owner

	if err := store.Save(saved); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", store.BasePath())
	if saved.ClientID == "" || saved.TenantID == "" || saved.RefreshToken == "" {
		fmt.Println("Warning: configuration is incomplete, mail commands will fail until it is.")
	}
	return nil
}

func showConfiguration(store *settings.Store) error {
	saved, err := store.Load()
	if err != nil {
		return err
	}
	if saved == nil {
		fmt.Println("No saved configuration. Run 'graphmail configure' to create one.")
		return nil
	}

	fmt.Printf("Settings directory: %s\n", store.BasePath())
	fmt.Printf("  Client ID:     %s\n", orUnset(saved.ClientID))
	fmt.Printf("  Tenant ID:     %s\n", orUnset(saved.TenantID))
	fmt.Printf("  Refresh token: %s\n", redact(saved.RefreshToken))
	fmt.Printf("  Owner address: %s\n", orUnset(saved.OwnerAddress))
	fmt.Printf("\nEnvironment variables (%s, ...) override saved values.\n", config.EnvClientID)
	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

// redact never reveals any part of the token, only whether one is saved.
func redact(token string) string {
	if token == "" {
		return "(unset)"
	}
	return "(saved)"
}

func promptKeep(label, current string) (string, error) {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return current, nil
	}
	return input, nil
}

// promptSecret reads a value with terminal echo off. Falls back to a plain
// read when stdin is not a terminal.
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
