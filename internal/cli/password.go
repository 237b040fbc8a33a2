package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/pgEdge/pgedge-orderbi/internal/config"
)

var (
	hashPassword string
	hashCost     int
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for the web UI password",
	Long: `Hash a password for the web UI login. The output goes into the
HASHED_PASSWORD variable of the environment or .env file.

Without --password the password is read from the terminal without echo,
or from the first line of standard input when it is not a terminal.

Example:
  pgedge-orderbi hash-password
  echo "s3cret" | pgedge-orderbi hash-password`,
	// No database or config needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: runHashPassword,
}

func init() {
	hashPasswordCmd.Flags().StringVar(&hashPassword, "password", "",
		"password to hash (visible in shell history; prefer the prompt)")
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost,
		"bcrypt cost factor")
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	password := hashPassword
	if password == "" {
		var err error
		password, err = readPassword()
		if err != nil {
			return err
		}
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	cmd.Printf("%s=%s\n", config.EnvHashedPassword, hash)
	return nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
