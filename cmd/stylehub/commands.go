package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"stylehub/cmd/internal/app"
	"stylehub/cmd/security/password"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func newRootCommand() *cobra.Command {
	serve := newServeCommand()

	root := &cobra.Command{
		Use:          "stylehub",
		Short:        "Barbershop booking auth service",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newHashPasswordCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var envFiles []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), envFiles...)
		},
	}
	cmd.Flags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading config")
	return cmd
}

func newHashPasswordCommand() *cobra.Command {
	var (
		envFiles   []string
		skipPolicy bool
	)

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password with the configured algorithm and print the encoded hash",
		Long: "Reads a password (without echo on a terminal, otherwise one line from stdin),\n" +
			"hashes it with the STYLEHUB_PASSWORD_* settings and prints the encoded hash.\n" +
			"Useful for seeding the users table.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.LoadDotEnv(envFiles...); err != nil {
				return err
			}
			cfg, err := password.FromEnv()
			if err != nil {
				return err
			}

			pw, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			hash := cfg.Hash
			if skipPolicy {
				hash = cfg.HashUnchecked
			}
			encoded, err := hash(pw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading config")
	cmd.Flags().BoolVar(&skipPolicy, "skip-policy", false, "hash even if the password fails the length/strength policy")
	return cmd
}

var errPasswordMismatch = errors.New("passwords do not match")

// promptPassword reads the password twice from a terminal, or once from a pipe.
func promptPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		fd := int(f.Fd())

		fmt.Fprint(prompt, "Password: ")
		first, err := readPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		fmt.Fprint(prompt, "Repeat password: ")
		second, err := readPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errPasswordMismatch
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("empty password")
	}
	return pw, nil
}
