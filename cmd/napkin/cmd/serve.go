package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"napkin/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve authenticated REPL sessions over websockets",
	Long: `Serve authenticated REPL sessions over websockets.

Endpoints:
  POST /login    exchange {"password": "..."} for a session token
  GET  /repl     open a REPL session (Authorization: Bearer <token>)
  GET  /healthz  liveness probe

serve.jwt_secret and serve.password_hash must be configured. Use
'napkin hash-password' to produce the hash.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for serve.password_hash",
	Long: `Print a bcrypt hash for serve.password_hash. Without an argument the
password is read from the first line of standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}

		hash, err := server.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve.addr)")
	rootCmd.AddCommand(serveCmd, hashPasswordCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		appConfig.Serve.Addr = serveAddr
	}
	if err := appConfig.ValidateServe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Addr:         appConfig.Serve.Addr,
		JWTSecret:    appConfig.Serve.JWTSecret,
		PasswordHash: appConfig.Serve.PasswordHash,
		TokenTTL:     appConfig.Serve.TokenTTL.Duration,
		Prompt:       appConfig.REPL.Prompt,
		Logger:       logger,
	})
	return srv.ListenAndServe(ctx)
}
