package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/bg/auth"
	"github.com/kbukum/bg/auth/apikey"
	"github.com/kbukum/bg/bootstrap"
	"github.com/kbukum/bg/logger"
	"github.com/kbukum/bg/process"
	"github.com/kbukum/bg/server"
	"github.com/kbukum/bg/version"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the launch API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

// serve runs the launch API until SIGINT or SIGTERM.
func (c *cli) serve(ctx context.Context) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	cfg.Launcher.Reap = true
	cfg.ApplyDefaults()
	if err := cfg.Server.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	metrics := launchMetrics(app.Logger)
	adapter := process.NewAdapter(cfg.Launcher, nil,
		process.WithLogger(app.Logger),
		process.WithMetrics(metrics),
	)
	srv := server.New(cfg.Server, app.Logger)

	if err := app.RegisterComponent(adapter); err != nil {
		return err
	}
	if err := app.RegisterComponent(srv); err != nil {
		return err
	}
	withTelemetry(app, cfg)

	err = srv.ApplyDefaults(metrics, server.Routes{
		ServiceName: app.Name,
		Launcher:    adapter,
		Checkers:    app.Components.HealthCheckers(),
	})
	if err != nil {
		return err
	}

	app.OnReady(func(context.Context) error {
		app.Logger.Info("launch API listening", logger.Fields("addr", srv.Addr()))
		return nil
	})
	return app.Run(ctx)
}

func (c *cli) tokenCmd() *cobra.Command {
	var (
		subject string
		scopes  []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the launch API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			cfg.ApplyDefaults()

			svc, err := auth.NewTokenService(&cfg.Server.Auth.JWT)
			if err != nil {
				return fmt.Errorf("server.auth.%w", err)
			}
			claims := &auth.Claims{Scopes: scopes}
			claims.Subject = subject
			token, err := svc.Issue(claims)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.stdout, token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Caller the token is issued to")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeLaunch}, "Scopes granted by the token")
	return cmd
}

func (c *cli) hashKeyCmd() *cobra.Command {
	var generate bool
	cmd := &cobra.Command{
		Use:   "hash-key [key]",
		Short: "Print the bcrypt hash of an API key for server.auth.api_key_hash",
		Long: `hash-key hashes the key given as argument, or the first line of stdin.
With --generate it creates a random key and prints both the key and its hash.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			switch {
			case generate:
				if len(args) > 0 {
					return errors.New("--generate takes no key argument")
				}
				var err error
				if key, err = apikey.Generate(32); err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "key:  %s\n", key)
			case len(args) == 1:
				key = args[0]
			default:
				sc := bufio.NewScanner(cmd.InOrStdin())
				if sc.Scan() {
					key = strings.TrimSpace(sc.Text())
				}
				if err := sc.Err(); err != nil {
					return err
				}
			}
			if key == "" {
				return errors.New("a key argument, stdin line or --generate is required")
			}

			hash, err := apikey.NewHasher().Hash(key)
			if err != nil {
				return err
			}
			if generate {
				_, err = fmt.Fprintf(c.stdout, "hash: %s\n", hash)
				return err
			}
			_, err = fmt.Fprintln(c.stdout, hash)
			return err
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "Generate a random key")
	return cmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if c.output == outputJSON {
				return writeJSON(c.stdout, version.GetVersionInfo())
			}
			_, err := fmt.Fprintln(c.stdout, version.GetFullVersion())
			return err
		},
	}
}
