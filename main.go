package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/dexls/dexls/internal/cmd"
	"github.com/dexls/dexls/internal/config"
)

const name = "dexls"

const version = "0.1.0"

var revision = "HEAD"

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	os.Exit(0)
}

func realMain() error {
	app := &cli.App{
		Name:    name,
		Version: fmt.Sprintf("Version:%s, Revision:%s\n", version, revision),
		Usage:   "A language server for the data extension query dialect.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "Also log to this file. (in addition to stderr)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Specifies an alternative per-user configuration file.",
			},
			&cli.BoolFlag{
				Name:    "trace",
				Aliases: []string{"t"},
				Usage:   "Print all requests and responses.",
			},
		},
		Commands: cli.Commands{
			{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "edit config",
				Action: func(c *cli.Context) error {
					editorEnv := os.Getenv("EDITOR")
					if editorEnv == "" {
						editorEnv = "vim"
					}
					dir := filepath.Dir(config.YamlConfigPath)
					if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
						if err := os.MkdirAll(dir, 0755); err != nil {
							return fmt.Errorf("cannot create config directory, %w", err)
						}
					}
					return openEditor(editorEnv, config.YamlConfigPath)
				},
			},
			{
				Name:  "lint",
				Usage: "check a query from a file or stdin",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print findings as JSON.",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Specifies an alternative per-user configuration file.",
					},
				},
				Action: cmd.Lint,
			},
			{
				Name:   "format",
				Usage:  "rewrite a query from a file or stdin",
				Action: cmd.Format,
			},
		},
		Action: func(c *cli.Context) error {
			return cmd.Serve(c)
		},
	}
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print version.",
	}
	cli.HelpFlag = &cli.BoolFlag{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   "Print help.",
	}

	err := app.Run(os.Args)
	if err != nil {
		return err
	}

	return nil
}

func openEditor(program string, args ...string) error {
	cmd := exec.CommandContext(context.Background(), program, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
