package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/urfave/cli/v2"

	"github.com/dexls/dexls/internal/config"
	"github.com/dexls/dexls/internal/handler"
)

// Serve runs the language server over stdio until the client disconnects.
func Serve(c *cli.Context) error {
	configFile := c.String("config")
	trace := c.Bool("trace")

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	// Initialize log writer
	var logWriter io.Writer
	if logfile := effectiveLogFile(c.String("log"), cfg); logfile != "" {
		f, err := os.OpenFile(logfile, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0660)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		logWriter = io.MultiWriter(os.Stderr, f)
	} else {
		logWriter = io.MultiWriter(os.Stderr)
	}
	log.SetOutput(logWriter)

	// Initialize language server
	server := handler.NewServer()
	defer server.Shutdown()
	h := jsonrpc2.HandlerWithError(server.Handle)

	if err := server.SetConfig(cfg); err != nil {
		return fmt.Errorf("cannot load catalog, %w", err)
	}
	if server.Store().Len() > 0 {
		log.Printf("dexls: catalog ready, %d tables", server.Store().Len())
	}

	// Set connect option
	var connOpt []jsonrpc2.ConnOpt
	if trace {
		connOpt = append(connOpt, jsonrpc2.LogMessages(log.New(logWriter, "", 0)))
	}

	// Start language server
	log.Println("dexls: reading on stdin, writing on stdout")
	<-jsonrpc2.NewConn(
		context.Background(),
		jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{}),
		h,
		connOpt...,
	).DisconnectNotify()
	log.Println("dexls: connections closed")

	return nil
}

// effectiveLogFile resolves the log destination: the command line flag
// wins over the config entry.
func effectiveLogFile(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg != nil {
		return cfg.LogFile
	}
	return ""
}

// loadConfig resolves the effective config: an explicit file must exist,
// the default one may be absent.
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.GetConfig(configFile)
		if err != nil {
			return nil, fmt.Errorf("cannot read specified config, %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.GetDefaultConfig()
	if err != nil && !errors.Is(err, config.ErrNotFoundConfig) {
		return nil, fmt.Errorf("cannot read default config, %w", err)
	}
	if errors.Is(err, config.ErrNotFoundConfig) {
		return nil, nil
	}
	return cfg, nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
