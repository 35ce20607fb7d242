package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dexls/dexls/format"
)

// Format rewrites a query from a file argument or stdin to the
// canonical shape and prints it.
func Format(c *cli.Context) error {
	sql, err := readInput(c)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, format.Format(sql))
	return nil
}

// readInput reads the query text from the first argument when given,
// otherwise from stdin.
func readInput(c *cli.Context) (string, error) {
	if c.Args().Len() > 0 {
		b, err := os.ReadFile(c.Args().First())
		if err != nil {
			return "", fmt.Errorf("cannot read input file, %w", err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("cannot read stdin, %w", err)
	}
	return string(b), nil
}
