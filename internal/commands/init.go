package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fenykepesz/expense-dashboard/internal/config"
	"github.com/fenykepesz/expense-dashboard/internal/rules"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a default config and an empty rule table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir)
		},
	}
	return cmd
}

func runInit(out io.Writer, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write expenses.yaml.
	cfg := config.Default()
	cfgPath := filepath.Join(dir, config.DefaultFile)
	created, err := createOnce(cfgPath, func() error { return config.Save(cfgPath, cfg) })
	if err != nil {
		return err
	}
	report(out, cfgPath, created)

	// Write an empty rule table.
	rulesPath := filepath.Join(dir, cfg.RulesFile)
	created, err = createOnce(rulesPath, func() error {
		store, err := rules.Load(rulesPath)
		if err != nil {
			return err
		}
		return store.Save()
	})
	if err != nil {
		return err
	}
	report(out, rulesPath, created)

	fmt.Fprintf(out, "Initialized expenses workspace at %s\n", dir)
	return nil
}

// createOnce runs write unless path already exists.
func createOnce(path string, write func() error) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	if err := write(); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

func report(out io.Writer, path string, created bool) {
	if created {
		fmt.Fprintf(out, "Created %s\n", path)
		return
	}
	fmt.Fprintf(out, "Kept existing %s\n", path)
}
