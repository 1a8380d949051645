// Command salesetl loads the product, transaction and user exports into the
// reporting database. It also generates keys and seals configuration files.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes the environment variables that override flags:
// --batch-rows is read from SALESETL_BATCH_ROWS.
const envPrefix = "SALESETL"

func newRootCmd(stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "salesetl",
		Short:         "load sales exports into the reporting database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetErr(stderr)
	root.AddCommand(newRunCmd(), newSealCmd(), newKeygenCmd())
	return root
}

// newViper returns a viper bound to the command's flags, with environment
// variables taking precedence over flag defaults.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	vip := viper.New()
	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()
	return vip, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "salesetl:", err)
		stop()
		os.Exit(1)
	}
}
