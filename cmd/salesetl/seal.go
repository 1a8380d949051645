package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"github.com/mustafasaltik/salesetl/internal/dbconfig"
	"github.com/mustafasaltik/salesetl/internal/secret"
)

func newKeygenCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "generate a key for sealing the database configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vip, err := newViper(cmd)
			if err != nil {
				return err
			}
			out = vip.GetString("out")

			key, err := secret.GenerateKey()
			if err != nil {
				return err
			}
			// O_EXCL: an existing key may still be needed to open sealed files
			f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(f, key); err != nil {
				return errs.Combine(err, f.Close())
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "key written to %s; store it apart from the sealed configuration\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "src/secret.key", "where to write the key")
	return cmd
}

func newSealCmd() *cobra.Command {
	var key, in, out, section string

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "encrypt a database configuration with a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vip, err := newViper(cmd)
			if err != nil {
				return err
			}
			key, in, out, section = vip.GetString("key"), vip.GetString("in"), vip.GetString("out"), vip.GetString("section")

			sealer, err := secret.LoadKey(key)
			if err != nil {
				return err
			}
			plaintext, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			// refuse to seal a document the run could not use
			if _, err := dbconfig.Parse(string(plaintext), section); err != nil {
				return err
			}

			blob, err := sealer.Encrypt(plaintext)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, blob, 0o600); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sealed %s into %s\n", in, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "src/secret.key", "path of the key file")
	cmd.Flags().StringVar(&in, "in", "src/config.ini", "plaintext configuration")
	cmd.Flags().StringVar(&out, "out", "src/config.ini.enc", "where to write the sealed configuration")
	cmd.Flags().StringVar(&section, "section", dbconfig.DefaultSection, "section that must be present")
	return cmd
}
