package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newGenKeyCommand() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "genkey",
		Short: "Print fresh random secrets for the .env file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeys(cmd.OutOrStdout(), rand.Reader, size)
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "Random bytes per secret")
	return cmd
}

func printKeys(w io.Writer, random io.Reader, size int) error {
	if size < 16 {
		return fmt.Errorf("--bytes must be at least 16, got %d", size)
	}

	for _, name := range []string{"JWT_SIGNING_KEY", "STORE_SECURITY_KEY"} {
		buf := make([]byte, size)
		if _, err := io.ReadFull(random, buf); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", name, hex.EncodeToString(buf)); err != nil {
			return err
		}
	}
	return nil
}
