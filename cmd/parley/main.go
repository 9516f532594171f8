package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Terminal client for a parley chat server",
		Long: `Parley is a terminal client for room-based realtime chat.

Log in (or connect as a guest), create or join a room by id, and chat
from stdin. Room and message state is kept in sync with the server
over a single WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(chatCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
