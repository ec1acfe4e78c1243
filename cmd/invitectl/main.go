// Command invitectl is the operator tool for the workspace invitation
// service: provisioning accounts, minting bearer tokens and inspecting or
// cancelling invitations without going through the HTTP API.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
