// Package commands implements the taskctl subcommands.
package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/example/taskboard/pkg/client"
)

type Flags struct {
	BaseURL     string
	SessionPath string
	Timeout     time.Duration

	// Client is built in the Before hook and available to all commands
	Client *client.Client
}

// DefaultSessionPath returns the session file path, falling back to the
// working directory when no config dir can be resolved.
func DefaultSessionPath() string {
	if p, err := client.DefaultSessionPath(); err == nil {
		return p
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, ".taskctl-session.yaml")
}
