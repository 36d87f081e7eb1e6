package git

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AuthConfig selects how the remote is authenticated. Token and
// SSHKeyPath are mutually exclusive; leaving both empty accesses the
// remote anonymously, which suits public and local repositories.
type AuthConfig struct {
	Token         string // access token for https remotes
	SSHKeyPath    string // private key file for ssh remotes
	SSHPassphrase string // optional key passphrase
}

// Config describes the tracked repository.
type Config struct {
	URL     string        // remote URL or local path
	Ref     string        // branch to track
	Path    string        // rule file or directory inside the repository
	Dir     string        // local checkout directory
	Depth   int           // shallow clone depth, 0 clones full history
	Timeout time.Duration // per-operation limit for clone and pull
	Auth    AuthConfig
}

// ApplyDefaults fills unset fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Ref == "" {
		c.Ref = "main"
	}
	if c.Path == "" {
		c.Path = "rules.json"
	}
	if c.Dir == "" {
		c.Dir = filepath.Join(os.TempDir(), "emberwatch-rules")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks the configuration for holes and contradictions.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("git rule source requires a repository url")
	}
	if c.Ref == "" {
		return fmt.Errorf("git rule source requires a ref")
	}
	if c.Auth.Token != "" && c.Auth.SSHKeyPath != "" {
		return fmt.Errorf("git auth: token and ssh key are mutually exclusive")
	}
	if c.Depth < 0 {
		return fmt.Errorf("git clone depth cannot be negative")
	}
	return nil
}
