package git

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// buildAuth resolves the configured transport credentials. The kind
// string names the mechanism for logging. Anonymous access returns a
// nil method, which go-git accepts for public and local remotes.
func buildAuth(cfg AuthConfig) (transport.AuthMethod, string, error) {
	switch {
	case cfg.Token != "":
		// The username is irrelevant for token auth; the token is the secret.
		return &githttp.BasicAuth{Username: "git", Password: cfg.Token}, "token", nil

	case cfg.SSHKeyPath != "":
		info, err := os.Stat(cfg.SSHKeyPath)
		if err != nil {
			return nil, "", fmt.Errorf("ssh key: %w", err)
		}
		if mode := info.Mode().Perm(); mode&0o077 != 0 {
			return nil, "", fmt.Errorf("ssh key %s permissions too open (%o), want 0600", cfg.SSHKeyPath, mode)
		}
		auth, err := gitssh.NewPublicKeysFromFile("git", cfg.SSHKeyPath, cfg.SSHPassphrase)
		if err != nil {
			return nil, "", fmt.Errorf("loading ssh key: %w", err)
		}
		return auth, "ssh", nil

	default:
		return nil, "none", nil
	}
}
