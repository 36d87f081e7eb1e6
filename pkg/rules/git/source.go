package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"emberwatch/cinder/pkg/rules"
	"emberwatch/cinder/pkg/rules/store"
)

// CommitInfo describes the checkout's HEAD commit.
type CommitInfo struct {
	SHA     string    `json:"sha"`
	Author  string    `json:"author"`
	Email   string    `json:"email"`
	When    time.Time `json:"when"`
	Message string    `json:"message"`
}

// SyncResult reports whether a sync moved HEAD. FromSHA is empty when
// the sync performed the initial clone.
type SyncResult struct {
	FromSHA string
	ToSHA   string
	Changed bool
}

// Source serves rule loads from a local checkout of a Git repository.
// It implements store.Source: Load reads the configured path inside the
// checkout and touches the network only for the initial clone.
type Source struct {
	cfg    Config
	logger *slog.Logger
	auth   transport.AuthMethod

	mu   sync.Mutex
	repo *gogit.Repository
	head string
}

var _ store.Source = (*Source)(nil)

// NewSource validates the configuration and prepares a source. The
// remote is not contacted until the first Sync or Load.
func NewSource(cfg Config, logger *slog.Logger) (*Source, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "rules.git")

	auth, kind, err := buildAuth(cfg.Auth)
	if err != nil {
		return nil, err
	}
	logger.Debug("git rule source configured",
		"url", cfg.URL,
		"ref", cfg.Ref,
		"path", cfg.Path,
		"auth", kind)

	return &Source{cfg: cfg, logger: logger, auth: auth}, nil
}

// String implements store.Source.
func (s *Source) String() string {
	return fmt.Sprintf("git %s@%s:%s", s.cfg.URL, s.cfg.Ref, s.cfg.Path)
}

// Load implements store.Source. It ensures the checkout exists and
// reads the configured rule path from it. Load never pulls; pulling is
// the Poller's job, so concurrent loads cannot observe a half-updated
// worktree.
func (s *Source) Load(ctx context.Context) ([]rules.Rule, error) {
	s.mu.Lock()
	if s.repo == nil {
		if err := s.ensureCheckout(ctx); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	rulePath := filepath.Join(s.cfg.Dir, s.cfg.Path)
	s.mu.Unlock()

	return store.NewFileSource(rulePath).Load(ctx)
}

// Sync brings the checkout up to date with the remote. The first call
// clones or opens an existing checkout and always reports a change;
// later calls pull and report whether HEAD moved.
func (s *Source) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		if err := s.ensureCheckout(ctx); err != nil {
			return nil, err
		}
		return &SyncResult{ToSHA: s.head, Changed: true}, nil
	}

	from := s.head

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	err = worktree.PullContext(pullCtx, &gogit.PullOptions{
		RemoteName: "origin",
		Auth:       s.auth,
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return nil, fmt.Errorf("pulling %s: %w", s.cfg.URL, err)
	}

	head, err := s.headSHA()
	if err != nil {
		return nil, err
	}
	s.head = head

	return &SyncResult{FromSHA: from, ToSHA: head, Changed: from != head}, nil
}

// Head returns the SHA of the current checkout, empty before the first
// clone.
func (s *Source) Head() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head
}

// Commit returns metadata for the checkout's HEAD commit.
func (s *Source) Commit() (*CommitInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil, fmt.Errorf("repository not synced")
	}

	ref, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}
	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", ref.Hash(), err)
	}

	return &CommitInfo{
		SHA:     commit.Hash.String(),
		Author:  commit.Author.Name,
		Email:   commit.Author.Email,
		When:    commit.Author.When,
		Message: commit.Message,
	}, nil
}

// ensureCheckout clones the repository, or opens the checkout left by
// a previous run. Callers must hold s.mu.
func (s *Source) ensureCheckout(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(s.cfg.Dir, ".git")); err == nil {
		repo, err := gogit.PlainOpen(s.cfg.Dir)
		if err != nil {
			return fmt.Errorf("opening checkout %s: %w", s.cfg.Dir, err)
		}
		s.repo = repo

		head, err := s.headSHA()
		if err != nil {
			return err
		}
		s.head = head
		s.logger.Info("reusing existing checkout", "dir", s.cfg.Dir, "head", shortSHA(head))
		return nil
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("creating checkout directory: %w", err)
	}

	cloneCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	repo, err := gogit.PlainCloneContext(cloneCtx, s.cfg.Dir, false, &gogit.CloneOptions{
		URL:           s.cfg.URL,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Ref),
		SingleBranch:  s.cfg.Depth > 0,
		Depth:         s.cfg.Depth,
		Auth:          s.auth,
	})
	if err != nil {
		return fmt.Errorf("cloning %s: %w", s.cfg.URL, err)
	}
	s.repo = repo

	head, err := s.headSHA()
	if err != nil {
		return err
	}
	s.head = head
	s.logger.Info("cloned rule repository",
		"url", s.cfg.URL,
		"ref", s.cfg.Ref,
		"head", shortSHA(head))
	return nil
}

// headSHA reads the checkout's HEAD hash. Callers must hold s.mu.
func (s *Source) headSHA() (string, error) {
	ref, err := s.repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// shortSHA trims a commit hash for logs.
func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
