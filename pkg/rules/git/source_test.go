package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"emberwatch/cinder/pkg/rules"
)

const twoRulesJSON = `[
  {"id": "HOT", "priority": 1, "conditions": [{"field": "temp", "operator": ">", "value": 40}],
   "result": {"risk": "CRITICAL", "action": "mobilize"}},
  {"id": "WINDY", "priority": 2, "conditions": [{"field": "wind", "operator": ">", "value": 40}],
   "result": {"risk": "LOW", "action": "monitor"}}
]`

const threeRulesJSON = `[
  {"id": "HOT", "priority": 1, "conditions": [{"field": "temp", "operator": ">", "value": 40}],
   "result": {"risk": "CRITICAL", "action": "mobilize"}},
  {"id": "WINDY", "priority": 2, "conditions": [{"field": "wind", "operator": ">", "value": 40}],
   "result": {"risk": "LOW", "action": "monitor"}},
  {"id": "DRY", "priority": 3, "conditions": [{"field": "hum", "operator": "<", "value": 20}],
   "result": {"risk": "MEDIUM", "action": "watch"}}
]`

// createRuleRepo initializes a repository containing one committed
// rules.json and returns its directory.
func createRuleRepo(t *testing.T, content string) (string, *gogit.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}

	commitRuleFile(t, repo, dir, content, "initial rules")
	return dir, repo
}

// commitRuleFile writes rules.json in the repository worktree and
// commits it, returning the commit SHA.
func commitRuleFile(t *testing.T, repo *gogit.Repository, dir, content, message string) string {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, "rules.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write rules.json: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := worktree.Add("rules.json"); err != nil {
		t.Fatalf("add rules.json: %v", err)
	}

	sha, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return sha.String()
}

// testSourceConfig points a source at a local origin. go-git creates
// "master" on PlainInit, so the tests track that ref.
func testSourceConfig(t *testing.T, originDir string) Config {
	t.Helper()
	return Config{
		URL:     originDir,
		Ref:     "master",
		Path:    "rules.json",
		Dir:     t.TempDir(),
		Timeout: 10 * time.Second,
	}
}

// TestNewSource tests configuration validation
func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing url",
			cfg:     Config{Ref: "main"},
			wantErr: true,
		},
		{
			name: "conflicting auth",
			cfg: Config{
				URL:  "https://example.com/rules.git",
				Auth: AuthConfig{Token: "tok", SSHKeyPath: "/tmp/key"},
			},
			wantErr: true,
		},
		{
			name: "negative depth",
			cfg: Config{
				URL:   "https://example.com/rules.git",
				Depth: -1,
			},
			wantErr: true,
		},
		{
			name: "valid with defaults",
			cfg: Config{
				URL: "https://example.com/rules.git",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.cfg, nil)

			if (err != nil) != tt.wantErr {
				t.Errorf("NewSource() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && src == nil {
				t.Fatal("NewSource() returned nil source")
			}
		})
	}
}

// TestSourceDefaults tests that defaults land in the source identity
func TestSourceDefaults(t *testing.T) {
	src, err := NewSource(Config{URL: "https://example.com/rules.git"}, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	want := "git https://example.com/rules.git@main:rules.json"
	if got := src.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if src.Head() != "" {
		t.Errorf("Head() = %q before first sync, want empty", src.Head())
	}
}

// TestSourceLoad tests cloning and reading rules from a local origin
func TestSourceLoad(t *testing.T) {
	originDir, _ := createRuleRepo(t, twoRulesJSON)

	src, err := NewSource(testSourceConfig(t, originDir), nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	loaded, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("Load() returned %d rules, want 2", len(loaded))
	}
	if loaded[0].ID != "HOT" || loaded[1].ID != "WINDY" {
		t.Errorf("Load() rule IDs = %q, %q; want HOT, WINDY", loaded[0].ID, loaded[1].ID)
	}
	if src.Head() == "" {
		t.Error("Head() empty after Load()")
	}
}

// TestSourceLoadMissingRulePath tests the not-found mapping when the
// repository lacks the configured rule file
func TestSourceLoadMissingRulePath(t *testing.T) {
	originDir, _ := createRuleRepo(t, twoRulesJSON)

	cfg := testSourceConfig(t, originDir)
	cfg.Path = "missing/rules.json"

	src, err := NewSource(cfg, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	_, err = src.Load(context.Background())
	var notFound *rules.SourceNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Load() error = %v, want SourceNotFoundError", err)
	}
}

// TestSourceSync tests change detection across commits to the origin
func TestSourceSync(t *testing.T) {
	originDir, origin := createRuleRepo(t, twoRulesJSON)

	src, err := NewSource(testSourceConfig(t, originDir), nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	ctx := context.Background()

	// First sync clones and always reports a change.
	first, err := src.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !first.Changed || first.ToSHA == "" || first.FromSHA != "" {
		t.Errorf("first Sync() = %+v, want initial change with empty FromSHA", first)
	}

	// Nothing new: no change.
	second, err := src.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if second.Changed {
		t.Errorf("second Sync() reported a change: %+v", second)
	}

	// Commit to the origin and sync again.
	newSHA := commitRuleFile(t, origin, originDir, threeRulesJSON, "add dry rule")

	third, err := src.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !third.Changed {
		t.Fatalf("third Sync() missed the new commit: %+v", third)
	}
	if third.ToSHA != newSHA {
		t.Errorf("Sync() ToSHA = %s, want %s", third.ToSHA, newSHA)
	}
	if src.Head() != newSHA {
		t.Errorf("Head() = %s, want %s", src.Head(), newSHA)
	}

	loaded, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after sync error = %v", err)
	}
	if len(loaded) != 3 {
		t.Errorf("Load() after sync returned %d rules, want 3", len(loaded))
	}
}

// TestSourceReusesCheckout tests that a second source over the same
// directory opens the existing clone instead of recloning
func TestSourceReusesCheckout(t *testing.T) {
	originDir, _ := createRuleRepo(t, twoRulesJSON)

	cfg := testSourceConfig(t, originDir)
	ctx := context.Background()

	first, err := NewSource(cfg, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	if _, err := first.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	second, err := NewSource(cfg, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	loaded, err := second.Load(ctx)
	if err != nil {
		t.Fatalf("Load() over existing checkout error = %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("Load() returned %d rules, want 2", len(loaded))
	}
	if second.Head() != first.Head() {
		t.Errorf("Head() = %s, want %s", second.Head(), first.Head())
	}
}

// TestSourceCommit tests HEAD commit metadata
func TestSourceCommit(t *testing.T) {
	originDir, _ := createRuleRepo(t, twoRulesJSON)

	src, err := NewSource(testSourceConfig(t, originDir), nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	if _, err := src.Commit(); err == nil {
		t.Error("Commit() before sync should error")
	}

	if _, err := src.Sync(context.Background()); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	info, err := src.Commit()
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if info.SHA != src.Head() {
		t.Errorf("Commit() SHA = %s, want %s", info.SHA, src.Head())
	}
	if info.Author != "Test User" {
		t.Errorf("Commit() Author = %q, want %q", info.Author, "Test User")
	}
	if info.Message != "initial rules" {
		t.Errorf("Commit() Message = %q, want %q", info.Message, "initial rules")
	}
}

// TestSourceCloneNonexistent tests the clone failure path
func TestSourceCloneNonexistent(t *testing.T) {
	cfg := Config{
		URL:     filepath.Join(t.TempDir(), "does-not-exist"),
		Ref:     "master",
		Dir:     t.TempDir(),
		Timeout: 5 * time.Second,
	}

	src, err := NewSource(cfg, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	if _, err := src.Sync(context.Background()); err == nil {
		t.Error("Sync() against nonexistent origin should error")
	}
}
