package policy

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/ganymede/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// initPolicyRepo creates a git repository with one commit on main and
// returns its path and the commit hash.
func initPolicyRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName("main"),
		},
	})
	if err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}

	hash := commitFile(t, repo, dir, "policy.yaml", "version: 1\n")
	return dir, hash
}

func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content string) string {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree() error = %v", err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	hash, err := wt.Commit("update "+name, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	return hash.String()
}

func TestNewGitSourceValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.GitConfig
		wantErr bool
	}{
		{"nil config", nil, true},
		{"missing url", &config.GitConfig{Reference: "main"}, true},
		{"missing reference", &config.GitConfig{URL: "https://example.com/policies.git"}, true},
		{"valid", &config.GitConfig{URL: "https://example.com/policies.git", Reference: "main"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGitSource(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGitSource() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGitSourceLoad(t *testing.T) {
	remote, wantHash := initPolicyRepo(t)

	source, err := NewGitSource(&config.GitConfig{
		URL:       remote,
		Reference: "main",
		LocalPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewGitSource() error = %v", err)
	}

	id, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if id.String() != wantHash {
		t.Errorf("Load() = %s, want %s", id, wantHash)
	}

	// A second load with no new commits returns the same identity.
	again, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if again != id {
		t.Errorf("second Load() = %s, want %s", again, id)
	}
}

func TestGitSourceLoadAdvances(t *testing.T) {
	remote, _ := initPolicyRepo(t)

	source, err := NewGitSource(&config.GitConfig{
		URL:       remote,
		Reference: "main",
		LocalPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewGitSource() error = %v", err)
	}

	first, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Advance the policy repository and load again.
	repo, err := gogit.PlainOpen(remote)
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	wantHash := commitFile(t, repo, remote, "policy.yaml", "version: 2\n")

	second, err := source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() after push error = %v", err)
	}
	if second.String() != wantHash {
		t.Errorf("Load() = %s, want new tip %s", second, wantHash)
	}
	if second == first {
		t.Error("identity did not advance with the repository")
	}
}

func TestGitWatcherRotates(t *testing.T) {
	remote, firstHash := initPolicyRepo(t)

	source, err := NewGitSource(&config.GitConfig{
		URL:          remote,
		Reference:    "main",
		LocalPath:    t.TempDir(),
		PollInterval: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewGitSource() error = %v", err)
	}

	holder := NewHolder(Identity(firstHash))
	rotated := make(chan Identity, 1)
	holder.Subscribe(func(_, next Identity) {
		select {
		case rotated <- next:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := NewGitWatcher(source, holder, testLogger())
	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	repo, err := gogit.PlainOpen(remote)
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	wantHash := commitFile(t, repo, remote, "policy.yaml", "version: 2\n")

	select {
	case next := <-rotated:
		if next.String() != wantHash {
			t.Errorf("rotated to %s, want %s", next, wantHash)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not rotate on new commit")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() returned error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
