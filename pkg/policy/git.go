package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"mercator-hq/ganymede/pkg/config"
)

// GitSource loads the policy identity from a git repository: the identity is
// the commit hash at the tip of the tracked reference. Publishing a new
// policy version is therefore a git push, and the constitutional hash is the
// commit hash.
type GitSource struct {
	cfg *config.GitConfig

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewGitSource creates a GitSource for the given configuration.
func NewGitSource(cfg *config.GitConfig) (*GitSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("git config cannot be nil")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Reference == "" {
		return nil, fmt.Errorf("reference cannot be empty")
	}
	return &GitSource{cfg: cfg}, nil
}

// Load fetches the remote and returns the tip commit hash of the tracked
// reference as the identity.
func (s *GitSource) Load(ctx context.Context) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureRepo(ctx); err != nil {
		return "", &LoadError{Source: "git", Cause: err}
	}

	if err := s.fetch(ctx); err != nil {
		return "", &LoadError{Source: "git", Cause: err}
	}

	refName := plumbing.NewRemoteReferenceName("origin", s.cfg.Reference)
	ref, err := s.repo.Reference(refName, true)
	if err != nil {
		return "", &LoadError{
			Source: "git",
			Cause:  fmt.Errorf("failed to resolve %s: %w", refName, err),
		}
	}

	id := Identity(ref.Hash().String())
	if id.IsZero() {
		return "", &LoadError{Source: "git", Cause: ErrEmptyIdentity}
	}
	return id, nil
}

// ensureRepo opens the local clone, cloning it first if necessary.
func (s *GitSource) ensureRepo(ctx context.Context) error {
	if s.repo != nil {
		return nil
	}

	gitDir := filepath.Join(s.cfg.LocalPath, ".git")
	if _, err := os.Stat(gitDir); err == nil {
		repo, err := gogit.PlainOpen(s.cfg.LocalPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo: %w", err)
		}
		s.repo = repo
		return nil
	}

	if err := os.MkdirAll(s.cfg.LocalPath, 0o755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	repo, err := gogit.PlainCloneContext(ctx, s.cfg.LocalPath, false, &gogit.CloneOptions{
		URL:           s.cfg.URL,
		ReferenceName: plumbing.NewBranchReferenceName(s.cfg.Reference),
		SingleBranch:  true,
		Auth:          s.auth(),
	})
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	s.repo = repo
	return nil
}

// fetch updates the remote-tracking references.
func (s *GitSource) fetch(ctx context.Context) error {
	err := s.repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: "origin",
		Auth:       s.auth(),
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch failed: %w", err)
	}
	return nil
}

// auth builds HTTPS token auth when a token is configured.
func (s *GitSource) auth() transport.AuthMethod {
	if s.cfg.AuthToken == "" {
		return nil
	}
	return &githttp.BasicAuth{
		Username: "token",
		Password: s.cfg.AuthToken,
	}
}

// GitWatcher polls a GitSource and rotates the Holder when the policy
// repository advances.
type GitWatcher struct {
	source *GitSource
	holder *Holder
	logger *slog.Logger
	poll   time.Duration
}

// NewGitWatcher creates a watcher polling the source at the configured
// interval.
func NewGitWatcher(source *GitSource, holder *Holder, logger *slog.Logger) *GitWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitWatcher{
		source: source,
		holder: holder,
		logger: logger,
		poll:   source.cfg.PollInterval,
	}
}

// Watch blocks, polling the repository until the context is cancelled.
// Fetch failures are logged and the previous identity stays active.
func (w *GitWatcher) Watch(ctx context.Context) error {
	w.logger.Info("policy git watcher started",
		"url", w.source.cfg.URL,
		"reference", w.source.cfg.Reference,
		"poll_interval", w.poll,
	)

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("policy git watcher stopped")
			return nil
		case <-ticker.C:
			id, err := w.source.Load(ctx)
			if err != nil {
				w.logger.Warn("policy repository poll failed, keeping current identity", "error", err)
				continue
			}
			if w.holder.Rotate(id) {
				w.logger.Info("policy identity rotated from git",
					"identity", id.Short(),
				)
			}
		}
	}
}
