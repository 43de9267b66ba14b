package recipe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/gardenzilla/procurement/internal/paths"
)

// Reports whether source names a git remote rather than a local directory.
func isRemote(source string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return false
}

// Returns a local directory holding source. Local paths must be existing
// directories. Remote sources are shallow cloned into cacheDir, or updated
// when a clone already exists there.
func resolveSource(ctx context.Context, source, ref, cacheDir string, progress io.Writer) (string, error) {
	if !isRemote(source) {
		abs, err := filepath.Abs(source)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSource, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrSource, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%w: %s is not a directory", ErrSource, abs)
		}
		return abs, nil
	}

	if cacheDir == "" {
		cacheDir = paths.Sources()
	}
	dir := filepath.Join(cacheDir, cacheKey(source, ref))

	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return dir, update(ctx, dir, progress)
	}

	if err := os.MkdirAll(cacheDir, paths.DefaultDirMode); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSource, err)
	}

	slog.Info("cloning source", "url", source, "ref", ref, "dir", dir)

	opts := &git.CloneOptions{
		URL:          source,
		Depth:        1,
		SingleBranch: true,
		Progress:     progress,
	}
	if ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("%w: failed to clone %s: %w", ErrSource, source, err)
	}
	return dir, nil
}

// Pulls the latest commit of the checked out branch.
func update(ctx context.Context, dir string, progress io.Writer) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSource, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSource, err)
	}

	slog.Info("updating source", "dir", dir)

	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:   git.DefaultRemoteName,
		Depth:        1,
		SingleBranch: true,
		Force:        true,
		Progress:     progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("%w: failed to update %s: %w", ErrSource, dir, err)
	}
	return nil
}

// Derives a stable directory name for a remote and ref.
func cacheKey(source, ref string) string {
	h := sha256.Sum256([]byte(source + "#" + ref))
	name := strings.TrimSuffix(filepath.Base(strings.TrimSuffix(source, "/")), ".git")
	return name + "-" + hex.EncodeToString(h[:6])
}
