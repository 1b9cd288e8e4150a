// Package source reads revision metadata from a local git repository and
// archives its HEAD tree into a deployable zip.
// This is part of the Imperative Shell - handles I/O with the filesystem.
package source

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ShortHashLength matches the default abbreviation of `git rev-parse --short`.
const ShortHashLength = 7

var (
	// ErrNotRepository is returned when the directory is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrNoCommits is returned when HEAD does not point at a commit.
	ErrNoCommits = errors.New("repository has no commits")
)

// Repo is a lazily opened git repository.
type Repo struct {
	dir    string
	repo   *git.Repository
	logger *slog.Logger
}

// New returns a Repo rooted at (or above) dir. The repository is opened on
// first use so callers that never need source metadata do not require git.
func New(dir string, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repo{
		dir:    dir,
		logger: logger.With("component", "source"),
	}
}

func (r *Repo) open() (*git.Repository, error) {
	if r.repo != nil {
		return r.repo, nil
	}

	repo, err := git.PlainOpenWithOptions(r.dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, r.dir)
		}
		return nil, fmt.Errorf("open repository %s: %w", r.dir, err)
	}

	r.repo = repo
	return repo, nil
}

func (r *Repo) headCommit() (*object.Commit, error) {
	repo, err := r.open()
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrNoCommits
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	return repo.CommitObject(head.Hash())
}

// CurrentRevision returns the abbreviated hash of HEAD.
func (r *Repo) CurrentRevision(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	commit, err := r.headCommit()
	if err != nil {
		return "", err
	}

	return commit.Hash.String()[:ShortHashLength], nil
}

// CommitMessage returns the trimmed message of the commit a revision resolves to.
func (r *Repo) CommitMessage(ctx context.Context, revision string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := r.open()
	if err != nil {
		return "", err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", fmt.Errorf("resolve revision %q: %w", revision, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("read commit %s: %w", hash, err)
	}

	return strings.TrimSpace(commit.Message), nil
}

// Archive writes the HEAD tree as a zip to dest and returns its absolute path.
// Uncommitted changes are not included.
func (r *Repo) Archive(ctx context.Context, dest string) (string, error) {
	commit, err := r.headCommit()
	if err != nil {
		return "", err
	}

	tree, err := commit.Tree()
	if err != nil {
		return "", fmt.Errorf("read tree of %s: %w", commit.Hash, err)
	}

	path, err := filepath.Abs(dest)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}

	count, err := writeTree(ctx, f, tree, commit)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("archive %s: %w", commit.Hash, err)
	}

	r.logger.Info("source archived",
		"revision", commit.Hash.String()[:ShortHashLength],
		"path", path,
		"files", count,
	)
	return path, nil
}

func writeTree(ctx context.Context, w io.Writer, tree *object.Tree, commit *object.Commit) (int, error) {
	zw := zip.NewWriter(w)
	count := 0

	err := tree.Files().ForEach(func(file *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		mode, err := file.Mode.ToOSFileMode()
		if err != nil {
			return fmt.Errorf("%s: %w", file.Name, err)
		}

		header := &zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: commit.Committer.When,
		}
		header.SetMode(mode)

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		reader, err := file.Reader()
		if err != nil {
			return fmt.Errorf("%s: %w", file.Name, err)
		}
		defer reader.Close()

		if _, err := io.Copy(entry, reader); err != nil {
			return fmt.Errorf("%s: %w", file.Name, err)
		}

		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	return count, zw.Close()
}
