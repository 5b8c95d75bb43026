package driver

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

//go:embed examples/*.valkyrie examples/*.runic
var bundledExamples embed.FS

// BundledExamples lists the names of the embedded example scripts.
func BundledExamples() []string {
	entries, err := fs.ReadDir(bundledExamples, "examples")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// ExtractExamples writes the bundled scripts into dest, creating it when
// needed, and returns the paths written.
func ExtractExamples(dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}
	var written []string
	for _, name := range BundledExamples() {
		data, err := bundledExamples.ReadFile("examples/" + name)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dest, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// FetchExamples clones spec.Git, checks out the requested revision and copies
// every source file under spec.Path into dest. It returns the commit hash
// checked out and the files written.
func FetchExamples(ctx context.Context, spec *ExamplesSpec, dest string) (string, []string, error) {
	if spec == nil || strings.TrimSpace(spec.Git) == "" {
		return "", nil, errors.New("examples: git URL required")
	}
	if issues := spec.validate(); len(issues) > 0 {
		return "", nil, &ValidationError{Issues: issues}
	}
	tmpDir, err := os.MkdirTemp("", "valkyrie-examples-*")
	if err != nil {
		return "", nil, err
	}
	defer os.RemoveAll(tmpDir)

	url := strings.TrimSpace(spec.Git)
	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{URL: url, Tags: git.AllTags})
	if err != nil {
		return "", nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	revision := examplesRevision(spec)
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return "", nil, fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", nil, fmt.Errorf("git checkout %s: %w", revision, err)
	}

	written, err := copySources(filepath.Join(tmpDir, filepath.Clean(spec.Path)), dest)
	if err != nil {
		return "", written, err
	}
	return hash.String(), written, nil
}

func examplesRevision(spec *ExamplesSpec) plumbing.Revision {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev)
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag)
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		// A clone only creates a local branch for the remote HEAD.
		return plumbing.Revision("refs/remotes/origin/" + branch)
	}
	return plumbing.Revision(plumbing.HEAD)
}

// copySources mirrors the .valkyrie and .runic files under root into dest,
// keeping their relative layout.
func copySources(root, dest string) ([]string, error) {
	var written []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourcePath(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		written = append(written, target)
		return nil
	})
	return written, err
}
