// Package gitver reads the git state of the repository a solution lives in
// so reports can say which revision was built.
package gitver

import (
	"errors"
	"fmt"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository is returned when no git repository encloses the path.
var ErrNotRepository = errors.New("gitver: not a git repository")

// VersionInfo holds resolved version metadata from git.
type VersionInfo struct {
	Version   string // "1.2.3", "1.2.3-dev+abc1234", "0.0.0-dev+abc1234"
	SHA       string // short HEAD SHA
	Branch    string // empty on a detached HEAD
	Tag       string // tag at HEAD, if any
	IsRelease bool   // true if HEAD is exactly at a semver tag
	Dirty     bool   // uncommitted changes in the worktree
}

// DetectVersion resolves version info for the repository enclosing dir.
func DetectVersion(dir string) (*VersionInfo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("gitver: opening repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("gitver: reading HEAD: %w", err)
	}

	v := &VersionInfo{SHA: head.Hash().String()[:7]}
	if head.Name().IsBranch() {
		v.Branch = head.Name().Short()
	}

	if wt, err := repo.Worktree(); err == nil {
		if st, err := wt.Status(); err == nil {
			v.Dirty = !st.IsClean()
		}
	}

	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("gitver: reading HEAD commit: %w", err)
	}

	var (
		latest    *masterminds.Version
		latestTag string
	)
	tags, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("gitver: listing tags: %w", err)
	}
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		target := ref.Hash()
		// Annotated tags point at a tag object; peel to the commit.
		if obj, terr := repo.TagObject(target); terr == nil {
			target = obj.Target
		}
		sv, perr := masterminds.NewVersion(name)
		if target == head.Hash() {
			v.Tag = name
			v.IsRelease = perr == nil
		}
		if perr != nil || (latest != nil && !sv.GreaterThan(latest)) {
			return nil
		}
		if target != head.Hash() && !reachable(repo, target, headCommit) {
			return nil
		}
		latest, latestTag = sv, name
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gitver: reading tags: %w", err)
	}

	switch {
	case v.IsRelease:
		v.Version = strings.TrimPrefix(v.Tag, "v")
	case latest != nil:
		v.Version = fmt.Sprintf("%s-dev+%s", strings.TrimPrefix(latestTag, "v"), v.SHA)
	default:
		v.Version = fmt.Sprintf("0.0.0-dev+%s", v.SHA)
	}
	return v, nil
}

// reachable reports whether the commit at target is an ancestor of head.
// Tags on other objects or unrelated history do not count.
func reachable(repo *git.Repository, target plumbing.Hash, head *object.Commit) bool {
	c, err := repo.CommitObject(target)
	if err != nil {
		return false
	}
	ok, err := c.IsAncestor(head)
	return err == nil && ok
}

// Describe renders the info as "branch@sha" with a "+dirty" suffix.
func (v *VersionInfo) Describe() string {
	ref := v.Branch
	if ref == "" {
		ref = "detached"
	}
	s := ref + "@" + v.SHA
	if v.Dirty {
		s += "+dirty"
	}
	return s
}
