package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Info summarises the checkout state of a git workspace.
type Info struct {
	Kind   string `json:"kind"`
	Branch string `json:"branch,omitempty"`
	Head   string `json:"head,omitempty"`
}

// Git describes git workspaces with go-git.
type Git struct{}

// Describe opens the repository rooted at dir and reports its HEAD.
func (Git) Describe(dir string) (*Info, error) {
	return Describe(dir)
}

// Describe opens the repository rooted at dir and reports its HEAD. A
// repository without commits yields an Info with only Kind set.
func Describe(dir string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("vcs: open %s: %w", dir, err)
	}
	info := &Info{Kind: "git"}
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return info, nil
		}
		return nil, fmt.Errorf("vcs: head %s: %w", dir, err)
	}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	h := ref.Hash().String()
	if len(h) > 7 {
		h = h[:7]
	}
	info.Head = h
	return info, nil
}
