package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const DefaultTimeout = 30 * time.Second

// GitHubPages pushes a site folder to <org>/<slug> and serves it with GitHub Pages.
type GitHubPages struct {
	gh         *gh.Client
	token      string
	org        string
	branch     string
	remoteBase string
	author     string
}

var _ Publisher = (*GitHubPages)(nil)

func NewGitHubPages(token, org, branch string) *GitHubPages {
	if branch == "" {
		branch = "main"
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = DefaultTimeout

	return &GitHubPages{
		gh:         gh.NewClient(tc),
		token:      token,
		org:        org,
		branch:     branch,
		remoteBase: "https://github.com",
		author:     "HelloSite",
	}
}

// SiteURL is where Pages serves the repository.
func (p *GitHubPages) SiteURL(slug string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", p.org, slug)
}

func (p *GitHubPages) Publish(ctx context.Context, site Site) (*Result, error) {
	if err := p.ensureRepo(ctx, site.Slug); err != nil {
		return nil, err
	}

	repo, hash, err := p.commitSite(site.Dir)
	if err != nil {
		return nil, err
	}
	if err := p.push(ctx, repo, site.Slug); err != nil {
		return nil, err
	}
	if err := p.enablePages(ctx, site.Slug); err != nil {
		return nil, err
	}

	return &Result{
		Target:   TargetGitHub,
		URL:      p.SiteURL(site.Slug),
		Revision: hash.String(),
	}, nil
}

func (p *GitHubPages) ensureRepo(ctx context.Context, slug string) error {
	_, resp, err := p.gh.Repositories.Get(ctx, p.org, slug)
	if err == nil {
		return nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check repository %s/%s: %w", p.org, slug, err)
	}

	_, _, err = p.gh.Repositories.Create(ctx, p.org, &gh.Repository{
		Name:    gh.Ptr(slug),
		Private: gh.Ptr(false),
	})
	if err != nil {
		return fmt.Errorf("create repository %s/%s: %w", p.org, slug, err)
	}
	return nil
}

// commitSite stages everything in dir onto the publish branch, initializing the
// repository on first use.
func (p *GitHubPages) commitSite(dir string) (*git.Repository, plumbing.Hash, error) {
	branchRef := plumbing.NewBranchReferenceName(p.branch)

	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
		if err != nil {
			return nil, plumbing.ZeroHash, fmt.Errorf("init repo: %w", err)
		}
		if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)); err != nil {
			return nil, plumbing.ZeroHash, fmt.Errorf("set HEAD to %s: %w", p.branch, err)
		}
	} else if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("open repo: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("open worktree: %w", err)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("git add: %w", err)
	}

	now := time.Now()
	hash, err := worktree.Commit(fmt.Sprintf("Update %s", now.UTC().Format(time.RFC3339)), &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  p.author,
			Email: "deploy@" + p.org + ".github.io",
			When:  now,
		},
	})
	if err != nil {
		return nil, plumbing.ZeroHash, fmt.Errorf("commit site: %w", err)
	}
	return repo, hash, nil
}

func (p *GitHubPages) remoteURL(slug string) string {
	return fmt.Sprintf("%s/%s/%s.git", strings.TrimRight(p.remoteBase, "/"), p.org, slug)
}

func (p *GitHubPages) push(ctx context.Context, repo *git.Repository, slug string) error {
	url := p.remoteURL(slug)

	remote, err := repo.Remote("origin")
	switch {
	case errors.Is(err, git.ErrRemoteNotFound):
		if _, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{url}}); err != nil {
			return fmt.Errorf("add remote: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read remote: %w", err)
	case len(remote.Config().URLs) == 0 || remote.Config().URLs[0] != url:
		if err := repo.DeleteRemote("origin"); err != nil {
			return fmt.Errorf("reset remote: %w", err)
		}
		if _, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{url}}); err != nil {
			return fmt.Errorf("add remote: %w", err)
		}
	}

	opts := &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/heads/%s", p.branch, p.branch))},
		Force:      true,
	}
	if strings.HasPrefix(url, "https://") {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: p.token}
	}

	if err := repo.PushContext(ctx, opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push to %s: %w", url, err)
	}
	return nil
}

func (p *GitHubPages) enablePages(ctx context.Context, slug string) error {
	_, resp, err := p.gh.Repositories.EnablePages(ctx, p.org, slug, &gh.Pages{
		Source: &gh.PagesSource{
			Branch: gh.Ptr(p.branch),
			Path:   gh.Ptr("/"),
		},
	})
	if err != nil {
		// 409 means Pages is already on
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("enable pages for %s/%s: %w", p.org, slug, err)
	}
	return nil
}

// AttachDomain commits a CNAME file to the publish branch and points Pages at domain.
func (p *GitHubPages) AttachDomain(ctx context.Context, slug, domain string) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr("Set CNAME to " + domain),
		Content: []byte(domain),
		Branch:  gh.Ptr(p.branch),
	}

	existing, _, resp, err := p.gh.Repositories.GetContents(ctx, p.org, slug, "CNAME", &gh.RepositoryContentGetOptions{Ref: p.branch})
	switch {
	case err == nil && existing != nil:
		opts.SHA = existing.SHA
		if _, _, err := p.gh.Repositories.UpdateFile(ctx, p.org, slug, "CNAME", opts); err != nil {
			return fmt.Errorf("update CNAME: %w", err)
		}
	case err != nil && (resp == nil || resp.StatusCode != http.StatusNotFound):
		return fmt.Errorf("read CNAME: %w", err)
	default:
		if _, _, err := p.gh.Repositories.CreateFile(ctx, p.org, slug, "CNAME", opts); err != nil {
			return fmt.Errorf("create CNAME: %w", err)
		}
	}

	if err := p.enablePages(ctx, slug); err != nil {
		return err
	}
	if _, err := p.gh.Repositories.UpdatePages(ctx, p.org, slug, &gh.PagesUpdate{CNAME: gh.Ptr(domain)}); err != nil {
		return fmt.Errorf("set pages domain: %w", err)
	}
	return nil
}

// WriteCNAME keeps the domain in the local folder so later force pushes retain it.
func WriteCNAME(dir, domain string) error {
	return os.WriteFile(filepath.Join(dir, "CNAME"), []byte(domain+"\n"), 0o644)
}
