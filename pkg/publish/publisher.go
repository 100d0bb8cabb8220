package publish

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

const (
	TargetGitHub = "github"
	TargetMinio  = "minio"
)

var (
	ErrUnknownTarget = errors.New("unknown publish target")
	ErrNotPublished  = errors.New("site has not been published to GitHub Pages")
)

// Site is a generated folder ready to be served as static files.
type Site struct {
	Dir  string
	Slug string
}

type Result struct {
	Target   string `json:"target"`
	URL      string `json:"url"`
	Revision string `json:"revision,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, site Site) (*Result, error)
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^\w-]`)
)

// Slug turns a project name into a repository or key prefix name.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugInvalid.ReplaceAllString(s, "")
}
