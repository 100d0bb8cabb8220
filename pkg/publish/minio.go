package publish

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio uploads a site folder under <bucket>/<slug>/ on any S3-compatible store.
type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

var _ Publisher = (*Minio)(nil)

func NewMinio(endpoint, accessKey, secretKey, bucket string, useSSL bool, publicURL string) (*Minio, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}

	return &Minio{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

type siteObject struct {
	Key         string
	Path        string
	ContentType string
}

// siteObjects lists the files to upload. Git metadata and dotfiles are left out.
func siteObjects(dir, slug string) ([]siteObject, error) {
	var objects []siteObject
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		contentType := mime.TypeByExtension(filepath.Ext(p))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		objects = append(objects, siteObject{
			Key:         path.Join(slug, filepath.ToSlash(rel)),
			Path:        p,
			ContentType: contentType,
		})
		return nil
	})
	return objects, err
}

func (m *Minio) Publish(ctx context.Context, site Site) (*Result, error) {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	objects, err := siteObjects(site.Dir, site.Slug)
	if err != nil {
		return nil, fmt.Errorf("list site files: %w", err)
	}
	for _, obj := range objects {
		if _, err := m.client.FPutObject(ctx, m.bucket, obj.Key, obj.Path, minio.PutObjectOptions{
			ContentType: obj.ContentType,
		}); err != nil {
			return nil, fmt.Errorf("upload %s: %w", obj.Key, err)
		}
	}

	return &Result{
		Target: TargetMinio,
		URL:    fmt.Sprintf("%s/%s/index.html", m.publicURL, site.Slug),
	}, nil
}
