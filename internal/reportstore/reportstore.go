// Package reportstore writes rendered reports to a local file or an S3 object.
package reportstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
)

// PutObjectAPI is the part of s3iface.S3API used here.
type PutObjectAPI interface {
	PutObjectWithContext(aws.Context, *s3.PutObjectInput, ...request.Option) (*s3.PutObjectOutput, error)
}

// Location is either a local path or s3://bucket/key.
type Location struct {
	Path   string
	Bucket string
	Key    string
}

func (l Location) IsS3() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.IsS3() {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// ParseLocation accepts a file path or an s3:// URI with a non-empty key.
func ParseLocation(raw string) (Location, error) {
	if !strings.HasPrefix(raw, "s3://") {
		if raw == "" {
			return Location{}, fmt.Errorf("empty report location")
		}
		return Location{Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parsing %q: %w", raw, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, fmt.Errorf("s3 location %q needs a bucket and an object key", raw)
	}
	return Location{Bucket: u.Host, Key: key}, nil
}

// Store writes markdown reports. S3 is only used for s3:// locations and may
// be nil otherwise.
type Store struct {
	S3 PutObjectAPI
}

func (s Store) Write(ctx context.Context, loc Location, report string) error {
	if !loc.IsS3() {
		if dir := filepath.Dir(loc.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		return os.WriteFile(loc.Path, []byte(report), 0o644)
	}
	if s.S3 == nil {
		return fmt.Errorf("no S3 client for %s", loc)
	}
	_, err := s.S3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(loc.Bucket),
		Key:         aws.String(loc.Key),
		Body:        strings.NewReader(report),
		ContentType: aws.String("text/markdown; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("uploading report to %s: %w", loc, err)
	}
	return nil
}
