// Package publish uploads finished videos to S3-compatible storage.
package publish

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Target is an s3://bucket/prefix destination.
type Target struct {
	Bucket string
	Prefix string
}

func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("publish target %q: %w", raw, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return Target{}, fmt.Errorf("publish target %q: want s3://bucket[/prefix]", raw)
	}
	return Target{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// Key is the object key for a local file.
func (t Target) Key(localPath string) string {
	return path.Join(t.Prefix, filepath.Base(localPath))
}

func (t Target) String() string {
	return "s3://" + path.Join(t.Bucket, t.Prefix)
}

// PutObjectAPI is the part of the S3 client the publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Publisher struct {
	client PutObjectAPI
}

func New(client PutObjectAPI) *Publisher {
	return &Publisher{client: client}
}

// NewS3 builds a publisher on the default AWS credential chain.
func NewS3(ctx context.Context, region string) (*Publisher, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return New(s3.NewFromConfig(awsCfg)), nil
}

// The stdlib table has no video types unless the host ships mime.types.
var videoTypes = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".mkv": "video/x-matroska",
	".txt": "text/plain; charset=utf-8",
}

func contentTypeOf(p string) string {
	ext := strings.ToLower(filepath.Ext(p))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Upload puts localPath under the target prefix and returns its s3:// URL.
func (p *Publisher) Upload(ctx context.Context, t Target, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	contentType := contentTypeOf(localPath)

	key := t.Key(localPath)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return "s3://" + t.Bucket + "/" + key, nil
}
