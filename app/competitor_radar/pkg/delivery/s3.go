package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/config"
	"github.com/iWorld-y/competitor_radar/app/competitor_radar/pkg/report"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Channel 把报告上传到对象存储
type S3Channel struct {
	client objectPutter
}

// NewS3Channel 使用默认凭据链创建 S3 渠道
func NewS3Channel(ctx context.Context, cfg config.S3Config) (*S3Channel, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Channel{client: client}, nil
}

var _ Channel = (*S3Channel)(nil)

// Deliver 实现 Channel。key 以 / 结尾时追加生成的文件名，
// .md 结尾上传 Markdown，其余上传 HTML。
func (c *S3Channel) Deliver(ctx context.Context, doc *report.Document, destination string) error {
	bucket, key, err := ParseS3URI(destination)
	if err != nil {
		return err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		key += doc.Filename("html")
	}

	body, contentType := doc.HTML, "text/html; charset=utf-8"
	if strings.HasSuffix(key, ".md") {
		body, contentType = doc.Markdown, "text/markdown; charset=utf-8"
	}

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// ParseS3URI 解析 s3://bucket/key
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not an s3 uri", ErrUnsupportedDestination, uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: %q has no bucket", ErrUnsupportedDestination, uri)
	}
	return bucket, key, nil
}
