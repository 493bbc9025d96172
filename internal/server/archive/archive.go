// Package archive copies committed checker revisions to object storage so
// the audit trail survives outside the database.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/checkers/internal/server/config"
	"github.com/dmitrijs2005/checkers/internal/server/models"
)

// Archive stores a copy of a committed revision.
type Archive interface {
	Store(ctx context.Context, rev *models.Revision) error
}

// NopArchive discards revisions. It is used when no bucket is configured.
type NopArchive struct{}

func (NopArchive) Store(context.Context, *models.Revision) error { return nil }

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Archive writes revisions to an S3-compatible bucket.
type S3Archive struct {
	client *s3.Client
	bucket string
}

// New returns an S3Archive for the configured bucket, or NopArchive when
// the bucket is empty.
func New(ctx context.Context, cfg *sc.Config) (Archive, error) {
	if cfg.S3Bucket == "" {
		return NopArchive{}, nil
	}
	return NewS3Archive(ctx, cfg)
}

// NewS3Archive builds the S3 client from cfg.
func NewS3Archive(ctx context.Context, cfg *sc.Config) (*S3Archive, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Archive{client: client, bucket: cfg.S3Bucket}, nil
}

// Key returns the object key of a revision.
func Key(rev *models.Revision) string {
	return fmt.Sprintf("checkers/%s/%s.json", rev.CheckerUUID, rev.RefState)
}

// document is the archived form of a revision; the checker content is kept
// as embedded JSON rather than base64.
type document struct {
	RefState    string          `json:"ref_state"`
	Parent      string          `json:"parent,omitempty"`
	CheckerUUID string          `json:"checker_uuid"`
	Message     string          `json:"message"`
	Author      models.Author   `json:"author"`
	CommittedAt time.Time       `json:"committed_at"`
	Content     json.RawMessage `json:"content"`
}

// Encode renders rev as the archived JSON document.
func Encode(rev *models.Revision) ([]byte, error) {
	return json.Marshal(document{
		RefState:    rev.RefState,
		Parent:      rev.Parent,
		CheckerUUID: rev.CheckerUUID,
		Message:     rev.Message,
		Author:      rev.Author,
		CommittedAt: rev.CommittedAt.UTC(),
		Content:     json.RawMessage(rev.Content),
	})
}

func (a *S3Archive) Store(ctx context.Context, rev *models.Revision) error {
	body, err := Encode(rev)
	if err != nil {
		return fmt.Errorf("encode revision %s: %w", rev.RefState, err)
	}

	key := Key(rev)
	_, err = putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
