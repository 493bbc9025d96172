package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/checkers/internal/server/config"
	"github.com/dmitrijs2005/checkers/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRevision() *models.Revision {
	return &models.Revision{
		RefState:    "abc123",
		Parent:      "000fff",
		CheckerUUID: "checks:x1",
		Message:     models.MessageUpdateChecker,
		Author:      models.Author{Name: "Admin", Email: "admin@example.com"},
		CommittedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Content:     []byte(`{"uuid":"checks:x1","name":"Lint"}`),
	}
}

func stubAWS(t *testing.T) {
	t.Helper()
	origLoad, origNew, origPut := loadDefaultAWSConfig, newS3ClientFromConfig, putObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
		putObject = origPut
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		o := s3.Options{}
		for _, fn := range optFns {
			fn(&o)
		}
		if o.BaseEndpoint == nil || *o.BaseEndpoint != "http://minio:9000" {
			t.Errorf("base endpoint not applied: %v", o.BaseEndpoint)
		}
		return &s3.Client{}
	}
}

func testConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://minio:9000",
		S3Bucket:       "revisions",
	}
}

func TestNew_NoBucketIsNop(t *testing.T) {
	a, err := New(context.Background(), &sc.Config{})
	require.NoError(t, err)
	assert.IsType(t, NopArchive{}, a)
	assert.NoError(t, a.Store(context.Background(), sampleRevision()))
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), &sc.Config{})
	require.Error(t, err)
}

func TestNewS3Archive_LoadConfigError(t *testing.T) {
	stubAWS(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := NewS3Archive(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no creds")
}

func TestStore_PutsDocumentUnderRevisionKey(t *testing.T) {
	stubAWS(t)

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		b, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, err
		}
		body = b
		return &s3.PutObjectOutput{}, nil
	}

	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	require.NoError(t, a.Store(context.Background(), sampleRevision()))

	require.NotNil(t, got)
	assert.Equal(t, "revisions", aws.ToString(got.Bucket))
	assert.Equal(t, "checkers/checks:x1/abc123.json", aws.ToString(got.Key))
	assert.Equal(t, "application/json", aws.ToString(got.ContentType))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "abc123", doc["ref_state"])
	assert.Equal(t, "000fff", doc["parent"])
	content, ok := doc["content"].(map[string]any)
	require.True(t, ok, "content must be embedded JSON")
	assert.Equal(t, "Lint", content["name"])
}

func TestStore_PutError(t *testing.T) {
	stubAWS(t)
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket gone")
	}

	a, err := NewS3Archive(context.Background(), testConfig())
	require.NoError(t, err)

	err = a.Store(context.Background(), sampleRevision())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put checkers/checks:x1/abc123.json")
	assert.Contains(t, err.Error(), "bucket gone")
}

func TestEncode_FirstRevisionOmitsParent(t *testing.T) {
	rev := sampleRevision()
	rev.Parent = ""

	b, err := Encode(rev)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"parent"`)
}
