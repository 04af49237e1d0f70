package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/config"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	u := newUploader(fake, "plans-bucket", "https://cdn.example.com/")

	url, err := u.Upload(context.Background(), "/plans/1/abc-diet.pdf", []byte("%PDF-1.3"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/plans/1/abc-diet.pdf", url)
	assert.Equal(t, "plans-bucket", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "plans/1/abc-diet.pdf", aws.ToString(fake.input.Key))
	assert.Equal(t, "application/pdf", aws.ToString(fake.input.ContentType))
	assert.Equal(t, []byte("%PDF-1.3"), fake.body)
}

func TestUploadError(t *testing.T) {
	u := newUploader(&fakeS3{err: errors.New("access denied")}, "b", "https://cdn.example.com")
	_, err := u.Upload(context.Background(), "k.pdf", []byte("x"), "application/pdf")
	assert.ErrorContains(t, err, "access denied")
}

func TestNewS3UploaderRequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), config.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
