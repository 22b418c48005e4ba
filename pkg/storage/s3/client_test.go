package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/futamarket/market-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	puts    []*s3.PutObjectInput
	bodies  []string
	putErr  error
	headErr error
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(b))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestPutWritesObjectAndReturnsURL(t *testing.T) {
	api := &fakeAPI{}
	client := newClient(api, config.S3Config{Bucket: "media", Region: "eu-west-1"})

	u, err := client.Put(context.Background(), "/futa-market/image/1/a.png", "image/png", []byte("img"))
	require.NoError(t, err)

	require.Len(t, api.puts, 1)
	assert.Equal(t, "media", aws.ToString(api.puts[0].Bucket))
	assert.Equal(t, "futa-market/image/1/a.png", aws.ToString(api.puts[0].Key))
	assert.Equal(t, "image/png", aws.ToString(api.puts[0].ContentType))
	assert.Equal(t, "img", api.bodies[0])
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/futa-market/image/1/a.png", u)
}

func TestPutWrapsBackendError(t *testing.T) {
	client := newClient(&fakeAPI{putErr: errors.New("AccessDenied")}, config.S3Config{Bucket: "media"})
	_, err := client.Put(context.Background(), "k", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDenied")

	_, err = client.Put(context.Background(), "", "", nil)
	assert.ErrorContains(t, err, "key is required")
}

func TestBaseURLSelection(t *testing.T) {
	withPublic := newClient(&fakeAPI{}, config.S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/x.png", withPublic.URL("x.png"))

	withEndpoint := newClient(&fakeAPI{}, config.S3Config{Bucket: "b", Endpoint: "http://minio:9000"})
	assert.Equal(t, "http://minio:9000/b/x.png", withEndpoint.URL("/x.png"))
}

func TestURLEscapesKeySegments(t *testing.T) {
	api := &fakeAPI{}
	client := newClient(api, config.S3Config{Bucket: "b", PublicURL: "https://cdn.example.com"})

	u, err := client.Put(context.Background(), "futa-market/image/1/lamp#1 100%.png", "image/png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "futa-market/image/1/lamp#1 100%.png", aws.ToString(api.puts[0].Key))
	assert.Equal(t, "https://cdn.example.com/futa-market/image/1/lamp%231%20100%25.png", u)
	assert.Equal(t, "https://cdn.example.com/what%3F.png", client.URL("what?.png"))
}

func TestPing(t *testing.T) {
	client := newClient(&fakeAPI{headErr: errors.New("NotFound")}, config.S3Config{Bucket: "b"})
	assert.ErrorContains(t, client.Ping(context.Background()), "NotFound")
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), config.S3Config{}, nil)
	assert.Error(t, err)
}
