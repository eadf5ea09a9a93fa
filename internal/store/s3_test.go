package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smokebuddy/internal/types"
)

// --- Mock S3 Object Client ---

// mockS3ObjectClient is an in-memory S3ObjectClient keyed by "bucket/key".
type mockS3ObjectClient struct {
	objects map[string][]byte
	getErr  error
	putErr  error
	headErr error
	puts    int
}

func newMockS3ObjectClient() *mockS3ObjectClient {
	return &mockS3ObjectClient{objects: make(map[string][]byte)}
}

func (m *mockS3ObjectClient) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3ObjectClient) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	m.puts++
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3ObjectClient) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, m.headErr
}

func TestS3Store_Load_CreatesDefaultOnNoSuchKey(t *testing.T) {
	client := newMockS3ObjectClient()
	s := NewS3Store(client, "state-bucket", "counter.json")

	rec, err := s.Load(context.Background(), "2026-02-06")
	require.NoError(t, err)
	assert.Equal(t, types.CounterRecord{Date: "2026-02-06"}, *rec)
	assert.Equal(t, 1, client.puts)
	assert.Contains(t, client.objects, "state-bucket/counter.json")
}

func TestS3Store_SaveThenLoad(t *testing.T) {
	client := newMockS3ObjectClient()
	s := NewS3Store(client, "state-bucket", "bots/counter.json")
	ctx := context.Background()

	want := &types.CounterRecord{Date: "2026-02-06", Today: 21, Yesterday: 30, Streak: 2}
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Load(ctx, "2026-02-07")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, client.puts, "loading an existing object must not write")
}

func TestS3Store_Load_GetFailure(t *testing.T) {
	client := newMockS3ObjectClient()
	client.getErr = errors.New("access denied")

	_, err := NewS3Store(client, "b", "k").Load(context.Background(), "2026-02-06")
	require.Error(t, err)
	assert.True(t, types.IsStorageError(err))
	assert.Zero(t, client.puts)
}

func TestS3Store_Load_CorruptObject(t *testing.T) {
	client := newMockS3ObjectClient()
	client.objects["b/k"] = []byte("[]")

	_, err := NewS3Store(client, "b", "k").Load(context.Background(), "2026-02-06")
	require.Error(t, err)
	assert.True(t, types.IsStorageError(err))
}

func TestS3Store_Save_PutFailure(t *testing.T) {
	client := newMockS3ObjectClient()
	client.putErr = errors.New("slow down")

	err := NewS3Store(client, "b", "k").Save(context.Background(), types.NewCounterRecord("2026-02-06"))
	require.Error(t, err)
	assert.True(t, types.IsStorageError(err))
}

func TestS3Store_Check(t *testing.T) {
	client := newMockS3ObjectClient()
	s := NewS3Store(client, "b", "k")
	assert.NoError(t, s.Check(context.Background()))

	client.headErr = errors.New("not found")
	assert.Error(t, s.Check(context.Background()))
}
