package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
}

func (f *fakeStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestUploadBytesStoresImages(t *testing.T) {
	store := &fakeStore{}
	ms := NewMediaService(store, "media", "https://cdn.example.com/")
	userID := uuid.New()

	res, err := ms.UploadBytes(context.Background(), userID, pngHeader)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, "uploads/"+userID.String()+"/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)
	assert.Equal(t, "image/png", res.ContentType)

	require.Len(t, store.inputs, 1)
	assert.Equal(t, "media", aws.ToString(store.inputs[0].Bucket))
	assert.Equal(t, res.Key, aws.ToString(store.inputs[0].Key))
	assert.Equal(t, "image/png", aws.ToString(store.inputs[0].ContentType))
	assert.Equal(t, pngHeader, store.bodies[0])
}

func TestUploadBytesRejectsOtherContent(t *testing.T) {
	store := &fakeStore{}
	ms := NewMediaService(store, "media", "https://cdn.example.com")

	_, err := ms.UploadBytes(context.Background(), uuid.New(), []byte("just some text"))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	pdf := []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3")
	_, err = ms.UploadBytes(context.Background(), uuid.New(), pdf)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	assert.Empty(t, store.inputs)
}
