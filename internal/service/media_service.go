package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	config "github.com/maheshrc27/selfpost/configs"
	"github.com/maheshrc27/selfpost/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxUploadSize = 50 << 20

var ErrUnsupportedMedia = errors.New("only image and video uploads are allowed")

// ObjectStore is the slice of the S3 API used for uploads.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type MediaService interface {
	Upload(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*transfer.UploadResult, error)
	UploadBytes(ctx context.Context, userID uuid.UUID, data []byte) (*transfer.UploadResult, error)
}

type mediaService struct {
	store     ObjectStore
	bucket    string
	publicURL string
}

func NewMediaService(store ObjectStore, bucket, publicURL string) MediaService {
	return &mediaService{
		store:     store,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// NewR2Client builds an S3 client against the Cloudflare R2 endpoint of the account.
func NewR2Client(ctx context.Context, cfg config.R2) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	}), nil
}

func (s *mediaService) Upload(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*transfer.UploadResult, error) {
	if file == nil {
		return nil, errors.New("no file provided")
	}
	if file.Size > maxUploadSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxUploadSize)
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}
	return s.UploadBytes(ctx, userID, data)
}

func (s *mediaService) UploadBytes(ctx context.Context, userID uuid.UUID, data []byte) (*transfer.UploadResult, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return nil, ErrUnsupportedMedia
	}
	if !filetype.IsImage(data) && !filetype.IsVideo(data) {
		return nil, ErrUnsupportedMedia
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("uploads/%s/%s.%s", userID, id, kind.Extension)

	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		slog.Error("upload failed", "key", key, "error", err)
		return nil, err
	}

	return &transfer.UploadResult{
		Key:         key,
		URL:         s.publicURL + "/" + key,
		ContentType: kind.MIME.Value,
	}, nil
}
