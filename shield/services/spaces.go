package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gatekeep/shield/internal/domain/verification"
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SpacesService writes verification audit records to a DigitalOcean Spaces
// bucket, one JSON object per verified request.
type SpacesService struct {
	client objectPutter
	bucket string
	prefix string
}

func NewSpacesService(ctx context.Context, key, secret, region, bucket, prefix string) (*SpacesService, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.digitaloceanspaces.com", region))
	})
	return newSpacesService(client, bucket, prefix), nil
}

func newSpacesService(client objectPutter, bucket, prefix string) *SpacesService {
	return &SpacesService{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *SpacesService) objectKey(rec verification.AuditRecord) string {
	at := rec.VerifiedAt.UTC()
	return path.Join(s.prefix,
		rec.ChannelID.String(),
		at.Format("2006/01/02"),
		rec.RequestID+".json",
	)
}

func (s *SpacesService) Archive(ctx context.Context, rec verification.AuditRecord) error {
	start := time.Now()
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	key := s.objectKey(rec)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload audit record %s: %w", key, err)
	}

	slog.Debug("Audit record archived",
		slog.String("type", "sys"),
		slog.String("key", key),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *SpacesService) GetBucket() string {
	return s.bucket
}
