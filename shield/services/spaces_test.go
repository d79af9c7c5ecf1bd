package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gatekeep/shield/internal/domain/verification"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestSpacesService_Archive(t *testing.T) {
	putter := &fakePutter{}
	svc := newSpacesService(putter, "audit", "/shield/verifications/")

	rec := verification.AuditRecord{
		RequestID:   "abc123",
		ChannelID:   42,
		OwnerID:     7,
		RequesterID: 9,
		Address:     "10.0.0.1",
		InviteLink:  "https://discord.gg/xyz",
		VerifiedAt:  time.Date(2026, 5, 4, 23, 59, 0, 0, time.UTC),
	}
	require.NoError(t, svc.Archive(context.Background(), rec))

	require.Len(t, putter.inputs, 1)
	require.Equal(t, "audit", *putter.inputs[0].Bucket)
	require.Equal(t, "shield/verifications/42/2026/05/04/abc123.json", *putter.inputs[0].Key)
	require.Equal(t, "application/json", *putter.inputs[0].ContentType)

	var got verification.AuditRecord
	require.NoError(t, json.Unmarshal(putter.bodies[0], &got))
	require.Equal(t, rec.RequestID, got.RequestID)
	require.Equal(t, rec.Address, got.Address)
}

func TestSpacesService_ArchiveError(t *testing.T) {
	svc := newSpacesService(&fakePutter{err: errors.New("denied")}, "audit", "")
	err := svc.Archive(context.Background(), verification.AuditRecord{RequestID: "r", ChannelID: 1})
	require.ErrorContains(t, err, "failed to upload audit record 1/")
}
