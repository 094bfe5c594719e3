package repository

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"chat_presence_service/pkg/database"
	errprocess "chat_presence_service/pkg/err"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Image decoded attachment ready for upload
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// AttachmentRepository binary storage that returns a stable url
type AttachmentRepository interface {
	Upload(ctx context.Context, img Image) (string, error)
}

type minioAttachmentRepository struct {
	client *database.MinIOClient
	prefix string
}

// NewAttachmentRepository create a AttachmentRepository
func NewAttachmentRepository(client *database.MinIOClient) AttachmentRepository {
	return &minioAttachmentRepository{client: client, prefix: "messages"}
}

func (r *minioAttachmentRepository) Upload(ctx context.Context, img Image) (string, error) {
	objectName := fmt.Sprintf("%s/%s%s", r.prefix, uuid.NewString(), img.Extension)
	if err := r.client.UploadBytes(ctx, objectName, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return r.client.ObjectURL(objectName), nil
}

// DecodeImage accept "data:image/png;base64,...." or a bare base64 string
// 實際型別以內容判斷, 不信任 data url 宣告的 mime
func DecodeImage(raw string, maxBytes int64) (Image, error) {
	payload := raw
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.HasSuffix(payload[:idx], ";base64") {
			return Image{}, errprocess.New(errprocess.ErrValidation, "image must be a base64 data url")
		}
		payload = payload[idx+1:]
	}

	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return Image{}, errprocess.New(errprocess.ErrValidation, "image exceeds %d bytes", maxBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, errprocess.New(errprocess.ErrValidation, "image is not valid base64")
	}
	if len(data) == 0 {
		return Image{}, errprocess.New(errprocess.ErrValidation, "image is empty")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Image{}, errprocess.New(errprocess.ErrValidation, "image exceeds %d bytes", maxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Image{}, errprocess.New(errprocess.ErrValidation, "unsupported attachment type %s", mt.String())
	}

	return Image{
		Data:        data,
		ContentType: mt.String(),
		Extension:   mt.Extension(),
	}, nil
}
