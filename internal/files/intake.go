package files

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lexpravo/intake-api/internal/models"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	"go.uber.org/zap"
)

// Uploader stores attachment bytes. Implemented by pkg/storage; mocked in
// tests.
type Uploader interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GenerateKey(sessionKey, originalFileName string) string
}

// Limits bound a single draft's attachments
type Limits struct {
	MaxFiles     int
	MaxSizeBytes int64
}

// DefaultLimits returns the product limits: 5 files of up to 10 MiB each
func DefaultLimits() Limits {
	return Limits{
		MaxFiles:     5,
		MaxSizeBytes: 10 * 1024 * 1024,
	}
}

// allowedMimeTypes is the attachment allow-list: documents and photos a
// client would reasonably attach to a legal question.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// Intake validates and stages user-selected files into attachment records
type Intake struct {
	storage Uploader
	limits  Limits
}

// NewIntake creates a file intake with the given storage backend. A nil
// backend is allowed in development; files are then staged as metadata only.
func NewIntake(storage Uploader, limits Limits) *Intake {
	return &Intake{
		storage: storage,
		limits:  limits,
	}
}

type stagedUpload struct {
	attachment models.FileAttachment
	data       []byte
}

// Stage validates each upload against the limits and stores the accepted
// ones. Rejections are reported per file and never discard already-accepted
// attachments; one file failing to store does not abort its siblings.
// Returns the attachments that were staged and the per-file rejections.
func (i *Intake) Stage(
	ctx context.Context,
	sessionKey string,
	existing []models.FileAttachment,
	uploads []models.FileUpload,
) ([]models.FileAttachment, []models.FileRejection) {

	var accepted []stagedUpload
	var rejections []models.FileRejection

	slots := i.limits.MaxFiles - len(existing)

	for _, upload := range uploads {
		if len(accepted) >= slots {
			rejections = append(rejections, models.FileRejection{
				Name:   upload.Name,
				Reason: fmt.Sprintf("Можно прикрепить не более %d файлов", i.limits.MaxFiles),
			})
			metrics.FileUploads.WithLabelValues("rejected_count").Inc()
			continue
		}

		if !allowedMimeTypes[strings.ToLower(upload.MimeType)] {
			rejections = append(rejections, models.FileRejection{
				Name:   upload.Name,
				Reason: "Недопустимый формат файла (PDF, DOC, DOCX, JPG, PNG)",
			})
			metrics.FileUploads.WithLabelValues("rejected_type").Inc()
			continue
		}

		data, err := decodeUpload(upload.Data)
		if err != nil {
			rejections = append(rejections, models.FileRejection{
				Name:   upload.Name,
				Reason: "Не удалось прочитать файл",
			})
			metrics.FileUploads.WithLabelValues("rejected_encoding").Inc()
			continue
		}

		if int64(len(data)) > i.limits.MaxSizeBytes {
			rejections = append(rejections, models.FileRejection{
				Name:   upload.Name,
				Reason: fmt.Sprintf("Файл больше %d МБ", i.limits.MaxSizeBytes/(1024*1024)),
			})
			metrics.FileUploads.WithLabelValues("rejected_size").Inc()
			continue
		}

		accepted = append(accepted, stagedUpload{
			attachment: models.FileAttachment{
				ID:        uuid.NewString(),
				Name:      upload.Name,
				SizeBytes: int64(len(data)),
				MimeType:  strings.ToLower(upload.MimeType),
			},
			data: data,
		})
	}

	staged := i.store(ctx, sessionKey, accepted, &rejections)

	return staged, rejections
}

// store uploads accepted files concurrently. Each upload failure converts
// that file into a rejection without touching its siblings.
func (i *Intake) store(
	ctx context.Context,
	sessionKey string,
	accepted []stagedUpload,
	rejections *[]models.FileRejection,
) []models.FileAttachment {

	if i.storage == nil {
		// No object storage configured (development): stage metadata only
		staged := make([]models.FileAttachment, 0, len(accepted))
		for _, u := range accepted {
			staged = append(staged, u.attachment)
			metrics.FileUploads.WithLabelValues("success").Inc()
		}
		return staged
	}

	type result struct {
		attachment models.FileAttachment
		err        error
	}

	results := make([]result, len(accepted))
	var wg sync.WaitGroup

	for idx, u := range accepted {
		wg.Add(1)
		go func(idx int, u stagedUpload) {
			defer wg.Done()

			key := i.storage.GenerateKey(sessionKey, u.attachment.Name)
			url, err := i.storage.Upload(ctx, u.data, key, u.attachment.MimeType)
			if err != nil {
				results[idx] = result{attachment: u.attachment, err: err}
				return
			}

			u.attachment.StorageKey = key
			u.attachment.URL = url
			results[idx] = result{attachment: u.attachment}
		}(idx, u)
	}

	wg.Wait()

	var staged []models.FileAttachment
	for _, r := range results {
		if r.err != nil {
			logger.Error("Attachment upload failed",
				zap.Error(r.err),
				zap.String("file", r.attachment.Name))
			*rejections = append(*rejections, models.FileRejection{
				Name:   r.attachment.Name,
				Reason: "Не удалось загрузить файл, попробуйте ещё раз",
			})
			metrics.FileUploads.WithLabelValues("error").Inc()
			continue
		}
		staged = append(staged, r.attachment)
		metrics.FileUploads.WithLabelValues("success").Inc()
	}

	return staged
}

// Discard deletes the stored objects behind attachments that will not be
// kept, best-effort. Used when a batch is abandoned after some of its files
// were already uploaded.
func (i *Intake) Discard(ctx context.Context, attachments []models.FileAttachment) {
	if i.storage == nil {
		return
	}
	for _, a := range attachments {
		if a.StorageKey == "" {
			continue
		}
		if err := i.storage.Delete(ctx, a.StorageKey); err != nil {
			logger.Warn("Failed to delete discarded attachment",
				zap.Error(err),
				zap.String("key", a.StorageKey))
		}
	}
}

// Remove drops a staged attachment by id, deleting the stored object
// best-effort. Returns the remaining attachments and whether the id was
// found.
func (i *Intake) Remove(ctx context.Context, attachments []models.FileAttachment, id string) ([]models.FileAttachment, bool) {
	remaining := make([]models.FileAttachment, 0, len(attachments))
	found := false

	for _, a := range attachments {
		if a.ID == id {
			found = true
			if i.storage != nil && a.StorageKey != "" {
				if err := i.storage.Delete(ctx, a.StorageKey); err != nil {
					// The snapshot no longer references the object; a
					// leaked object is cleaned up by bucket lifecycle rules
					logger.Warn("Failed to delete stored attachment",
						zap.Error(err),
						zap.String("key", a.StorageKey))
				}
			}
			continue
		}
		remaining = append(remaining, a)
	}

	return remaining, found
}

// decodeUpload decodes base64 content, tolerating the data-URI form the
// browser FileReader produces (data:application/pdf;base64,...).
func decodeUpload(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		parts := strings.SplitN(data, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid data URI")
		}
		data = parts[1]
	}
	return base64.StdEncoding.DecodeString(data)
}
