package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/attachment/repository"
	"skripta.hr/forum/pkg/apperror"
	"skripta.hr/forum/pkg/storage"
)

const (
	maxFileSize = 10 << 20 // 10 MB
	// Uploads not linked to a topic or reply within this window get cleaned up.
	orphanTTL = 24 * time.Hour
)

var allowedTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/zip":    true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type AttachmentService interface {
	Upload(ctx context.Context, userID uuid.UUID, fileHeader *multipart.FileHeader) (*entity.Attachment, error)
	LinkToTopic(ctx context.Context, userID, topicID uuid.UUID, attachmentIDs []uuid.UUID)
	LinkToReply(ctx context.Context, userID, replyID uuid.UUID, attachmentIDs []uuid.UUID)
	Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, attachmentID uuid.UUID) error
	CleanupOrphans(ctx context.Context) (int, error)
}

type attachmentService struct {
	repo    repository.AttachmentRepository
	storage storage.FileStorage
}

func NewAttachmentService(repo repository.AttachmentRepository, storage storage.FileStorage) AttachmentService {
	return &attachmentService{repo: repo, storage: storage}
}

func (s *attachmentService) Upload(ctx context.Context, userID uuid.UUID, fileHeader *multipart.FileHeader) (*entity.Attachment, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("prijenos datoteka trenutno nije dostupan: %w", apperror.ErrInternal)
	}

	if fileHeader.Size > maxFileSize {
		return nil, fmt.Errorf("datoteka je prevelika (najviše 10 MB): %w", apperror.ErrBadRequest)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("nepodržan tip datoteke: %w", apperror.ErrBadRequest)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fileName := fmt.Sprintf("%s-%s", uuid.New().String(), fileHeader.Filename)
	fileURL, err := s.storage.UploadFile(ctx, file, "forum/attachments", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	attachment := &entity.Attachment{
		FileName:   fileHeader.Filename,
		FileURL:    fileURL,
		FileType:   contentType,
		FileSize:   fileHeader.Size,
		UploadedBy: userID,
	}

	if err := s.repo.Create(ctx, attachment); err != nil {
		// best effort cleanup of the already uploaded blob
		if delErr := s.storage.DeleteFile(ctx, fileURL); delErr != nil {
			log.Printf("failed to delete orphaned upload %s: %v", fileURL, delErr)
		}
		return nil, err
	}

	return attachment, nil
}

// LinkToTopic attaches pending uploads to a topic. Linking is best effort:
// a failed link leaves the attachment orphaned for the cleanup job.
func (s *attachmentService) LinkToTopic(ctx context.Context, userID, topicID uuid.UUID, attachmentIDs []uuid.UUID) {
	for _, id := range attachmentIDs {
		if err := s.repo.LinkToTopic(ctx, id, topicID, userID); err != nil {
			log.Printf("failed to link attachment %s to topic %s: %v", id, topicID, err)
		}
	}
}

func (s *attachmentService) LinkToReply(ctx context.Context, userID, replyID uuid.UUID, attachmentIDs []uuid.UUID) {
	for _, id := range attachmentIDs {
		if err := s.repo.LinkToReply(ctx, id, replyID, userID); err != nil {
			log.Printf("failed to link attachment %s to reply %s: %v", id, replyID, err)
		}
	}
}

func (s *attachmentService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, attachmentID uuid.UUID) error {
	attachment, err := s.repo.FindByID(ctx, attachmentID)
	if err != nil {
		return fmt.Errorf("privitak nije pronađen: %w", apperror.ErrNotFound)
	}

	if attachment.UploadedBy != userID && !isAdmin {
		return fmt.Errorf("nemate pravo obrisati ovaj privitak: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, attachmentID); err != nil {
		return err
	}

	if s.storage != nil {
		if err := s.storage.DeleteFile(ctx, attachment.FileURL); err != nil {
			log.Printf("failed to delete file %s from storage: %v", attachment.FileURL, err)
		}
	}

	return nil
}

func (s *attachmentService) CleanupOrphans(ctx context.Context) (int, error) {
	orphans, err := s.repo.FindOrphansOlderThan(ctx, time.Now().Add(-orphanTTL))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, attachment := range orphans {
		if err := s.repo.Delete(ctx, attachment.ID); err != nil {
			log.Printf("failed to delete orphan attachment %s: %v", attachment.ID, err)
			continue
		}
		if s.storage != nil {
			if err := s.storage.DeleteFile(ctx, attachment.FileURL); err != nil {
				log.Printf("failed to delete orphan file %s: %v", attachment.FileURL, err)
			}
		}
		removed++
	}

	return removed, nil
}
