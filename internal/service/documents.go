package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/barakabank/bank-service/internal/models"
	"github.com/google/uuid"
)

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// AttachDocument stores a supporting file for an operation. Only the
// operation's owner or an agent/admin may attach, and only PDF, JPEG and PNG
// files are accepted.
func (s *Service) AttachDocument(ctx context.Context, identity models.Identity, operationID int64, fileName, contentType string, file io.Reader) (*models.Document, error) {
	op, err := s.store.OperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOperationAccess(identity, op); err != nil {
		return nil, err
	}
	if !allowedDocumentTypes[strings.ToLower(contentType)] {
		return nil, &models.ValidationError{Field: "file", Reason: "only PDF, JPEG and PNG files are accepted"}
	}

	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	storageName := uuid.New().String() + filepath.Ext(fileName)
	storagePath := filepath.Join(s.config.UploadDir, storageName)
	dst, err := os.Create(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(storagePath)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	doc := &models.Document{
		OperationID: op.ID,
		FileName:    fileName,
		FileType:    contentType,
		StoragePath: storageName,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		os.Remove(storagePath)
		return nil, err
	}

	s.log.Infof("Document %d attached to operation %d", doc.ID, op.ID)
	return doc, nil
}

// OperationDocuments lists the documents attached to an operation.
func (s *Service) OperationDocuments(ctx context.Context, identity models.Identity, operationID int64) ([]models.Document, error) {
	op, err := s.store.OperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOperationAccess(identity, op); err != nil {
		return nil, err
	}
	return s.store.DocumentsByOperation(ctx, operationID)
}

// DocumentFile resolves a document and the path of its stored file.
func (s *Service) DocumentFile(ctx context.Context, identity models.Identity, documentID int64) (*models.Document, string, error) {
	doc, err := s.store.DocumentByID(ctx, documentID)
	if err != nil {
		return nil, "", err
	}
	op, err := s.store.OperationByID(ctx, doc.OperationID)
	if err != nil {
		return nil, "", err
	}
	if err := s.authorizeOperationAccess(identity, op); err != nil {
		return nil, "", err
	}
	return doc, filepath.Join(s.config.UploadDir, doc.StoragePath), nil
}

// DeleteDocument removes a document record and its stored file.
func (s *Service) DeleteDocument(ctx context.Context, identity models.Identity, documentID int64) error {
	doc, err := s.store.DocumentByID(ctx, documentID)
	if err != nil {
		return err
	}
	op, err := s.store.OperationByID(ctx, doc.OperationID)
	if err != nil {
		return err
	}
	if err := s.authorizeOperationAccess(identity, op); err != nil {
		return err
	}

	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.config.UploadDir, doc.StoragePath)); err != nil && !os.IsNotExist(err) {
		s.log.Errorf("Failed to remove stored file for document %d: %v", documentID, err)
	}
	s.log.Infof("Document %d deleted from operation %d", documentID, op.ID)
	return nil
}

// authorizeOperationAccess allows the operation's owner and reviewer roles.
func (s *Service) authorizeOperationAccess(identity models.Identity, op *models.Operation) error {
	if identity.HasRole(models.RoleAgent) || identity.HasRole(models.RoleAdmin) {
		return nil
	}
	if identity.AccountID != 0 && identity.AccountID == op.AccountSourceID {
		return nil
	}
	return models.ErrForbidden
}
