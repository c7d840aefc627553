package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/barakabank/bank-service/internal/models"
)

// CreateDocument persists a document record for an operation
func (r *Repository) CreateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO bank.documents (operation_id, file_name, file_type, storage_path, uploaded_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, uploaded_at`
	err := r.db.QueryRowContext(ctx, query, doc.OperationID, doc.FileName, doc.FileType, doc.StoragePath).
		Scan(&doc.ID, &doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// DocumentByID retrieves a document by its identifier
func (r *Repository) DocumentByID(ctx context.Context, id int64) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, operation_id, file_name, file_type, storage_path, uploaded_at
		FROM bank.documents
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&doc.ID, &doc.OperationID, &doc.FileName, &doc.FileType, &doc.StoragePath, &doc.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return doc, nil
}

// DocumentsByOperation lists documents attached to an operation in upload order
func (r *Repository) DocumentsByOperation(ctx context.Context, operationID int64) ([]models.Document, error) {
	query := `
		SELECT id, operation_id, file_name, file_type, storage_path, uploaded_at
		FROM bank.documents
		WHERE operation_id = $1
		ORDER BY uploaded_at ASC`
	rows, err := r.db.QueryContext(ctx, query, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.ID, &doc.OperationID, &doc.FileName, &doc.FileType, &doc.StoragePath, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return documents, nil
}

// CountDocuments returns the number of documents attached to an operation
func (r *Repository) CountDocuments(ctx context.Context, operationID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM bank.documents WHERE operation_id = $1`
	if err := r.db.QueryRowContext(ctx, query, operationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// DeleteDocument removes a document record
func (r *Repository) DeleteDocument(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bank.documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}
