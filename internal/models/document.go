package models

import "time"

// Document is a supporting file attached to an operation. Large operations
// cannot be approved without at least one.
type Document struct {
	ID          int64     `json:"id"`
	OperationID int64     `json:"operation_id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	StoragePath string    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
