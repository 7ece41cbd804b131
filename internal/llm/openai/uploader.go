package openai

import (
	"context"

	"radar-backend/internal/llm"
)

// FileUploader is the provider-file uploader capability. It uploads each
// attachment individually and returns the resulting id list; it does not
// create a vector store (that is the fallback path's job).
type FileUploader struct {
	client *Client
}

// NewFileUploader constructs a FileUploader over an existing client.
func NewFileUploader(client *Client) *FileUploader {
	return &FileUploader{client: client}
}

// UploadFiles uploads all attachments and returns their provider ids.
func (u *FileUploader) UploadFiles(ctx context.Context, files []llm.File) (llm.UploadResult, error) {
	if len(files) == 0 {
		return llm.UploadResult{}, nil
	}
	ids := make([]string, 0, len(files))
	for _, file := range files {
		id, err := u.client.UploadFile(ctx, file)
		if err != nil {
			return llm.UploadResult{}, err
		}
		ids = append(ids, id)
	}
	return llm.UploadResult{FileIDs: ids}, nil
}

var _ llm.Uploader = (*FileUploader)(nil)
