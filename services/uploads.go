package services

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// UploadedFile is a file received from a client, independent of the transport.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

var (
	allowedUploadExtensions = map[string]struct{}{
		".pdf":  {},
		".jpg":  {},
		".jpeg": {},
		".png":  {},
	}
	allowedUploadTypes = map[string]struct{}{
		"application/pdf": {},
		"image/jpeg":      {},
		"image/png":       {},
	}
)

// UploadPolicy bounds accepted attachments.
type UploadPolicy struct {
	MaxBytes int64
}

func NewUploadPolicy(maxKB int64) UploadPolicy {
	if maxKB <= 0 {
		maxKB = 2048
	}
	return UploadPolicy{MaxBytes: maxKB * 1024}
}

// Check returns the sniffed MIME type, or a user-facing message when the file
// is rejected.
func (p UploadPolicy) Check(f UploadedFile) (string, string) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if _, ok := allowedUploadExtensions[ext]; !ok {
		return "", "File harus berformat pdf, jpg, jpeg, atau png."
	}
	if f.Size <= 0 {
		return "", "File kosong."
	}
	if p.MaxBytes > 0 && f.Size > p.MaxBytes {
		return "", fmt.Sprintf("Ukuran file maksimal %d KB.", p.MaxBytes/1024)
	}
	if f.Open == nil {
		return "", "File tidak dapat dibaca."
	}

	rc, err := f.Open()
	if err != nil {
		return "", "File tidak dapat dibaca."
	}
	defer rc.Close()

	detected, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", "File tidak dapat dibaca."
	}
	for mt := detected; mt != nil; mt = mt.Parent() {
		if _, ok := allowedUploadTypes[mt.String()]; ok {
			return mt.String(), ""
		}
	}
	return "", "Isi file tidak sesuai dengan format pdf, jpg, jpeg, atau png."
}

// declaredType prefers the client-declared MIME type, falling back to the sniffed one.
func declaredType(f UploadedFile, sniffed string) string {
	if ct := strings.TrimSpace(f.ContentType); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return sniffed
}

// safeFileName strips any directory component and characters unsafe on disk.
func safeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "file"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", ":", "_", "..", "_")
	return replacer.Replace(base)
}
