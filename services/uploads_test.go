package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")
	testJPG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}
)

func memUpload(name, contentType string, content []byte) UploadedFile {
	return UploadedFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

func TestUploadPolicyCheck(t *testing.T) {
	policy := NewUploadPolicy(1)

	cases := []struct {
		name     string
		file     UploadedFile
		wantType string
		wantMsg  string
	}{
		{name: "pdf", file: memUpload("kk.PDF", "application/pdf", testPDF), wantType: "application/pdf"},
		{name: "jpeg", file: memUpload("foto.jpeg", "", testJPG), wantType: "image/jpeg"},
		{name: "extension", file: memUpload("data.docx", "application/msword", testPDF), wantMsg: "berformat"},
		{name: "empty", file: memUpload("kosong.pdf", "application/pdf", nil), wantMsg: "kosong"},
		{name: "too large", file: memUpload("besar.pdf", "application/pdf", append(append([]byte(nil), testPDF...), make([]byte, 1100)...)), wantMsg: "maksimal 1 KB"},
		{name: "disguised", file: memUpload("skrip.pdf", "application/pdf", []byte("#!/bin/sh\necho pwned\n")), wantMsg: "Isi file"},
		{name: "unreadable", file: UploadedFile{Name: "x.pdf", Size: 10, Open: func() (io.ReadCloser, error) { return nil, errors.New("gone") }}, wantMsg: "tidak dapat dibaca"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotType, gotMsg := policy.Check(tc.file)
			if tc.wantMsg == "" {
				assert.Empty(t, gotMsg)
				assert.Equal(t, tc.wantType, gotType)
				return
			}
			assert.Contains(t, gotMsg, tc.wantMsg)
		})
	}
}

func TestNewUploadPolicyDefaultsTo2MB(t *testing.T) {
	assert.EqualValues(t, 2048*1024, NewUploadPolicy(0).MaxBytes)
	assert.EqualValues(t, 5*1024, NewUploadPolicy(5).MaxBytes)
}

func TestDeclaredTypeFallsBackToSniffed(t *testing.T) {
	assert.Equal(t, "image/png", declaredType(UploadedFile{ContentType: "image/png"}, "application/pdf"))
	assert.Equal(t, "application/pdf", declaredType(UploadedFile{ContentType: "application/octet-stream"}, "application/pdf"))
	assert.Equal(t, "image/jpeg", declaredType(UploadedFile{}, "image/jpeg"))
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "surat_pengantar.pdf", safeFileName("surat pengantar.pdf"))
	assert.Equal(t, "passwd", safeFileName("../../etc/passwd"))
	assert.Equal(t, "ktp.png", safeFileName(`C:\Users\budi\ktp.png`))
	assert.Equal(t, "file", safeFileName(""))
}

func TestDiskStorageSaveResolveRemove(t *testing.T) {
	root := t.TempDir()
	storage, err := NewDiskStorage(root)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(root, DocumentsArea))
	assert.DirExists(t, filepath.Join(root, ResultsArea))

	ctx := context.Background()
	n, err := storage.Save(ctx, "documents/1_0_kk.pdf", bytes.NewReader(testPDF))
	require.NoError(t, err)
	assert.EqualValues(t, len(testPDF), n)

	full, err := storage.Path("documents/1_0_kk.pdf")
	require.NoError(t, err)
	content, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, testPDF, content)

	_, err = storage.Save(ctx, "documents/1_0_kk.pdf", strings.NewReader("again"))
	assert.Error(t, err, "existing files are never overwritten")

	escaped, err := storage.Save(ctx, "../../outside.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, escaped)
	assert.FileExists(t, filepath.Join(storage.Root(), "outside.txt"))

	require.NoError(t, storage.Remove("documents/1_0_kk.pdf"))
	require.NoError(t, storage.Remove("documents/1_0_kk.pdf"))
	_, err = storage.Path("documents/1_0_kk.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = storage.Path("documents")
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = storage.Save(cancelled, "documents/late.pdf", bytes.NewReader(testPDF))
	assert.ErrorIs(t, err, context.Canceled)
}
