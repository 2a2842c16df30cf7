package controllers

import (
	"io"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"public-complaint-api/services"
)

func uploadedFile(fh *multipart.FileHeader) services.UploadedFile {
	return services.UploadedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// collectFiles gathers files sent as key, key[] or key[<n>], in submission order.
func collectFiles(c *gin.Context, key string) []services.UploadedFile {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}

	var files []services.UploadedFile
	for _, name := range []string{key, key + "[]"} {
		for _, fh := range form.File[name] {
			files = append(files, uploadedFile(fh))
		}
	}

	type indexed struct {
		idx  int
		file *multipart.FileHeader
	}
	var numbered []indexed
	prefix := key + "["
	for name, headers := range form.File {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, "]") || name == key+"[]" {
			continue
		}
		idx, err := strconv.Atoi(name[len(prefix) : len(name)-1])
		if err != nil {
			continue
		}
		for _, fh := range headers {
			numbered = append(numbered, indexed{idx: idx, file: fh})
		}
	}
	sort.SliceStable(numbered, func(i, j int) bool { return numbered[i].idx < numbered[j].idx })
	for _, n := range numbered {
		files = append(files, uploadedFile(n.file))
	}
	return files
}

// singleFile returns the file sent under key, if any.
func singleFile(c *gin.Context, key string) *services.UploadedFile {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil
	}
	fh, err := c.FormFile(key)
	if err != nil {
		return nil
	}
	f := uploadedFile(fh)
	return &f
}
