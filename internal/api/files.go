package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mzalewski-wsm/studium/internal/types"
)

const maxUploadSize = 20 << 20 // 20 MB

var allowedUploadExtensions = []string{
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".txt", ".md", ".csv", ".zip", ".png", ".jpg", ".jpeg", ".gif",
}

var allowedPictureExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

var allowedMimePrefixes = []string{
	"image/", "text/", "application/pdf", "application/zip",
	"application/msword", "application/vnd.", "application/octet-stream",
}

func allowedMimeType(declared string) bool {
	for _, prefix := range allowedMimePrefixes {
		if strings.HasPrefix(declared, prefix) {
			return true
		}
	}
	return false
}

func (s *StudiumApp) uploadCourseFile(w http.ResponseWriter, r *http.Request) {
	courseId := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			errResp := NewRequestEntityTooLargeError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(allowedUploadExtensions, ext) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// browsers send a declared type per part; reject obvious mismatches
	if declared := header.Header.Get("Content-Type"); declared != "" && !allowedMimeType(declared) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// course must exist before anything is stored
	if _, err := s.db.GetCourseById(r.Context(), courseId); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	storedName := uuid.NewString() + ext
	fileId, err := s.db.UploadFile(r.Context(), storedName, header.Filename, file)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.AttachCourseFile(r.Context(), courseId, fileId); err != nil {
		if delErr := s.db.DeleteFile(r.Context(), fileId); delErr != nil {
			s.log.Printf("delete orphaned file %s: %v", fileId, delErr)
		}
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.FileInfo{
		Id:   fileId,
		Name: header.Filename,
		Size: header.Size,
	})
}

func (s *StudiumApp) listCourseFiles(w http.ResponseWriter, r *http.Request) {
	course, err := s.db.GetCourseById(r.Context(), r.PathValue("id"))
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	files, err := s.db.ListCourseFiles(r.Context(), hexIds(course.Files))
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	out := make([]types.FileInfo, 0, len(files))
	for _, f := range files {
		out = append(out, fileToWire(f))
	}

	s.writeJson(w, http.StatusOK, out)
}

func (s *StudiumApp) downloadFile(w http.ResponseWriter, r *http.Request) {
	// buffer so an error mid-stream can still produce a JSON response
	var buf bytes.Buffer

	info, err := s.db.DownloadFile(r.Context(), r.PathValue("id"), &buf)
	if err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(info.OriginalName))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Write(buf.Bytes())
}

func (s *StudiumApp) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteFile(r.Context(), r.PathValue("id")); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *StudiumApp) uploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	targetId := r.PathValue("id")

	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if targetId != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(allowedPictureExtensions, ext) {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.storagePath, name))
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.SetUserPicture(r.Context(), targetId, name); err != nil {
		errResp := dbError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"picture": name})
}
