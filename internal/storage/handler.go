package storage

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/peopleops/docflow/pkg/logger"
)

// MaxUploadBytes caps document uploads. Enforced here, not by the workflow
// engine: records only carry the file descriptor.
const MaxUploadBytes = 10 << 20

const presignTTL = 24 * time.Hour

// Handler serves uploads and downloads of document files. The returned
// descriptor is what callers put on a workflow record.
type Handler struct {
	store *MinIOStorage
}

func NewHandler(store *MinIOStorage) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/documents")
	g.POST("/upload", h.upload)
	g.GET("/files/:key", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	if fh.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds the %d byte limit", MaxUploadBytes)})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	key := uuid.NewString() + "-" + filepath.Base(fh.Filename)
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.store.UploadFile(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("upload of %s failed: %v", key, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "file storage unavailable"})
		return
	}
	url, err := h.store.GetPresignedURL(c.Request.Context(), key, presignTTL)
	if err != nil {
		logger.Errorf("presign of %s failed: %v", key, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "file storage unavailable"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"fileUrl":       url,
		"fileName":      fh.Filename,
		"fileSizeBytes": fh.Size,
		"key":           key,
	})
}

func (h *Handler) download(c *gin.Context) {
	key := c.Param("key")
	obj, err := h.store.DownloadFile(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	defer obj.Close()
	c.Header("Content-Disposition", "attachment")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj); err != nil {
		logger.Warnf("download of %s aborted: %v", key, err)
	}
}
