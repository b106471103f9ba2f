package media

import (
	"bytes"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Folders mirrors where each catalog entity keeps its images.
var Folders = map[string]bool{
	"regions":              true,
	"tourist_sites":        true,
	"universities":         true,
	"universities/gallery": true,
}

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

// canonical extensions for the types http.DetectContentType reports
var imageExtensions = map[string]string{
	"image/avif":   ".avif",
	"image/bmp":    ".bmp",
	"image/gif":    ".gif",
	"image/jpeg":   ".jpg",
	"image/png":    ".png",
	"image/webp":   ".webp",
	"image/x-icon": ".ico",
}

type Handler struct {
	store    Store
	maxBytes int64
}

func NewHandler(store Store, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{store: store, maxBytes: maxBytes}
}

type uploadResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// RegisterUpload mounts POST /media on an API group.
func (h *Handler) RegisterUpload(rg *gin.RouterGroup) {
	rg.POST("/media", h.upload)
}

// RegisterServe mounts GET /media/*key on the engine root.
func (h *Handler) RegisterServe(r gin.IRoutes) {
	r.GET("/media/*key", h.serve)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+formOverhead)

	folder := strings.Trim(c.PostForm("folder"), "/")
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !Folders[folder] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown folder"})
		return
	}
	if fh.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only images are accepted"})
		return
	}

	key := folder + "/" + uuid.NewString() + extension(contentType)
	body := io.MultiReader(bytes.NewReader(head[:n]), f)

	info, err := h.store.Put(c.Request.Context(), key, body, contentType)
	if err != nil {
		log.Printf("[error] media upload failed key=%s err=%v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusCreated, uploadResponse{
		Key:         info.Key,
		URL:         "/media/" + info.Key,
		Size:        info.Size,
		ContentType: contentType,
	})
}

func (h *Handler) serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	info, body, err := h.store.Get(c.Request.Context(), key)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		log.Printf("[error] media read failed key=%s err=%v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	defer body.Close()

	// only images were ever accepted; anything else is served inert
	contentType := info.ContentType
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, body, map[string]string{
		"X-Content-Type-Options": "nosniff",
	})
}

// extension derives the key suffix from the sniffed type. The client's
// filename is ignored so it cannot choose how the object is served.
func extension(contentType string) string {
	if ext, ok := imageExtensions[contentType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
