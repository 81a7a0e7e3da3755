package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"zippybox-server/internal/catalog"
	"zippybox-server/internal/middleware"
	"zippybox-server/internal/upload"
)

// Uploader runs ingestion requests; *upload.Ingestor satisfies it.
type Uploader interface {
	IngestFile(ctx context.Context, principal string, req upload.FileRequest) (*catalog.FileEntry, error)
	IngestFolder(ctx context.Context, principal string, req upload.FolderRequest) (*upload.FolderResult, error)
}

// FileHandler handles upload requests
type FileHandler struct {
	uploader Uploader
	log      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(uploader Uploader, log *slog.Logger) *FileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &FileHandler{uploader: uploader, log: log}
}

// UploadFile handles POST /api/files/upload - Upload file
func (h *FileHandler) UploadFile(c *gin.Context) {
	req := upload.FileRequest{
		OwnerID:  c.PostForm("userId"),
		ParentID: c.PostForm("parentId"),
	}
	// A missing file is reported by the ingestor, after the ownership check.
	if fh, err := c.FormFile("file"); err == nil {
		req.Payload = payloadFromHeader(fh)
	}

	entry, err := h.uploader.IngestFile(c.Request.Context(), c.GetString(middleware.UserIDKey), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UploadFolder handles POST /api/files/upload-folder - Create a folder and upload files into it
func (h *FileHandler) UploadFolder(c *gin.Context) {
	req := upload.FolderRequest{
		OwnerID:    c.PostForm("userId"),
		ParentID:   c.PostForm("parentId"),
		FolderName: c.PostForm("folderName"),
	}
	if form, err := c.MultipartForm(); err == nil {
		req.Payloads = payloadsFromHeaders(form.File["files"])
	}

	res, err := h.uploader.IngestFolder(c.Request.Context(), c.GetString(middleware.UserIDKey), req)
	if err == nil {
		c.JSON(http.StatusOK, res)
		return
	}
	if upload.KindOf(err) == upload.KindPartialBatchFailure && res != nil {
		h.logFailure(c, err)
		c.JSON(http.StatusMultiStatus, gin.H{
			"folder": res.Folder,
			"files":  res.Files,
			"error":  errorBody(err),
		})
		return
	}
	h.fail(c, err)
}

// Healthz handles GET /healthz
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *FileHandler) fail(c *gin.Context, err error) {
	h.logFailure(c, err)
	c.JSON(statusFor(upload.KindOf(err)), gin.H{"error": errorBody(err)})
}

func (h *FileHandler) logFailure(c *gin.Context, err error) {
	status := statusFor(upload.KindOf(err))
	attrs := []any{"path", c.FullPath(), "user", c.GetString(middleware.UserIDKey), "kind", upload.KindOf(err), "error", err}
	if status >= http.StatusInternalServerError || status == http.StatusMultiStatus {
		h.log.ErrorContext(c.Request.Context(), "upload failed", attrs...)
		return
	}
	h.log.InfoContext(c.Request.Context(), "upload rejected", attrs...)
}
