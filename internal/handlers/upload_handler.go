package handlers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/JoyKMondal/Mern-Blog-App/pkg/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxUploadSize caps uploaded files at 10 MiB
const maxUploadSize = 10 << 20

// UploadHandler handles file uploads to object storage
type UploadHandler struct {
	store *storage.Client
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(store *storage.Client) *UploadHandler {
	return &UploadHandler{store: store}
}

// RegisterUploadRoutes registers the authenticated upload route
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/upload", h.Upload)
}

// RegisterFileRoutes registers file listing/download/delete routes
func (h *UploadHandler) RegisterFileRoutes(g *echo.Group) {
	g.GET("", h.ListFiles)
	g.GET("/:filename", h.DownloadFile)
	g.DELETE("/:filename", h.DeleteFile)
}

// Upload stores a multipart file and returns its public URL in the shape the
// editor's image tool expects.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": 0,
			"error":   "No file received or invalid file format.",
		})
	}
	if fileHeader.Size > maxUploadSize {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": 0,
			"error":   "File exceeds the 10MB upload limit.",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "File upload failed")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	objectName := time.Now().Format("20060102") + "-" + uuid.NewString() + filepath.Ext(fileHeader.Filename)

	url, err := h.store.Upload(c.Request().Context(), objectName, contentType, file, fileHeader.Size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "File upload failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": 1,
		"file":    echo.Map{"url": url},
	})
}

// ListFiles lists the keys of every stored object
func (h *UploadHandler) ListFiles(c echo.Context) error {
	keys, err := h.store.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, keys)
}

// DownloadFile streams a stored object back to the client
func (h *UploadHandler) DownloadFile(c echo.Context) error {
	data, err := h.store.Download(c.Request().Context(), c.Param("filename"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "File Not Found")
	}
	return c.Blob(http.StatusOK, "application/octet-stream", data)
}

// DeleteFile removes a stored object
func (h *UploadHandler) DeleteFile(c echo.Context) error {
	if err := h.store.Remove(c.Request().Context(), c.Param("filename")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "File Deleted Successfully"})
}
