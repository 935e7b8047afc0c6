package upload

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gemsketch/api/internal/httputil"
	"github.com/gemsketch/api/internal/logging"
)

// Handler contains HTTP handlers for storing and fetching uploaded images
type Handler struct {
	store     BlobStore
	logger    *logging.Logger
	maxMemory int64
}

func NewHandler(store BlobStore, logger *logging.Logger, maxMemoryMB int64) *Handler {
	return &Handler{store: store, logger: logger, maxMemory: maxMemoryMB << 20}
}

// UploadResponse represents a successful upload
type UploadResponse struct {
	FilePath string `json:"filePath"`
	Message  string `json:"message"`
}

// Upload stores a multipart image
// @Summary      Upload an image
// @Description  Store the multipart file from field "imageInput" and return its path.
// @Tags         images
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        imageInput formData file true "Image file"
// @Success      201 {object} UploadResponse
// @Failure      400 {object} httputil.ErrorResponse "No file uploaded"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		logger.Warn("failed to parse multipart form", "error", err.Error())
		httputil.RespondErrorWithCode(w, "No file uploaded", httputil.CodeNoFileUploaded, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("imageInput")
	if err != nil {
		logger.Warn("upload request without file field")
		httputil.RespondErrorWithCode(w, "No file uploaded", httputil.CodeNoFileUploaded, http.StatusBadRequest)
		return
	}
	defer file.Close()

	stored, err := h.store.Save(r.Context(), header.Filename, file)
	if err != nil {
		logger.Error("failed to store upload", "filename", header.Filename, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("image uploaded", "stored_name", stored)

	httputil.RespondJSON(w, UploadResponse{
		FilePath: stored,
		Message:  "Image uploaded successfully",
	}, http.StatusCreated)
}

// Fetch streams a stored image back by filename.
//
// Deliberately unauthenticated: the original exposes stored files to anyone
// who knows the name, and no per-file ownership metadata exists to gate on.
//
// @Summary      Fetch an uploaded image
// @Description  Stream the raw bytes of a previously uploaded file.
// @Tags         images
// @Produce      octet-stream
// @Param        filename path string true "Stored filename"
// @Success      200 {file} binary
// @Failure      404 {object} httputil.ErrorResponse "Image not found"
// @Router       /image/{filename} [get]
func (h *Handler) Fetch(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	filename := chi.URLParam(r, "filename")

	rc, err := h.store.Open(r.Context(), filename)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Image not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to open upload", "filename", filename, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		logger.Error("failed to read upload", "filename", filename, "error", err.Error())
		httputil.RespondErrorWithCode(w, "Server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
