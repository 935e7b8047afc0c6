package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gemsketch/api/internal/httputil"
	"github.com/gemsketch/api/internal/logging"
)

// Processor turns an uploaded image into a rendered one.
type Processor interface {
	Process(ctx context.Context, image []byte) ([]byte, error)
}

// Handler contains the HTTP handler for the image-processing round trip
type Handler struct {
	processor Processor
	logger    *logging.Logger
	maxMemory int64
}

func NewHandler(processor Processor, logger *logging.Logger, maxMemoryMB int64) *Handler {
	return &Handler{processor: processor, logger: logger, maxMemory: maxMemoryMB << 20}
}

// ProcessImage relays an image to the rendering service
// @Summary      Render an image
// @Description  Forward the multipart file from field "image" to the rendering service and stream the generated PNG back.
// @Tags         images
// @Accept       multipart/form-data
// @Produce      png
// @Security     BearerAuth
// @Param        image formData file true "Image file"
// @Success      200 {file} binary
// @Failure      400 {object} httputil.ErrorResponse "No image uploaded"
// @Failure      500 {object} httputil.ErrorResponse "Rendering service failure"
// @Router       /process-image [post]
func (h *Handler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		logger.Warn("failed to parse multipart form", "error", err.Error())
		httputil.RespondErrorWithCode(w, "No image uploaded", httputil.CodeNoFileUploaded, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		logger.Warn("process-image request without file field")
		httputil.RespondErrorWithCode(w, "No image uploaded", httputil.CodeNoFileUploaded, http.StatusBadRequest)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		logger.Error("failed to read uploaded image", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	rendered, err := h.processor.Process(r.Context(), image)
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			logger.Error("rendering service failed", "filename", header.Filename, "error", err.Error())
			httputil.RespondErrorWithCode(w, "Error processing image", httputil.CodeUpstreamError, http.StatusInternalServerError)
			return
		}
		logger.Error("image processing failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "Error processing image", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("image rendered", "filename", header.Filename, "size_bytes", len(rendered))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered)))
	w.Write(rendered)
}
