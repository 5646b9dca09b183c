package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/potholefix/internal/domain"
)

const maxUploadBytes = 10 << 20

// Predict classifies an uploaded image.
// POST /api/predict
func (h *Handler) Predict(c echo.Context) error {
	image, err := readUpload(c, "image")
	if err != nil {
		return writeError(c, err, "invalid image")
	}
	if image == nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "an image is required"})
	}

	prediction, err := h.service.Predict(c.Request().Context(), sessionFrom(c), *image)
	if err != nil {
		return writeError(c, err, "AI analysis failed")
	}
	return c.JSON(http.StatusOK, prediction)
}

// SubmitReport files a new report.
// POST /api/reports
func (h *Handler) SubmitReport(c echo.Context) error {
	image, err := readUpload(c, "image")
	if err != nil {
		return writeError(c, err, "invalid image")
	}

	report := domain.NewReport{Address: c.FormValue("address")}
	if image != nil {
		report.Image = *image
	}
	if report.Lat, err = parseCoordinate(c.FormValue("latitude")); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invalid latitude"})
	}
	if report.Lng, err = parseCoordinate(c.FormValue("longitude")); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "invalid longitude"})
	}

	prediction, err := h.service.SubmitReport(c.Request().Context(), sessionFrom(c), report)
	if err != nil {
		return writeError(c, err, "Submission failed. Check backend connection.")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"prediction": prediction,
		"redirect":   domain.PathHistory,
	})
}

// DeleteReport removes one of the caller's reports.
// DELETE /api/reports/:id
func (h *Handler) DeleteReport(c echo.Context) error {
	if err := h.service.DeleteReport(c.Request().Context(), sessionFrom(c), c.Param("id")); err != nil {
		return writeError(c, err, "failed to delete report")
	}
	return c.NoContent(http.StatusNoContent)
}

// ResolveReport marks a report Resolved, with an optional repair photo.
// PATCH /api/reports/:id/resolve
func (h *Handler) ResolveReport(c echo.Context) error {
	photo, err := readUpload(c, "resolved_image")
	if err != nil {
		return writeError(c, err, "invalid image")
	}

	if err := h.service.ResolveReport(c.Request().Context(), sessionFrom(c), c.Param("id"), photo); err != nil {
		return writeError(c, err, "AI Audit failed: Potholes detected.")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": string(domain.ReportStatusResolved)})
}

// readUpload reads a multipart file field. A missing field yields nil.
func readUpload(c echo.Context, field string) (*domain.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Invalid(fmt.Sprintf("invalid %s upload", field))
	}
	if fh.Size > maxUploadBytes {
		return nil, domain.Invalid("image is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &domain.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func parseCoordinate(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
