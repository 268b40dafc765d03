package api

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cleared-dev/icsimport/internal/buildinfo"
	"github.com/cleared-dev/icsimport/internal/export"
	"github.com/cleared-dev/icsimport/internal/importer"
	"github.com/cleared-dev/icsimport/internal/metrics"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

type healthResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version"`
	Formats []string `json:"formats"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
		Formats: s.registry.Formats(),
	})
}

// handlePreview parses an uploaded statement (multipart field "file") and
// returns it as JSON without storing anything. The optional "format" field
// selects the parser.
func (s *Server) handlePreview(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	format := c.FormValue("format", importer.FormatICS)
	parser := s.registry.Get(format)
	if parser == nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown statement format %q", format))
	}

	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to open upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read upload")
	}

	start := time.Now()
	result, err := parser.Parse(c.UserContext(), data)
	metrics.ObserveParse(parser.Format(), result, err, time.Since(start))
	if err != nil {
		s.logger.Warn("preview parse failed",
			zap.String("request_id", requestID(c)),
			zap.String("file", fh.Filename),
			zap.Error(err))
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	s.logger.Info("preview parsed",
		zap.String("request_id", requestID(c)),
		zap.String("file", fh.Filename),
		zap.String("statement_id", result.StatementID),
		zap.Int("transactions", len(result.Transactions)),
		zap.Int("warnings", len(result.Warnings)))
	metrics.ObserveExport(export.FormatJSON, nil)
	return c.JSON(export.NewStatementJSON(result))
}
