package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/guilherme-santos/uniplanner/internal"
)

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, errorBody) {
	var (
		vErr *internal.ValidationError
		uErr *internal.UpstreamError
		fErr *fiber.Error
	)
	switch {
	case errors.As(err, &vErr):
		body := errorBody{Error: vErr.Message}
		if len(vErr.Fields) > 0 {
			body.Details = fiber.Map{"fields": vErr.Fields}
		}
		return fiber.StatusBadRequest, body
	case isUnauthorized(err):
		return fiber.StatusUnauthorized, errorBody{Error: err.Error()}
	case errors.Is(err, internal.ErrNotFound):
		return fiber.StatusNotFound, errorBody{Error: err.Error()}
	case errors.Is(err, internal.ErrConflict):
		return fiber.StatusConflict, errorBody{Error: err.Error()}
	case errors.As(err, &uErr):
		return fiber.StatusBadGateway, errorBody{Error: uErr.Error(), Details: uErr.Details}
	case errors.As(err, &fErr):
		return fErr.Code, errorBody{Error: fErr.Message}
	}
	return fiber.StatusInternalServerError, errorBody{Error: "internal server error"}
}

func isUnauthorized(err error) bool {
	return errors.Is(err, internal.ErrUnauthorized)
}
