package http

import (
	"marketdelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// GetAsset handles GET /assets/*?token=..., serving a stored file behind a signed link.
func (s *Server) GetAsset(c echo.Context) error {
	ref := c.Param("*")
	if err := s.storage.Verify(ref, c.QueryParam("token")); err != nil {
		return errs.NewNotAuthorizedError("read asset", err.Error())
	}

	filePath, err := s.storage.Path(ref)
	if err != nil {
		return err
	}
	return c.File(filePath)
}
