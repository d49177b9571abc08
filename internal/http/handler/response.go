package handler

import (
	"github.com/labstack/echo/v4"

	"project-service/internal/domain/project"
)

// Response is the success envelope shared by every project endpoint.
type Response struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       any                 `json:"data"`
	Pagination *project.Pagination `json:"pagination,omitempty"`
	SearchTerm string              `json:"searchTerm,omitempty"`
}

func respondData(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondPage(c echo.Context, status int, page *project.Page) error {
	return c.JSON(status, Response{Success: true, Data: page.Projects, Pagination: &page.Pagination})
}
