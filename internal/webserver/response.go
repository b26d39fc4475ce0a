package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RestResult is the envelope of every API response. Code is zero on
// success and a short machine readable string otherwise.
type RestResult struct {
	Code    interface{} `json:"code"`
	Message string      `json:"message,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// PagedResult wraps a list response with its pagination window.
type PagedResult struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

func Ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, RestResult{Code: 0, Data: data})
}

func OkMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, RestResult{Code: 0, Message: msg})
}

func Fail(c echo.Context, status int, code string, msg string, detail interface{}) error {
	return c.JSON(status, RestResult{Code: code, Message: msg, Detail: detail})
}

func Paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, PagedResult{Data: rows, Total: total, Page: page, PerPage: pageSize})
}
