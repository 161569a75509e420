// Package handlers implements the HTTP endpoints on top of the application
// services.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/pkg/constants"
	"github.com/elevate-edu/elevate/pkg/errors"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.OK(data))
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

func respondPage(c *gin.Context, data interface{}, page, pageSize int, total int64) {
	c.JSON(http.StatusOK, dto.OKPage(data, page, pageSize, total))
}

func respondError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.ErrInternal("unexpected error").WithCause(err)
	}
	c.JSON(appErr.Status, dto.Fail(appErr.Code, appErr.Message, appErr.Metadata))
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, errors.ErrInvalidRequest("invalid request body: %s", err.Error()))
}

// pageParams reads page and page_size query parameters with defaults.
func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	return page, pageSize
}
