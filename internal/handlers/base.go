package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"recipehub/internal/logging"
	"recipehub/internal/services"
	"recipehub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Status     string               `json:"status"`
	Data       any                  `json:"data,omitempty"`
	Message    string               `json:"message,omitempty"`
	Pagination *services.Pagination `json:"pagination,omitempty"`
}

func OK(c *gin.Context, code int, data any) {
	c.JSON(code, Response{Status: "success", Data: data})
}

func Paged(c *gin.Context, data any, p services.Pagination) {
	c.JSON(http.StatusOK, Response{Status: "success", Data: data, Pagination: &p})
}

func Message(c *gin.Context, code int, msg string) {
	c.JSON(code, Response{Status: "success", Message: msg})
}

func Fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Response{Status: "error", Message: msg})
}

// RenderError maps a service error onto a status code. Unknown errors are
// logged and hidden behind a generic message.
func RenderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrConflict):
		Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		Fail(c, http.StatusForbidden, err.Error())
	default:
		_ = c.Error(err)
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		Fail(c, http.StatusInternalServerError, "internal server error")
	}
}

// BindError reports a request that failed binding or validation.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fieldMessage(fe))
		}
		Fail(c, http.StatusBadRequest, strings.Join(parts, "; "))
		return
	}
	Fail(c, http.StatusBadRequest, "invalid request body")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + fe.Param()
	case "min":
		return field + " must be at least " + fe.Param()
	case "email":
		return field + " must be a valid email address"
	case "difficulty":
		return field + " must be Easy, Medium or Hard"
	}
	return field + " is invalid"
}

// idParam reads a positive id path parameter, answering 400 when it is not.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		Fail(c, http.StatusBadRequest, "invalid "+name)
	}
	return id, ok
}

func pageQuery(c *gin.Context) services.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return services.Page{Page: page, Limit: limit}
}
