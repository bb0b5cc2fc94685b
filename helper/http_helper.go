package helper

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"

	"blog-cms/logging"
	"blog-cms/models"
)

const (
	textError = `error`
	textOk    = `ok`

	codeTypeSuccess    = `success`
	codeTypeBadRequest = `BAD_REQUEST`
	codeTypeInternal   = `INTERNAL_ERROR`
)

// statusByCode maps service error codes onto HTTP statuses.
var statusByCode = map[string]int{
	models.CodeInvalidCredentials: http.StatusUnauthorized,
	models.CodeEmailTaken:         http.StatusConflict,
	models.CodeUnauthenticated:    http.StatusUnauthorized,
	models.CodeNotAuthorized:      http.StatusForbidden,
	models.CodeNotFound:           http.StatusNotFound,
	models.CodeSlugTaken:          http.StatusConflict,
	models.CodeCategoryTaken:      http.StatusConflict,
	models.CodeCategoryInUse:      http.StatusConflict,
	models.CodeValidation:         http.StatusBadRequest,
	models.CodeRateLimited:        http.StatusTooManyRequests,
}

// ResponseHelper ...
type ResponseHelper struct {
	C        *gin.Context
	Status   string
	Message  interface{}
	Data     interface{}
	Code     int
	CodeType string
}

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
	Log        *slog.Logger
}

// NewHTTPHelper builds a helper whose validation messages are translated to English.
func NewHTTPHelper(log *slog.Logger) *HTTPHelper {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		// Only fails on a malformed built-in translation table.
		panic(err)
	}

	return &HTTPHelper{Validate: validate, Translator: trans, Log: log}
}

// GetStatusCode ...
// Map an error to the HTTP status it is reported with.
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if status, ok := statusByCode[models.ErrorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message interface{}, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{c, status, message, data, code, codeType}
}

// SendError ...
// Send error response to consumers.
func (u *HTTPHelper) SendError(c *gin.Context, message string, data interface{}, code int, codeType string) error {
	res := u.SetResponse(c, textError, message, data, code, codeType)

	return u.SendResponse(res)
}

// SendAppError ...
// Send a service error. Coded errors keep their code and message; anything
// else is logged and reported as a generic internal error.
func (u *HTTPHelper) SendAppError(c *gin.Context, err error) error {
	code := models.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		logging.LogError(c.Request.Context(), u.Log, "request failed", err)
		return u.SendError(c, "internal server error", u.EmptyJsonMap(), http.StatusInternalServerError, codeTypeInternal)
	}

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
	}
	return u.SendError(c, err.Error(), u.EmptyJsonMap(), status, code)
}

// SendBadRequest ...
// Send bad request response to consumers.
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, http.StatusBadRequest, codeTypeBadRequest)
}

// SendValidationError ...
// Send validation error response to consumers.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) error {
	errorResponse := map[string][]string{}
	errorTranslation := validationErrors.Translate(u.Translator)
	for _, err := range validationErrors {
		errKey := Underscore(err.StructField())
		errorResponse[errKey] = append(errorResponse[errKey], errorTranslation[err.Namespace()])
	}

	res := u.SetResponse(c, textError, errorResponse, u.EmptyJsonMap(), http.StatusBadRequest, models.CodeValidation)
	return u.SendResponse(res)
}

// SendUnauthorizedError ...
// Send unauthorized response to consumers.
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) error {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	return u.SendError(c, message, u.EmptyJsonMap(), http.StatusUnauthorized, models.CodeUnauthenticated)
}

// SendForbiddenError ...
// Send forbidden response to consumers.
func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string) error {
	return u.SendError(c, message, u.EmptyJsonMap(), http.StatusForbidden, models.CodeNotAuthorized)
}

// SendNotFoundError ...
// Send not found response to consumers.
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string) error {
	return u.SendError(c, message, u.EmptyJsonMap(), http.StatusNotFound, models.CodeNotFound)
}

// SendTooManyRequests ...
// Send rate limited response to consumers.
func (u *HTTPHelper) SendTooManyRequests(c *gin.Context, retryAfter int) error {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	return u.SendError(c, "too many requests, please retry later", u.EmptyJsonMap(), http.StatusTooManyRequests, models.CodeRateLimited)
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, http.StatusOK, codeTypeSuccess)

	return u.SendResponse(res)
}

// SendCreated ...
// Send created response to consumers.
func (u *HTTPHelper) SendCreated(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, http.StatusCreated, codeTypeSuccess)

	return u.SendResponse(res)
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) error {
	if s, ok := res.Message.(string); ok && len(s) == 0 {
		res.Message = `success`
	}

	res.C.AbortWithStatusJSON(res.Code, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
	return nil
}

// BindJSON decodes the request body into req and validates it. It writes the
// error response itself and reports false when the handler should stop.
func (u *HTTPHelper) BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		u.SendBadRequest(c, "malformed request body", u.EmptyJsonMap())
		return false
	}
	return u.ValidateStruct(c, req)
}

// ValidateStruct runs the validate tags on req and writes a translated
// validation error response on failure.
func (u *HTTPHelper) ValidateStruct(c *gin.Context, req interface{}) bool {
	err := u.Validate.Struct(req)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		u.SendValidationError(c, validationErrors)
		return false
	}
	u.SendBadRequest(c, err.Error(), u.EmptyJsonMap())
	return false
}

// ParamID reads a positive numeric path parameter.
func (u *HTTPHelper) ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		u.SendBadRequest(c, "invalid "+name, u.EmptyJsonMap())
		return 0, false
	}
	return uint(id), true
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}

// get pagination URL
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page, limit int) string {
	r := c.Request
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	query := r.URL.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(limit))
	return scheme + "://" + r.Host + r.URL.Path + "?" + query.Encode()
}

// Set paginantion response
func (u *HTTPHelper) GeneratePaging(c *gin.Context, prev, next, limit, page, totalRecord int) map[string]interface{} {

	prevURL, nextURL, firstURL, lastURL := "", "", "", ""

	totalPages := int(math.Ceil(float64(totalRecord) / float64(limit)))

	if page > 1 {
		prev = page - 1
	}
	if page < totalPages {
		next = page + 1
	} else {
		next = totalPages
	}

	if totalPages >= page && page > 1 {
		prevURL = u.GetPagingUrl(c, prev, limit)
	}

	if totalPages > page {
		nextURL = u.GetPagingUrl(c, next, limit)
	}

	if totalPages >= page && page > 1 {
		firstURL = u.GetPagingUrl(c, 1, limit)
	}

	if totalPages >= page && totalPages != page {
		lastURL = u.GetPagingUrl(c, totalPages, limit)
	}

	links := map[string]interface{}{
		"previous": prevURL,
		"next":     nextURL,
		"first":    firstURL,
		"last":     lastURL,
	}

	pagination := map[string]interface{}{
		"total_records": totalRecord,
		"per_page":      limit,
		"current_page":  page,
		"total_pages":   totalPages,
		"links":         links,
	}

	return pagination
}

// Underscore converts a Go identifier to snake_case, keeping acronyms
// together: CategoryID -> category_id.
func Underscore(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
