package handlers

import (
	"github.com/gin-gonic/gin"

	"blog-cms/helper"
	"blog-cms/models"
	"blog-cms/services"
)

type PostHandler struct {
	postService services.PostService
	Helper      *helper.HTTPHelper
}

func NewPostHandler(postService services.PostService, h *helper.HTTPHelper) *PostHandler {
	return &PostHandler{postService: postService, Helper: h}
}

func (h *PostHandler) GetPosts(c *gin.Context) {
	var params models.PostListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "invalid query parameters", h.Helper.EmptyJsonMap())
		return
	}

	page, err := h.postService.List(c.Request.Context(), params)
	if err != nil {
		h.Helper.SendAppError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Posts loaded", map[string]interface{}{
		"posts":  page.Posts,
		"paging": h.Helper.GeneratePaging(c, 0, 0, page.Size, page.Page, int(page.Total)),
	})
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	post, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		h.Helper.SendAppError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Post loaded", post)
}

func (h *PostHandler) CreatePost(c *gin.Context, principal *models.Principal) {
	var req models.PostRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.Helper.SendAppError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Post created", post)
}

// UpdatePost only decodes the body here. The service checks ownership before
// validating the fields, so a non-author gets NOT_AUTHORIZED for any body
// that decodes, valid or not. A body that does not decode is BAD_REQUEST.
func (h *PostHandler) UpdatePost(c *gin.Context, principal *models.Principal) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "malformed request body", h.Helper.EmptyJsonMap())
		return
	}

	post, err := h.postService.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		h.Helper.SendAppError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Post updated", post)
}

func (h *PostHandler) DeletePost(c *gin.Context, principal *models.Principal) {
	id, ok := h.Helper.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), principal, id); err != nil {
		h.Helper.SendAppError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Post deleted", h.Helper.EmptyJsonMap())
}
