package handler

import (
	"github.com/gin-gonic/gin"

	appauthor "github.com/xiebiao/monobook/internal/application/author"
	"github.com/xiebiao/monobook/internal/interface/http/dto"
	"github.com/xiebiao/monobook/pkg/response"
)

// AuthorHandler 作者HTTP处理器
type AuthorHandler struct {
	createUseCase *appauthor.CreateAuthorUseCase
	updateUseCase *appauthor.UpdateAuthorUseCase
	deleteUseCase *appauthor.DeleteAuthorUseCase
	getUseCase    *appauthor.GetAuthorUseCase
	listUseCase   *appauthor.ListAuthorsUseCase
}

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(
	createUseCase *appauthor.CreateAuthorUseCase,
	updateUseCase *appauthor.UpdateAuthorUseCase,
	deleteUseCase *appauthor.DeleteAuthorUseCase,
	getUseCase *appauthor.GetAuthorUseCase,
	listUseCase *appauthor.ListAuthorsUseCase,
) *AuthorHandler {
	return &AuthorHandler{
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
	}
}

// List 作者列表
// @Summary      作者列表
// @Tags         作者
// @Produce      json
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量" default(20)
// @Param        search    query string false "按姓名或ID搜索"
// @Param        ordering  query string false "排序字段(id, name)，-前缀倒序"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appauthor.AuthorResponse}}
// @Router       /authors [get]
func (h *AuthorHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appauthor.ListAuthorsRequest{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		Ordering: q.Ordering,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// Get 作者详情
// @Summary      作者详情
// @Tags         作者
// @Produce      json
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response{data=appauthor.AuthorResponse}
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /authors/{id} [get]
func (h *AuthorHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Create 创建作者
// @Summary      创建作者
// @Tags         作者
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AuthorRequest true "作者信息"
// @Success      201 {object} response.Response{data=appauthor.AuthorResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /authors [post]
func (h *AuthorHandler) Create(c *gin.Context) {
	var req dto.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update 修改作者
// @Summary      修改作者
// @Tags         作者
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "作者ID"
// @Param        request body dto.AuthorRequest true "作者信息"
// @Success      200 {object} response.Response{data=appauthor.AuthorResponse}
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /authors/{id} [put]
func (h *AuthorHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除作者(连同其名下图书)
// @Summary      删除作者
// @Tags         作者
// @Security     BearerAuth
// @Param        id path int true "作者ID"
// @Success      204
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /authors/{id} [delete]
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
