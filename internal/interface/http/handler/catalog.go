package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/shoptrack/internal/application/catalog"
	"github.com/xiebiao/shoptrack/internal/interface/http/dto"
	"github.com/xiebiao/shoptrack/pkg/response"
)

// CatalogHandler 商品、分类、供应商、批量折扣
type CatalogHandler struct {
	products *appcatalog.ProductUseCase
	taxonomy *appcatalog.TaxonomyUseCase
	discount *appcatalog.ApplyBulkDiscountUseCase
}

// NewCatalogHandler 创建商品目录处理器
func NewCatalogHandler(
	products *appcatalog.ProductUseCase,
	taxonomy *appcatalog.TaxonomyUseCase,
	discount *appcatalog.ApplyBulkDiscountUseCase,
) *CatalogHandler {
	return &CatalogHandler{products: products, taxonomy: taxonomy, discount: discount}
}

// CreateProduct 创建商品
// @Summary      创建商品
// @Description  initial_stock 同时作为当前库存，之后只能通过库存调整修改
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=appcatalog.ProductInfo}
// @Failure      200 {object} response.Response "40104 无权限 / 40900 参数错误"
// @Router       /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.products.Create(c.Request.Context(), actor(c), appcatalog.CreateProductRequest{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		GSTRate:      req.GSTRate,
		InitialStock: req.InitialStock,
		CategoryID:   req.CategoryID,
		SupplierID:   req.SupplierID,
		ReorderPoint: req.ReorderPoint,
		LeadTimeDays: req.LeadTimeDays,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateProduct 修改商品
// @Summary      修改商品
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                      true "商品ID"
// @Param        request body dto.UpdateProductRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=appcatalog.ProductInfo}
// @Router       /api/v1/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.products.Update(c.Request.Context(), actor(c), appcatalog.UpdateProductRequest{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		GSTRate:       req.GSTRate,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		SupplierID:    req.SupplierID,
		ClearSupplier: req.ClearSupplier,
		ReorderPoint:  req.ReorderPoint,
		LeadTimeDays:  req.LeadTimeDays,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteProduct 删除商品（软删除）
// @Summary      删除商品
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), actor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetProduct 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=appcatalog.ProductInfo}
// @Failure      200 {object} response.Response "40402 商品不存在"
// @Router       /api/v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.products.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListProducts 商品列表（公开）
// @Summary      商品列表
// @Tags         商品
// @Produce      json
// @Param        page        query int    false "页码"
// @Param        page_size   query int    false "每页数量"
// @Param        keyword     query string false "名称关键字"
// @Param        category_id query int    false "分类ID"
// @Param        supplier_id query int    false "供应商ID"
// @Param        sort_by     query string false "排序" Enums(price_asc, price_desc, stock_asc, created_at_desc)
// @Success      200 {object} response.Response{data=response.PageData{list=[]appcatalog.ProductInfo}}
// @Router       /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.products.List(c.Request.Context(), actor(c), appcatalog.ListProductsRequest{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Keyword:    req.Keyword,
		CategoryID: req.CategoryID,
		SupplierID: req.SupplierID,
		SortBy:     req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Products, result.Total, result.Page, result.PageSize)
}

// ApplyBulkDiscount 批量折扣
// @Summary      批量折扣
// @Description  按商品ID列表或分类打折，任何一个商品失败则全部回滚
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BulkDiscountRequest true "折扣"
// @Success      200 {object} response.Response{data=appcatalog.ApplyBulkDiscountResponse}
// @Router       /api/v1/products/discount [post]
func (h *CatalogHandler) ApplyBulkDiscount(c *gin.Context) {
	var req dto.BulkDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.discount.Execute(c.Request.Context(), actor(c), appcatalog.ApplyBulkDiscountRequest{
		ProductIDs: req.ProductIDs,
		CategoryID: req.CategoryID,
		Percent:    req.Percent,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// =========================================
// 分类
// =========================================

// ListCategories 分类列表
// @Summary      分类列表
// @Tags         分类
// @Produce      json
// @Success      200 {object} response.Response{data=[]appcatalog.CategoryInfo}
// @Router       /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	result, err := h.taxonomy.ListCategories(c.Request.Context(), actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCategory 创建分类
// @Summary      创建分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CategoryRequest true "分类"
// @Success      200 {object} response.Response{data=appcatalog.CategoryInfo}
// @Failure      200 {object} response.Response "40009 名称已存在"
// @Router       /api/v1/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.taxonomy.CreateCategory(c.Request.Context(), actor(c), appcatalog.CategoryRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateCategory 修改分类
// @Summary      修改分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                 true "分类ID"
// @Param        request body dto.CategoryRequest true "分类"
// @Success      200 {object} response.Response{data=appcatalog.CategoryInfo}
// @Router       /api/v1/categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.taxonomy.UpdateCategory(c.Request.Context(), actor(c), appcatalog.CategoryRequest{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteCategory 删除分类，商品的分类置空
// @Summary      删除分类
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteCategory(c.Request.Context(), actor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// =========================================
// 供应商
// =========================================

// ListSuppliers 供应商列表
// @Summary      供应商列表
// @Tags         供应商
// @Produce      json
// @Success      200 {object} response.Response{data=[]appcatalog.SupplierInfo}
// @Router       /api/v1/suppliers [get]
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	result, err := h.taxonomy.ListSuppliers(c.Request.Context(), actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateSupplier 创建供应商
// @Summary      创建供应商
// @Tags         供应商
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SupplierRequest true "供应商"
// @Success      200 {object} response.Response{data=appcatalog.SupplierInfo}
// @Router       /api/v1/suppliers [post]
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req dto.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.taxonomy.CreateSupplier(c.Request.Context(), actor(c), appcatalog.SupplierRequest{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateSupplier 修改供应商
// @Summary      修改供应商
// @Tags         供应商
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                 true "供应商ID"
// @Param        request body dto.SupplierRequest true "供应商"
// @Success      200 {object} response.Response{data=appcatalog.SupplierInfo}
// @Router       /api/v1/suppliers/{id} [put]
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.taxonomy.UpdateSupplier(c.Request.Context(), actor(c), appcatalog.SupplierRequest{
		ID:           id,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteSupplier 删除供应商
// @Summary      删除供应商
// @Tags         供应商
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "供应商ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/suppliers/{id} [delete]
func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteSupplier(c.Request.Context(), actor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
