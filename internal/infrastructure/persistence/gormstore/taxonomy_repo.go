package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) catalog.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	model := &CategoryModel{Name: c.Name, Description: c.Description}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrCategoryDuplicate
		}
		return apperrors.WrapDB(err, "创建分类失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*catalog.Category, error) {
	var model CategoryModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, apperrors.WrapDB(err, "查询分类失败")
	}
	return toCategoryEntity(&model), nil
}

func (r *categoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	result := getDB(ctx, r.db).Model(&CategoryModel{ID: c.ID}).
		Select("name", "description", "updated_at").
		Updates(&CategoryModel{Name: c.Name, Description: c.Description})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return catalog.ErrCategoryDuplicate
		}
		return apperrors.WrapDB(result.Error, "更新分类失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// Delete 删除分类，所属商品的分类置空
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	db := getDB(ctx, r.db)
	if err := db.Model(&ProductModel{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
		return apperrors.WrapDB(err, "解除商品分类失败")
	}
	result := db.Delete(&CategoryModel{}, id)
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "删除分类失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*catalog.Category, error) {
	var models []CategoryModel
	if err := getDB(ctx, r.db).Order("name").Find(&models).Error; err != nil {
		return nil, apperrors.WrapDB(err, "查询分类列表失败")
	}
	out := make([]*catalog.Category, len(models))
	for i := range models {
		out[i] = toCategoryEntity(&models[i])
	}
	return out, nil
}

func toCategoryEntity(m *CategoryModel) *catalog.Category {
	return &catalog.Category{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository 创建供应商仓储
func NewSupplierRepository(db *gorm.DB) catalog.SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, s *catalog.Supplier) error {
	model := &SupplierModel{Name: s.Name, ContactEmail: s.ContactEmail, Phone: s.Phone}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDB(err, "创建供应商失败")
	}
	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *supplierRepository) FindByID(ctx context.Context, id uint) (*catalog.Supplier, error) {
	var model SupplierModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrSupplierNotFound
		}
		return nil, apperrors.WrapDB(err, "查询供应商失败")
	}
	return toSupplierEntity(&model), nil
}

func (r *supplierRepository) Update(ctx context.Context, s *catalog.Supplier) error {
	result := getDB(ctx, r.db).Model(&SupplierModel{ID: s.ID}).
		Select("name", "contact_email", "phone", "updated_at").
		Updates(&SupplierModel{Name: s.Name, ContactEmail: s.ContactEmail, Phone: s.Phone})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新供应商失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrSupplierNotFound
	}
	return nil
}

// Delete 删除供应商，所属商品的供应商置空
func (r *supplierRepository) Delete(ctx context.Context, id uint) error {
	db := getDB(ctx, r.db)
	if err := db.Model(&ProductModel{}).Where("supplier_id = ?", id).Update("supplier_id", nil).Error; err != nil {
		return apperrors.WrapDB(err, "解除商品供应商失败")
	}
	result := db.Delete(&SupplierModel{}, id)
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "删除供应商失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrSupplierNotFound
	}
	return nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*catalog.Supplier, error) {
	var models []SupplierModel
	if err := getDB(ctx, r.db).Order("name").Find(&models).Error; err != nil {
		return nil, apperrors.WrapDB(err, "查询供应商列表失败")
	}
	out := make([]*catalog.Supplier, len(models))
	for i := range models {
		out[i] = toSupplierEntity(&models[i])
	}
	return out, nil
}

func toSupplierEntity(m *SupplierModel) *catalog.Supplier {
	return &catalog.Supplier{
		ID:           m.ID,
		Name:         m.Name,
		ContactEmail: m.ContactEmail,
		Phone:        m.Phone,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
