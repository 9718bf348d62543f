package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/monobook/internal/domain/book"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
	"github.com/xiebiao/monobook/pkg/pagination"
)

// bookRepository 图书仓储实现(MySQL)
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 数据库错误转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 更新图书信息(全字段)
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := dbFrom(ctx, r.db).Model(&BookModel{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"title":            b.Title,
		"author_id":        b.AuthorID,
		"genre":            b.Genre,
		"publication_date": b.PublicationDate,
		"price":            b.Price,
		"quantity":         b.Quantity,
		"updated_at":       b.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// Delete 删除图书
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// DeleteByAuthor 删除作者名下的图书
// 先锁定再删除,返回的ID用于清理缓存
func (r *bookRepository) DeleteByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	db := dbFrom(ctx, r.db)

	var ids []uint
	err := db.Model(&BookModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("author_id = ?", authorID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询作者图书失败")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := db.Where("id IN ?", ids).Delete(&BookModel{}).Error; err != nil {
		return nil, apperrors.Wrap(err, "删除作者图书失败")
	}
	return ids, nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var (
		models []BookModel
		total  int64
	)

	query := dbFrom(ctx, r.db).Model(&BookModel{})
	if params.Genre != "" {
		query = query.Where("genre = ?", params.Genre)
	}
	if params.AuthorID != 0 {
		query = query.Where("author_id = ?", params.AuthorID)
	}
	query = query.Scopes(searchScope(params.Search, "title"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	err := query.
		Scopes(
			orderScope(params.Ordering, book.OrderingFields, pagination.Ordering{Field: "id"}),
			pageScope(params.Page, params.PageSize),
		).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// LockByID 悲观锁查询图书(SELECT ... FOR UPDATE)
// 必须在事务中调用,否则锁在语句结束时立即释放
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// UpdateStock 更新库存(原子操作)
// UPDATE books SET quantity = quantity + ? WHERE id = ? AND quantity + ? >= 0
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := dbFrom(ctx, r.db)
	result := db.Model(&BookModel{}).
		Where("id = ?", id).
		Where("quantity + ? >= 0", delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在或库存不足,再查一次确定原因
		var model BookModel
		if err := db.Select("id").First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return book.ErrBookNotFound
			}
			return apperrors.Wrap(err, "查询图书失败")
		}
		return book.ErrInsufficientStock
	}
	return nil
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		AuthorID:        b.AuthorID,
		Genre:           b.Genre,
		PublicationDate: b.PublicationDate,
		Price:           b.Price,
		Quantity:        b.Quantity,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:              model.ID,
		Title:           model.Title,
		AuthorID:        model.AuthorID,
		Genre:           model.Genre,
		PublicationDate: model.PublicationDate,
		Price:           model.Price,
		Quantity:        model.Quantity,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
