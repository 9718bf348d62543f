package book

import (
	"time"

	"github.com/xiebiao/monobook/internal/domain/book"
)

const timeLayout = "2006-01-02 15:04:05"

// BookInput 创建/更新图书的输入
// PublicationDate为YYYY-MM-DD
type BookInput struct {
	Title           string
	AuthorID        uint
	Genre           string
	PublicationDate string
	Price           int64
	Quantity        int
}

func (in BookInput) toAttrs() (book.Attrs, error) {
	date, err := time.Parse(book.DateLayout, in.PublicationDate)
	if err != nil {
		return book.Attrs{}, book.ErrInvalidPublicationDate
	}
	return book.Attrs{
		Title:           in.Title,
		AuthorID:        in.AuthorID,
		Genre:           in.Genre,
		PublicationDate: date,
		Price:           in.Price,
		Quantity:        in.Quantity,
	}, nil
}

// BookResponse 图书响应DTO
type BookResponse struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	AuthorID        uint   `json:"author"`
	Genre           string `json:"genre"`
	PublicationDate string `json:"publication_date"`
	Price           int64  `json:"price"`
	Quantity        int    `json:"quantity"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		AuthorID:        b.AuthorID,
		Genre:           b.Genre,
		PublicationDate: b.PublicationDate.Format(book.DateLayout),
		Price:           b.Price,
		Quantity:        b.Quantity,
		CreatedAt:       b.CreatedAt.Format(timeLayout),
		UpdatedAt:       b.UpdatedAt.Format(timeLayout),
	}
}
