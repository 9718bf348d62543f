package order

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
)

// restock 回补订单所有明细的库存,返回回补的件数
// 图书已被删除时跳过该明细
func restock(ctx context.Context, bookRepo book.Repository, o *order.Order) (int, error) {
	total := 0
	for _, item := range o.Items {
		if err := bookRepo.UpdateStock(ctx, item.BookID, item.Quantity); err != nil {
			if errors.Is(err, book.ErrBookNotFound) {
				log.Ctx(ctx).Warn().
					Uint("order_id", o.ID).
					Uint("book_id", item.BookID).
					Msg("restock skipped, book no longer exists")
				continue
			}
			return 0, err
		}
		total += item.Quantity
	}
	return total, nil
}

func invalidateBooks(ctx context.Context, cache book.Cache, o *order.Order) {
	ids := make([]uint, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.BookID
	}
	if err := cache.Delete(ctx, ids...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uints("book_ids", ids).Msg("invalidate book cache failed")
	}
}
