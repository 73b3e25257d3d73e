package postgres

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
type TxManager struct {
	client *Client
}

// NewTxManager 创建事务管理器
func NewTxManager(client *Client) *TxManager {
	return &TxManager{client: client}
}

// WithTransaction 在事务中执行操作，已在事务中时直接复用
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if getTx(ctx) != nil {
		return fn(ctx)
	}
	return m.client.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func getTx(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// getDB 事务内返回事务句柄，否则返回带上下文的连接
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := getTx(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
