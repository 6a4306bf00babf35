// Package backend 定义执行已校验查询的数据后端及其实现。
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"shop-insight-go/internal/config"
	"shop-insight-go/internal/model"
	"shop-insight-go/pkg/shopify"
)

// ErrUnknownMode 表示 backend.mode 不在 mock | shopify | warehouse 之内。
var ErrUnknownMode = errors.New("unknown backend mode")

// DataBackend 执行一条已通过校验的查询，返回有序记录。
// 没有匹配数据时返回 model.NoData()，而不是错误。
type DataBackend interface {
	Execute(ctx context.Context, cred model.StoreCredential, query string) (model.RawResult, error)
	Name() string
}

// Deps 是构造非 mock 后端所需的外部资源。
type Deps struct {
	Shopify *shopify.Client
	DB      *gorm.DB
}

// New 根据配置选择数据后端。
func New(cfg config.BackendConfig, deps Deps) (DataBackend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mode)) {
	case "", "mock":
		return NewMockBackend(), nil
	case "shopify":
		if deps.Shopify == nil {
			return nil, fmt.Errorf("shopify backend requires a shopify client")
		}
		return NewShopifyBackend(deps.Shopify), nil
	case "warehouse":
		if deps.DB == nil {
			return nil, fmt.Errorf("warehouse backend requires a database connection")
		}
		return NewWarehouseBackend(deps.DB), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, cfg.Mode)
	}
}
