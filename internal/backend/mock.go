package backend

import (
	"context"
	"strings"

	"shop-insight-go/internal/model"
	"shop-insight-go/pkg/log"
)

// MockBackend 按查询中的关键字返回固定的演示数据，不访问任何外部服务。
type MockBackend struct{}

// NewMockBackend 创建 mock 后端。
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name 返回后端名称。
func (b *MockBackend) Name() string { return "mock" }

// Execute 依次匹配 sales、inventory、customers，都不命中时返回无数据诊断。
func (b *MockBackend) Execute(ctx context.Context, cred model.StoreCredential, query string) (model.RawResult, error) {
	log.Debugw("Simulating query execution", "store", cred.StoreID, "query", query)

	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "sales"):
		return model.RawResult{
			{"product_title": "Cool T-Shirt", "total_sales": 500},
			{"product_title": "Awesome Hoodie", "total_sales": 350},
			{"product_title": "Sleek Cap", "total_sales": 200},
		}, nil
	case strings.Contains(q, "inventory"):
		return model.RawResult{
			{"product_title": "Cool T-Shirt", "quantity_available": 15},
			{"product_title": "Awesome Hoodie", "quantity_available": 2},
			{"product_title": "Sleek Cap", "quantity_available": 50},
		}, nil
	case strings.Contains(q, "customers"):
		return model.RawResult{
			{"first_name": "John", "last_name": "Doe", "orders_count": 5},
			{"first_name": "Jane", "last_name": "Smith", "orders_count": 3},
		}, nil
	default:
		return model.NoData(), nil
	}
}
