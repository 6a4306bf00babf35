package backend

import (
	"context"
	"fmt"

	"shop-insight-go/internal/model"
	"shop-insight-go/pkg/shopify"
)

// ShopifyBackend 通过 Shopify Admin GraphQL API 执行 ShopifyQL。
type ShopifyBackend struct {
	client *shopify.Client
}

// NewShopifyBackend 创建 Shopify 后端。
func NewShopifyBackend(client *shopify.Client) *ShopifyBackend {
	return &ShopifyBackend{client: client}
}

// Name 返回后端名称。
func (b *ShopifyBackend) Name() string { return "shopify" }

// Execute 使用调用方透传的店铺凭证执行查询。
func (b *ShopifyBackend) Execute(ctx context.Context, cred model.StoreCredential, query string) (model.RawResult, error) {
	table, err := b.client.RunShopifyQL(ctx, cred.StoreID, cred.AccessToken, query)
	if err != nil {
		return nil, fmt.Errorf("shopify backend: %w", err)
	}
	records := table.Records()
	if len(records) == 0 {
		return model.NoData(), nil
	}
	out := make(model.RawResult, 0, len(records))
	for _, r := range records {
		out = append(out, model.Record(r))
	}
	return out, nil
}
