// Package shopify 提供调用 Shopify Admin GraphQL API 执行 ShopifyQL 的客户端。
package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Khan/genqlient/graphql"

	"shop-insight-go/internal/config"
)

// AccessTokenHeader 是 Admin API 的鉴权头。
const AccessTokenHeader = "X-Shopify-Access-Token"

var (
	// ErrMissingCredential 表示缺少店铺域名或访问令牌。
	ErrMissingCredential = errors.New("shopify: store and access token are required")
	// ErrQueryRejected 表示 Shopify 返回了 parseErrors。
	ErrQueryRejected = errors.New("shopify: query rejected")
)

const (
	shopifyqlOperation = "ShopifyQL"
	shopifyqlDocument  = `query ShopifyQL($q: String!) {
  shopifyqlQuery(query: $q) {
    __typename
    ... on TableResponse {
      tableData {
        columns { name dataType }
        rowData
      }
    }
    parseErrors { code message }
  }
}`
)

// Column 是 ShopifyQL 表格响应中的列定义。
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// TableData 是 ShopifyQL 的表格结果，rowData 中的值全部为字符串。
type TableData struct {
	Columns []Column   `json:"columns"`
	RowData [][]string `json:"rowData"`
}

type parseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type shopifyqlData struct {
	ShopifyqlQuery *struct {
		TypeName    string       `json:"__typename"`
		TableData   *TableData   `json:"tableData"`
		ParseErrors []parseError `json:"parseErrors"`
	} `json:"shopifyqlQuery"`
}

// tokenTransport 为每个请求附加店铺访问令牌。
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(AccessTokenHeader, t.token)
	return t.base.RoundTrip(req)
}

// Client 是 Shopify Admin API 客户端，店铺与令牌按次传入。
type Client struct {
	apiVersion string
	scheme     string
	timeout    time.Duration
	transport  http.RoundTripper
}

// NewClient 根据配置创建客户端。
func NewClient(cfg config.ShopifyConfig) *Client {
	version := cfg.APIVersion
	if version == "" {
		version = "2024-01"
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return &Client{
		apiVersion: version,
		scheme:     scheme,
		timeout:    cfg.Timeout,
		transport:  http.DefaultTransport,
	}
}

// ShopDomain 规范化店铺标识：不含点号的短名补全为 *.myshopify.com。
func ShopDomain(store string) string {
	store = strings.TrimSpace(store)
	store = strings.TrimPrefix(store, "https://")
	store = strings.TrimPrefix(store, "http://")
	store = strings.TrimSuffix(store, "/")
	if store != "" && !strings.Contains(store, ".") {
		store += ".myshopify.com"
	}
	return store
}

// Endpoint 返回店铺的 GraphQL 地址。
func (c *Client) Endpoint(store string) string {
	return fmt.Sprintf("%s://%s/admin/api/%s/graphql.json", c.scheme, ShopDomain(store), c.apiVersion)
}

// graphqlClient 为指定店铺与令牌创建 GraphQL 客户端，底层连接池共享。
func (c *Client) graphqlClient(store, accessToken string) graphql.Client {
	httpClient := &http.Client{
		Timeout:   c.timeout,
		Transport: &tokenTransport{token: accessToken, base: c.transport},
	}
	return graphql.NewClient(c.Endpoint(store), httpClient)
}

// RunShopifyQL 执行一条 ShopifyQL 查询并返回表格数据。
// 顶层 GraphQL errors 以 gqlerror.List 形式包装返回；parseErrors 映射为 ErrQueryRejected。
func (c *Client) RunShopifyQL(ctx context.Context, store, accessToken, query string) (*TableData, error) {
	if strings.TrimSpace(store) == "" || strings.TrimSpace(accessToken) == "" {
		return nil, ErrMissingCredential
	}

	var data shopifyqlData
	req := &graphql.Request{
		Query:     shopifyqlDocument,
		Variables: map[string]any{"q": query},
		OpName:    shopifyqlOperation,
	}
	if err := c.graphqlClient(store, accessToken).MakeRequest(ctx, req, &graphql.Response{Data: &data}); err != nil {
		return nil, fmt.Errorf("shopify graphql request failed: %w", err)
	}

	result := data.ShopifyqlQuery
	if result == nil {
		return &TableData{}, nil
	}
	if len(result.ParseErrors) > 0 {
		msgs := make([]string, 0, len(result.ParseErrors))
		for _, e := range result.ParseErrors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrQueryRejected, strings.Join(msgs, "; "))
	}
	if result.TableData == nil {
		return &TableData{}, nil
	}
	return result.TableData, nil
}

// Records 把表格转换为按列名索引的记录。数值类型的列尽量转换为数字。
func (t *TableData) Records() []map[string]any {
	if t == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(t.RowData))
	for _, row := range t.RowData {
		rec := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i >= len(row) {
				break
			}
			rec[col.Name] = convertCell(col.DataType, row[i])
		}
		out = append(out, rec)
	}
	return out
}

func convertCell(dataType, raw string) any {
	switch strings.ToUpper(dataType) {
	case "INTEGER":
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case "FLOAT", "MONEY", "PERCENT", "NUMBER", "DECIMAL":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}
