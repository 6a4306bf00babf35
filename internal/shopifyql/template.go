package shopifyql

import "strings"

// 回退路径使用的固定查询模板。
const (
	TopSellingQuery   = "SHOW total_sales BY product_title FROM sales DURING last_week LIMIT 5"
	InventoryQuery    = "SHOW quantity_available BY product_title FROM inventory"
	CustomerQuery     = "SHOW orders_count BY first_name, last_name FROM customers"
	DefaultSalesQuery = "SHOW total_sales FROM sales DURING last_30_days"
)

// GenerateTemplate 按关键字把问题映射到一个固定模板，先匹配者优先。
func GenerateTemplate(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "top") && strings.Contains(q, "selling"):
		return TopSellingQuery
	case strings.Contains(q, "inventory") || strings.Contains(q, "stock"):
		return InventoryQuery
	case strings.Contains(q, "customers"):
		return CustomerQuery
	default:
		return DefaultSalesQuery
	}
}
