// Package shopifyql 实现系统接受的 ShopifyQL 只读子集：
// SHOW <metric> [BY <dims>] FROM <table> [DURING <range>] [LIMIT <n>]。
package shopifyql

import (
	"strings"

	"shop-insight-go/internal/model"
)

// forbiddenKeywords 是生成结果中绝不允许出现的写操作关键字。
var forbiddenKeywords = []string{"DELETE", "DROP", "UPDATE", "INSERT"}

const (
	reasonDangerous = "Dangerous keywords detected in query."
	reasonNotShow   = "Query must start with SHOW for analytical retrieval."
)

// Validate 判定查询是否只读且形如 SHOW 查询。
// 这里只做大小写无关的子串检查，不解析表名与字段名。
func Validate(query string) model.ValidationVerdict {
	upper := strings.ToUpper(query)
	for _, kw := range forbiddenKeywords {
		if strings.Contains(upper, kw) {
			return model.ValidationVerdict{OK: false, Reason: reasonDangerous}
		}
	}
	if !strings.Contains(upper, "SHOW") {
		return model.ValidationVerdict{OK: false, Reason: reasonNotShow}
	}
	return model.ValidationVerdict{OK: true}
}
