package shopifyql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_RejectsForbiddenKeywords(t *testing.T) {
	queries := []string{
		"SHOW total_sales FROM sales; DROP TABLE sales",
		"show total_sales from sales; drop table sales",
		"DELETE FROM customers",
		"SHOW x FROM sales; update inventory set quantity_available = 0",
		"insert into sales values (1)",
		"SHOW total_sales FROM sales -- Delete later",
	}
	for _, q := range queries {
		v := Validate(q)
		assert.False(t, v.OK, q)
		assert.Equal(t, reasonDangerous, v.Reason, q)
	}
}

func TestValidate_RequiresShow(t *testing.T) {
	for _, q := range []string{"", "SELECT * FROM sales", "FROM sales LIMIT 5"} {
		v := Validate(q)
		assert.False(t, v.OK, q)
		assert.Equal(t, reasonNotShow, v.Reason, q)
	}
}

func TestValidate_AcceptsShowQueries(t *testing.T) {
	for _, q := range []string{
		TopSellingQuery,
		InventoryQuery,
		CustomerQuery,
		DefaultSalesQuery,
		"show net_sales from sales",
	} {
		v := Validate(q)
		assert.True(t, v.OK, q)
		assert.Empty(t, v.Reason, q)
	}
}

func TestValidate_ForbiddenCheckedBeforeShow(t *testing.T) {
	// 同时缺少 SHOW 且含危险关键字时，报告危险关键字。
	v := Validate("DROP TABLE sales")
	assert.False(t, v.OK)
	assert.Equal(t, reasonDangerous, v.Reason)
}
