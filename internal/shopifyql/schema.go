package shopifyql

import (
	"fmt"
	"strings"
)

// Field 描述虚拟表中的一个字段；Measure 为可累加的数值指标。
type Field struct {
	Name    string
	Measure bool
}

// Table 是对外暴露给模型与 warehouse 后端的虚拟表。
type Table struct {
	Name     string
	Fields   []Field
	Temporal string // 支持 DURING 的日期列，为空表示不支持
}

// HasField 判断字段是否属于该表。
func (t Table) HasField(name string) bool {
	_, ok := t.Field(name)
	return ok
}

// Field 按名称查找字段。
func (t Table) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Catalog 按固定顺序列出可查询的三张虚拟表。
var Catalog = []Table{
	{
		Name: "sales",
		Fields: []Field{
			{Name: "net_sales", Measure: true},
			{Name: "gross_sales", Measure: true},
			{Name: "total_sales", Measure: true},
			{Name: "orders_count", Measure: true},
			{Name: "product_id"},
			{Name: "product_title"},
			{Name: "variant_id"},
			{Name: "customer_id"},
			{Name: "day"},
			{Name: "week"},
			{Name: "month"},
			{Name: "quarter"},
			{Name: "year"},
		},
		Temporal: "day",
	},
	{
		Name: "inventory",
		Fields: []Field{
			{Name: "quantity_on_hand", Measure: true},
			{Name: "quantity_committed", Measure: true},
			{Name: "quantity_available", Measure: true},
			{Name: "product_id"},
			{Name: "product_title"},
			{Name: "variant_id"},
		},
	},
	{
		Name: "customers",
		Fields: []Field{
			{Name: "customer_id"},
			{Name: "first_name"},
			{Name: "last_name"},
			{Name: "email"},
			{Name: "city"},
			{Name: "country"},
			{Name: "total_spent", Measure: true},
			{Name: "orders_count", Measure: true},
		},
	},
}

// LookupTable 按名称查找虚拟表。
func LookupTable(name string) (Table, bool) {
	for _, t := range Catalog {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// DescribeCatalog 渲染供模型阅读的表与字段清单。
func DescribeCatalog() string {
	var b strings.Builder
	for i, t := range Catalog {
		var measures, others []string
		for _, f := range t.Fields {
			if f.Measure {
				measures = append(measures, f.Name)
			} else {
				others = append(others, f.Name)
			}
		}
		fmt.Fprintf(&b, "%d. %s:\n", i+1, t.Name)
		fmt.Fprintf(&b, "   - %s\n", strings.Join(measures, ", "))
		fmt.Fprintf(&b, "   - %s\n", strings.Join(others, ", "))
	}
	return b.String()
}
