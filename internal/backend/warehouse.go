package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"shop-insight-go/internal/model"
	"shop-insight-go/internal/shopifyql"
)

var (
	// ErrUnknownTable 表示查询的表不在白名单内。
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownField 表示查询的字段不属于对应表。
	ErrUnknownField = errors.New("unknown field")
	// ErrUnsupportedRange 表示 DURING 区间无法识别，或该表没有日期列。
	ErrUnsupportedRange = errors.New("unsupported DURING range")
)

const (
	defaultWarehouseLimit = 100
	maxWarehouseLimit     = 1000
)

// WarehouseBackend 把 SHOW 查询翻译为只读的 MySQL SELECT，数据表与虚拟表一一对应。
type WarehouseBackend struct {
	db  *gorm.DB
	now func() time.Time
}

// NewWarehouseBackend 创建 warehouse 后端。
func NewWarehouseBackend(db *gorm.DB) *WarehouseBackend {
	return &WarehouseBackend{db: db, now: time.Now}
}

// Name 返回后端名称。
func (b *WarehouseBackend) Name() string { return "warehouse" }

// queryPlan 是经过白名单检查后的查询结构，所有标识符都来自 shopifyql.Catalog。
type queryPlan struct {
	table   string
	selects []string
	groupBy []string
	orderBy string
	from    time.Time
	to      time.Time
	limit   int
}

// Execute 解析并执行查询。
func (b *WarehouseBackend) Execute(ctx context.Context, cred model.StoreCredential, query string) (model.RawResult, error) {
	stmt, err := shopifyql.Parse(query)
	if err != nil {
		return nil, err
	}
	plan, err := b.plan(stmt)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := b.build(b.db.WithContext(ctx), plan).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("warehouse query failed: %w", err)
	}
	if len(rows) == 0 {
		return model.NoData(), nil
	}

	out := make(model.RawResult, 0, len(rows))
	for _, row := range rows {
		rec := make(model.Record, len(row))
		for k, v := range row {
			rec[k] = normalizeValue(v)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (b *WarehouseBackend) plan(stmt *shopifyql.Statement) (*queryPlan, error) {
	table, ok := shopifyql.LookupTable(stmt.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, stmt.Table)
	}
	for _, name := range append(append([]string{}, stmt.Metrics...), stmt.Dimensions...) {
		if !table.HasField(name) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, table.Name, name)
		}
	}

	plan := &queryPlan{table: table.Name, limit: defaultWarehouseLimit}
	if stmt.Limit > 0 {
		plan.limit = min(stmt.Limit, maxWarehouseLimit)
	}

	// 只有带日期列的表（sales）做聚合
	aggregate := table.Temporal != ""
	var sums []string
	plan.selects = append(plan.selects, stmt.Dimensions...)
	plan.groupBy = append(plan.groupBy, stmt.Dimensions...)
	for _, m := range stmt.Metrics {
		f, _ := table.Field(m)
		if aggregate && f.Measure {
			plan.selects = append(plan.selects, fmt.Sprintf("SUM(%s) AS %s", m, m))
			sums = append(sums, m)
			continue
		}
		plan.selects = append(plan.selects, m)
		if aggregate {
			plan.groupBy = append(plan.groupBy, m)
		}
	}
	if len(sums) == 0 {
		plan.groupBy = nil
	} else if len(plan.groupBy) > 0 {
		plan.orderBy = sums[0] + " DESC"
	}

	if stmt.During != "" {
		if table.Temporal == "" {
			return nil, fmt.Errorf("%w: table %s has no date column", ErrUnsupportedRange, table.Name)
		}
		from, to, ok := rangeBounds(stmt.During, b.now())
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedRange, stmt.During)
		}
		plan.from, plan.to = from, to
	}
	return plan, nil
}

func (b *WarehouseBackend) build(tx *gorm.DB, plan *queryPlan) *gorm.DB {
	tx = tx.Table(plan.table).Select(plan.selects)
	if !plan.from.IsZero() {
		tx = tx.Where("day >= ?", plan.from)
	}
	if !plan.to.IsZero() {
		tx = tx.Where("day < ?", plan.to)
	}
	for _, g := range plan.groupBy {
		tx = tx.Group(g)
	}
	if plan.orderBy != "" {
		tx = tx.Order(plan.orderBy)
	}
	return tx.Limit(plan.limit)
}

// rangeBounds 把 DURING 区间映射为 [from, to)，to 为零值表示不设上界。
func rangeBounds(name string, now time.Time) (time.Time, time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch name {
	case "today":
		return today, time.Time{}, true
	case "yesterday":
		return today.AddDate(0, 0, -1), today, true
	case "last_week", "last_7_days":
		return today.AddDate(0, 0, -7), time.Time{}, true
	case "last_month", "last_30_days":
		return today.AddDate(0, 0, -30), time.Time{}, true
	case "last_90_days":
		return today.AddDate(0, 0, -90), time.Time{}, true
	case "this_year":
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), time.Time{}, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// normalizeValue 把驱动返回的 []byte（VARCHAR、DECIMAL）转换为字符串或数字。
func normalizeValue(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
