package model

// Record 是一行表格数据：字段名到标量值的映射。
type Record map[string]any

// RawResult 是数据后端针对一条已校验查询返回的有序记录。
type RawResult []Record

// NoDataMessage 是无匹配数据时诊断记录中的提示文本。
const NoDataMessage = "No data found for this query."

// NoData 返回只含一条诊断记录的结果。
func NoData() RawResult {
	return RawResult{{"message": NoDataMessage}}
}

// IsEmpty 判断结果是否为无数据诊断记录。
func (r RawResult) IsEmpty() bool {
	if len(r) == 0 {
		return true
	}
	if len(r) != 1 || len(r[0]) != 1 {
		return false
	}
	msg, ok := r[0]["message"].(string)
	return ok && msg == NoDataMessage
}
