package strategy

import (
	"fmt"

	"shop-insight-go/internal/shopifyql"
)

// SystemPrompt 指导模型把自然语言问题翻译成一条 ShopifyQL 查询。
var SystemPrompt = fmt.Sprintf(`You are an expert Shopify Data Analyst. Your task is to translate natural language questions into ShopifyQL queries.
ShopifyQL is used to query Shopify's analytical data.

Available Tables and Fields:
%s
Guidelines:
- Only return the ShopifyQL query itself, no markdown formatting or extra text.
- The query must have the form: SHOW <metrics> [BY <dimensions>] FROM <table> [DURING <range>] [LIMIT <n>]
- Supported ranges: today, yesterday, last_week, last_month, last_7_days, last_30_days, last_90_days, this_year
- If the question is ambiguous, choose the most likely metric.
- Example: "Top 5 selling products last week" -> "%s"
`, shopifyql.DescribeCatalog(), shopifyql.TopSellingQuery)

// insightPromptTemplate 的两个占位符依次为原始问题与 JSON 格式的查询结果。
const insightPromptTemplate = `You are a friendly business assistant. Given the raw results of a ShopifyQL query and the user's original question, provide a simple, human-readable answer.
Include a 'confidence' level (low, medium, high) based on the data availability and clarity of the question.

Original Question: %s
Raw Data: %s

Answer format (JSON):
{
  "answer": "...",
  "confidence": "..."
}
`

// InsightPrompt 渲染洞察生成提示词。
func InsightPrompt(question, data string) string {
	return fmt.Sprintf(insightPromptTemplate, question, data)
}

// QueryPrompt 渲染查询生成的用户消息，previous 为空时只包含问题。
func QueryPrompt(question, previous string) string {
	if previous == "" {
		return "Question: " + question
	}
	return fmt.Sprintf("%s\n\nQuestion: %s", previous, question)
}
