package shopifyql

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax 表示查询不符合 SHOW 子集语法。
var ErrSyntax = errors.New("shopifyql syntax error")

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Statement 是解析后的 SHOW 查询。标识符统一为小写。
type Statement struct {
	Metrics    []string
	Dimensions []string
	Table      string
	During     string
	Limit      int
}

// Parse 解析 SHOW 子集。只有 warehouse 后端需要结构化的查询，校验器本身不依赖它。
func Parse(query string) (*Statement, error) {
	p := &parser{tokens: tokenize(query)}
	return p.parse()
}

func tokenize(query string) []string {
	query = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	query = strings.ReplaceAll(query, ",", " , ")
	return strings.Fields(query)
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) next() string {
	t := p.peek()
	if t != "" {
		p.pos++
	}
	return t
}

func (p *parser) keyword(kw string) bool {
	if strings.EqualFold(p.peek(), kw) {
		p.pos++
		return true
	}
	return false
}

func syntaxErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}

func (p *parser) ident() (string, error) {
	tok := strings.ToLower(p.next())
	if tok == "" {
		return "", syntaxErr("unexpected end of query")
	}
	if !identPattern.MatchString(tok) {
		return "", syntaxErr("invalid identifier %q", tok)
	}
	return tok, nil
}

// identList 读取逗号分隔的标识符列表。
func (p *parser) identList() ([]string, error) {
	var out []string
	for {
		id, err := p.ident()
		if err != nil {
			return nil, err
		}
		out = append(out, id)
		if p.peek() != "," {
			return out, nil
		}
		p.next()
	}
}

func (p *parser) parse() (*Statement, error) {
	if !p.keyword("SHOW") {
		return nil, syntaxErr("query must start with SHOW")
	}
	stmt := &Statement{}

	metrics, err := p.identList()
	if err != nil {
		return nil, err
	}
	stmt.Metrics = metrics

	if p.keyword("BY") {
		dims, err := p.identList()
		if err != nil {
			return nil, err
		}
		stmt.Dimensions = dims
	}

	if !p.keyword("FROM") {
		return nil, syntaxErr("expected FROM, got %q", p.peek())
	}
	if stmt.Table, err = p.ident(); err != nil {
		return nil, err
	}

	if p.keyword("DURING") {
		if stmt.During, err = p.ident(); err != nil {
			return nil, err
		}
	}

	if p.keyword("LIMIT") {
		raw := p.next()
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			return nil, syntaxErr("invalid LIMIT %q", raw)
		}
		stmt.Limit = n
	}

	if rest := p.peek(); rest != "" {
		return nil, syntaxErr("unexpected token %q", rest)
	}
	return stmt, nil
}
