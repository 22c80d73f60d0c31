package routing

import (
	"fmt"

	"graficaltda/orquestrador/pkg/errorutil"
)

// TipoDefault 兜底处理类型（路由表必须包含该键）
const TipoDefault = "Default"

// Table 处理类型 → Lambda ARN 的静态路由表
// 启动时从配置加载一次，此后不可变；作为依赖注入 Router，不使用全局状态
type Table struct {
	functions map[string]string
}

// NewTable 创建路由表（复制入参，调用方后续修改不影响表内容）
func NewTable(functions map[string]string) *Table {
	copied := make(map[string]string, len(functions))
	for tipo, arn := range functions {
		copied[tipo] = arn
	}
	return &Table{functions: copied}
}

// Resolve 解析处理类型对应的 Lambda ARN
// 类型为空或不在表中时回退到 Default；两者都缺失是配置缺陷，
// 返回 config 类错误，中止当前批次而非进程
func (t *Table) Resolve(tipo string) (string, error) {
	if tipo != "" {
		if arn := t.functions[tipo]; arn != "" {
			return arn, nil
		}
	}

	if arn := t.functions[TipoDefault]; arn != "" {
		return arn, nil
	}

	return "", errorutil.Config(fmt.Sprintf(
		"nenhuma Lambda configurada para tipo '%s' e Lambda padrão não encontrada", tipo))
}

// Len 返回表内映射条数
func (t *Table) Len() int {
	return len(t.functions)
}
