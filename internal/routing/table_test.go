package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"graficaltda/orquestrador/pkg/errorutil"
)

func TestTableResolve(t *testing.T) {
	table := NewTable(map[string]string{
		"ClienteMalaDireta": "arn:mala-direta",
		"Default":           "arn:default",
	})

	t.Run("direct hit", func(t *testing.T) {
		arn, err := table.Resolve("ClienteMalaDireta")
		assert.NoError(t, err)
		assert.Equal(t, "arn:mala-direta", arn)
	})

	t.Run("empty tipo falls back to default", func(t *testing.T) {
		arn, err := table.Resolve("")
		assert.NoError(t, err)
		assert.Equal(t, "arn:default", arn)
	})

	t.Run("unknown tipo falls back to default", func(t *testing.T) {
		arn, err := table.Resolve("ClienteCartoes")
		assert.NoError(t, err)
		assert.Equal(t, "arn:default", arn)
	})
}

func TestTableResolveSemDefault(t *testing.T) {
	// 请求类型与 Default 都缺失时返回 config 类错误（中止批次，不崩溃进程）
	table := NewTable(map[string]string{"ClienteEtiquetas": "arn:etiquetas"})

	arn, err := table.Resolve("ClienteCartoes")
	assert.Error(t, err)
	assert.Empty(t, arn)
	assert.True(t, errorutil.IsKind(err, errorutil.KindConfig))
}

func TestTableImmutable(t *testing.T) {
	source := map[string]string{"Default": "arn:default"}
	table := NewTable(source)

	// 调用方修改原始 map 不应影响已加载的路由表
	source["Default"] = "arn:changed"

	arn, err := table.Resolve("")
	assert.NoError(t, err)
	assert.Equal(t, "arn:default", arn)
}
