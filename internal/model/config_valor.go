package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValorKind 配置值类型（封闭集合：字符串/布尔/数值）
type ValorKind int

const (
	// ValorString 字符串值
	ValorString ValorKind = iota
	// ValorBool 布尔值
	ValorBool
	// ValorNumero 数值
	ValorNumero
)

// ConfigValor 处理配置的标签化变体值
// 线上格式为裸标量（"PCL_ETIQUETAS" / true / 30），不使用开放的 interface{}
type ConfigValor struct {
	kind ValorKind
	str  string
	b    bool
	num  float64
}

// Texto 构造字符串配置值
func Texto(s string) ConfigValor {
	return ConfigValor{kind: ValorString, str: s}
}

// Booleano 构造布尔配置值
func Booleano(b bool) ConfigValor {
	return ConfigValor{kind: ValorBool, b: b}
}

// Numero 构造数值配置值
func Numero(n float64) ConfigValor {
	return ConfigValor{kind: ValorNumero, num: n}
}

// Kind 返回值类型
func (v ConfigValor) Kind() ValorKind {
	return v.kind
}

// AsString 返回字符串值（非字符串类型返回空串）
func (v ConfigValor) AsString() string {
	if v.kind != ValorString {
		return ""
	}
	return v.str
}

// AsBool 返回布尔值
func (v ConfigValor) AsBool() bool {
	return v.kind == ValorBool && v.b
}

// AsNumero 返回数值
func (v ConfigValor) AsNumero() float64 {
	if v.kind != ValorNumero {
		return 0
	}
	return v.num
}

// MarshalJSON 序列化为裸标量
func (v ConfigValor) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValorBool:
		return json.Marshal(v.b)
	case ValorNumero:
		return json.Marshal(v.num)
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON 从裸标量还原变体值
func (v *ConfigValor) UnmarshalJSON(data []byte) error {
	s := string(data)
	switch {
	case s == "true" || s == "false":
		*v = Booleano(s == "true")
		return nil
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*v = Texto(str)
		return nil
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("valor de configuração inválido: %s", s)
		}
		*v = Numero(n)
		return nil
	}
}

// ProcessamentoConfig 按处理类型选择的配置映射
type ProcessamentoConfig map[string]ConfigValor
