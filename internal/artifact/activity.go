package artifact

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseActivity 将活动JSON折叠为一行展示文本
// 非JSON或没有 descripcion 字段时原样返回
func ParseActivity(s string) string {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil {
		return s
	}

	desc, ok := obj["descripcion"].(string)
	if !ok {
		return s
	}

	var b strings.Builder
	b.WriteString(desc)
	if t := stringField(obj, "tiempoEstimado"); t != "" {
		fmt.Fprintf(&b, " (%s)", t)
	}
	if f := stringField(obj, "formato"); f != "" {
		fmt.Fprintf(&b, " - Formato: %s", f)
	}
	if m := stringField(obj, "materiales"); m != "" {
		fmt.Fprintf(&b, " - Materiales: %s", m)
	}
	return b.String()
}

// stringField 读取字符串或字符串列表字段
func stringField(obj map[string]interface{}, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%g", v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
