package listing

import (
	"fmt"
	"strings"
)

type FieldKind string

const (
	FieldTitle       FieldKind = "title"
	FieldBullet      FieldKind = "bullet"
	FieldDescription FieldKind = "description"
	FieldBackend     FieldKind = "backend_terms"
)

type Field struct {
	Kind  FieldKind
	Index int
	Text  string
	Limit int
}

func (f Field) Name() string {
	if f.Kind == FieldBullet && f.Index > 0 {
		return fmt.Sprintf("bullet_%d", f.Index)
	}
	return string(f.Kind)
}

func (f Field) Visible() bool {
	return f.Kind != FieldBackend
}

func VisibleText(fields []Field) string {
	return joinFields(fields, true)
}

func CompiledText(fields []Field) string {
	return joinFields(fields, false)
}

func joinFields(fields []Field, visibleOnly bool) string {
	var b strings.Builder
	for _, f := range fields {
		if visibleOnly && !f.Visible() {
			continue
		}
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(f.Text)
	}
	return b.String()
}

func TitleText(fields []Field) string {
	for _, f := range fields {
		if f.Kind == FieldTitle {
			return f.Text
		}
	}
	return ""
}

func BackendText(fields []Field) string {
	for _, f := range fields {
		if f.Kind == FieldBackend {
			return f.Text
		}
	}
	return ""
}
