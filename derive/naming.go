package derive

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// ShaderName converts a Go identifier to the snake_case name used in shader
// declarations: BaseColorTexture becomes base_color_texture and UVScale
// becomes uv_scale.
func ShaderName(goName string) string {
	runes := []rune(goName)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return lower.String(b.String())
}

// GoName converts a snake_case shader name to an exported Go identifier.
func GoName(shaderName string) string {
	var b strings.Builder
	for part := range strings.SplitSeq(shaderName, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}
