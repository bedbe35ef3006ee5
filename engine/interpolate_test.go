package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
	}{
		{"plain", "Hallo {{name}}!", map[string]string{"name": "Max"}, "Hallo Max!"},
		{"spaces inside braces", "Hallo {{ name }}!", map[string]string{"name": "Max"}, "Hallo Max!"},
		{"unknown becomes empty", "{{missing}} Hallo", nil, "Hallo"},
		{"values are not expanded", "{{name}}", map[string]string{"name": "{{description}}", "description": "x"}, "{{description}}"},
		{"repeated", "{{a}}-{{a}}", map[string]string{"a": "1"}, "1-1"},
		{"inner whitespace kept", "{{a}}", map[string]string{"a": "eins,\nzwei"}, "eins,\nzwei"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.template, tt.vars))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"detail", "fact"}, Placeholders("{{detail}} Basierend auf meinem Wissen: {{ fact }}"))
	assert.Empty(t, Placeholders("keine Variablen"))
}

func TestKnowledgeKeywords(t *testing.T) {
	assert.Equal(t, []string{"versand", "rückgabe", "öffnungszeiten mo-fr"},
		knowledgeKeywords("versand, rückgabe. tee\r\nöffnungszeiten mo-fr"))
	assert.True(t, mentionsKnowledge("wie ist die rückgabe?", "rückgabe, uhr"))
	assert.False(t, mentionsKnowledge("wie spät ist es? uhr", "rückgabe, uhr"))
	assert.Equal(t, []string{"a", "b"}, knowledgeFacts(" a \n\n\tb\n"))
}
