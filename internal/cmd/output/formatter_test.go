package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stash/internal/cmd/table"
)

type row struct {
	ID    string `json:"id" yaml:"id"`
	Items int    `json:"item_count" yaml:"item_count"`
}

func sample() table.Data {
	return table.Data{
		Headers: []string{"ID", "Items"},
		Rows:    [][]string{{"100", "3"}, {"200/c1", "1"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"markdown", FormatMarkdown, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestJSONFormatterTableData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, sample()))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{
		{"id": "100", "items": "3"},
		{"id": "200/c1", "items": "1"},
	}, got)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, row{ID: "vault", Items: 2}))
	assert.Contains(t, buf.String(), "id: vault")
	assert.Contains(t, buf.String(), "item_count: 2")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, sample()))
	out := buf.String()
	assert.Contains(t, out, "200/c1")
	assert.Contains(t, strings.ToUpper(out), "ITEMS")
}

func TestTableFormatterReflectsStructs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, []row{{ID: "100", Items: 2}}))
	assert.Contains(t, strings.ToUpper(buf.String()), "ITEM COUNT")
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, sample()))
	out := buf.String()
	assert.Contains(t, out, "|")
	assert.Contains(t, out, "200/c1")
}

func TestRenderPicksShape(t *testing.T) {
	raw := []row{{ID: "vault", Items: 4}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sample(), raw))
	assert.Contains(t, buf.String(), `"item_count": 4`)

	buf.Reset()
	require.NoError(t, Render(&buf, FormatTable, sample(), raw))
	assert.Contains(t, buf.String(), "200/c1")
	assert.NotContains(t, buf.String(), "vault")
}
