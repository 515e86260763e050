package display

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dugout/frame"
)

func init() {
	pterm.DisableStyling()
}

func sampleFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f := frame.New("name", "hr")
	require.NoError(t, f.AppendRow("p1", "Judge", 62.0))
	require.NoError(t, f.AppendRow("p2", "Ohtani", nil))
	require.NoError(t, f.AppendRow("p3", "Betts", 35.0))
	return f
}

func TestRenderFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFrame(&buf, sampleFrame(t), 0))

	out := buf.String()
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "Judge")
	assert.Contains(t, out, "62")
	assert.Contains(t, out, "p3")
	assert.NotContains(t, out, "rows shown")
}

func TestRenderFrame_Limit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFrame(&buf, sampleFrame(t), 2))

	out := buf.String()
	assert.Contains(t, out, "Ohtani")
	assert.NotContains(t, out, "Betts")
	assert.Contains(t, out, "... 2 of 3 rows shown")
}

func TestNewFrameJSON(t *testing.T) {
	data, err := MarshalJSON(NewFrameJSON(sampleFrame(t)))
	require.NoError(t, err)

	var decoded struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"name", "hr"}, decoded.Columns)
	require.Len(t, decoded.Rows, 3)
	assert.Equal(t, "p1", decoded.Rows[0]["_index"])
	assert.Equal(t, 62.0, decoded.Rows[0]["hr"])
	assert.Nil(t, decoded.Rows[1]["hr"])
}

func TestShouldOutputJSON(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)

	assert.False(t, ShouldOutputJSON(nil))
	assert.False(t, ShouldOutputJSON(child))

	require.NoError(t, root.PersistentFlags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(child))
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, map[string]int{"rows": 3}))
	assert.Equal(t, "{\n  \"rows\": 3\n}\n", buf.String())
}
