package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevOut, prevNoColor := Stdout, color.NoColor
	Stdout, color.NoColor = buf, true
	t.Cleanup(func() { Stdout, color.NoColor = prevOut, prevNoColor })
	return buf
}

func TestTable_Render(t *testing.T) {
	buf := capture(t)

	table := NewTable([]string{"NAME", "CRON"})
	table.AddRow([]string{"sched-long-name", "0 0 * * *"})
	table.AddRow([]string{"a", "*/5 * * * *"})
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "NAME             CRON"))
	assert.True(t, strings.HasPrefix(lines[1], strings.Repeat("-", len("sched-long-name"))+"  "))
	assert.True(t, strings.HasPrefix(lines[3], "a                "))
	assert.Equal(t, 2, table.Len())
}

func TestPrintJSON(t *testing.T) {
	buf := capture(t)

	require.NoError(t, PrintJSON(map[string]int{"migrated": 3}))
	assert.Equal(t, "{\n  \"migrated\": 3\n}\n", buf.String())
}

func TestMessages(t *testing.T) {
	buf := capture(t)

	Success("迁移完成: %d", 2)
	Warning("退役失败: %s", "a")
	assert.Contains(t, buf.String(), "迁移完成: 2")
	assert.Contains(t, buf.String(), "退役失败: a")
}
