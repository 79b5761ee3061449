package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name               string
		done, total, width int
		want               string
	}{
		{"empty", 0, 0, 10, "░░░░░░░░░░   0%"},
		{"half", 2, 4, 10, "█████░░░░░  50%"},
		{"full", 3, 3, 5, "█████ 100%"},
		{"min width", 1, 1, 2, "█████ 100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressBar(tt.done, tt.total, tt.width))
		})
	}
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("classic") })

	SetTheme("NEON")
	assert.Equal(t, "neon", Current().Name)
	assert.Equal(t, "◼", Current().BoxChecked)

	SetTheme("mono")
	assert.Equal(t, "[x]", Current().BoxChecked)

	SetTheme("unknown")
	assert.Equal(t, "classic", Current().Name)
}

func TestPanelMono(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	var buf bytes.Buffer
	Panel(&buf, []string{"Todos", "[ ] buy milk"})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "+"))
	assert.Contains(t, lines[1], "Todos")
	assert.Contains(t, lines[2], "[ ] buy milk")
	assert.True(t, strings.HasPrefix(lines[3], "+"))
}

func TestOKAndFail(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "boom")
	Hint(&buf, "try again")
	assert.Equal(t, "x added\n✖ boom\ntry again\n", buf.String())
}
