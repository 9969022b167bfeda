package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceBlock_AppendsMissingBlock(t *testing.T) {
	got := ReplaceBlock("", "org-1", []string{"10.0.0.0 - 10.0.0.255"})

	assert.Equal(t,
		"# BEGIN organization org-1\n"+
			"10.0.0.0 - 10.0.0.255\n"+
			"# END organization org-1\n",
		got)
}

func TestReplaceBlock_RewritesExistingBlock(t *testing.T) {
	content := "# BEGIN organization org-1\n" +
		"10.0.0.0 - 10.0.0.255\n" +
		"# END organization org-1\n" +
		"# BEGIN organization org-2\n" +
		"192.168.0.1 - 192.168.0.1\n" +
		"# END organization org-2\n"

	got := ReplaceBlock(content, "org-1", []string{
		"10.0.0.0 - 10.0.0.5",
		"10.9.0.0 - 10.9.0.9",
	})

	assert.Equal(t,
		"# BEGIN organization org-1\n"+
			"10.0.0.0 - 10.0.0.5\n"+
			"10.9.0.0 - 10.9.0.9\n"+
			"# END organization org-1\n"+
			"# BEGIN organization org-2\n"+
			"192.168.0.1 - 192.168.0.1\n"+
			"# END organization org-2\n",
		got)
}

func TestReplaceBlock_LeavesOtherBlocksUntouched(t *testing.T) {
	content := "# BEGIN organization org-2\n" +
		"192.168.0.1 - 192.168.0.1\n" +
		"# END organization org-2\n"

	got := ReplaceBlock(content, "org-1", []string{"10.0.0.0 - 10.0.0.5"})

	assert.Contains(t, got, "192.168.0.1 - 192.168.0.1")
	assert.Contains(t, got, "# BEGIN organization org-1\n10.0.0.0 - 10.0.0.5\n# END organization org-1\n")
}

func TestReplaceBlock_EmptyLinesRemoveBlock(t *testing.T) {
	content := "# BEGIN organization org-1\n" +
		"10.0.0.0 - 10.0.0.255\n" +
		"# END organization org-1\n" +
		"# BEGIN organization org-2\n" +
		"192.168.0.1 - 192.168.0.1\n" +
		"# END organization org-2\n"

	got := ReplaceBlock(content, "org-1", nil)

	assert.NotContains(t, got, "org-1")
	assert.Contains(t, got, "# BEGIN organization org-2")
}

func TestReplaceBlock_NoopWhenAbsentAndEmpty(t *testing.T) {
	content := "# BEGIN organization org-2\nx\n# END organization org-2\n"
	assert.Equal(t, content, ReplaceBlock(content, "org-1", nil))
}
