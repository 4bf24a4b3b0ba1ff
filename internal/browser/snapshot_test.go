package browser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-world-model-agent/internal/action"
	"github.com/nbenliogludev/go-world-model-agent/internal/config"
)

func TestFromEvaluate(t *testing.T) {
	raw, err := fromEvaluate(map[string]any{
		"tree": "RootWebArea 'Shop'\n\t[1] link 'Home'\n",
		"html": "<body></body>",
	})
	require.NoError(t, err)
	assert.Equal(t, "RootWebArea 'Shop'\n\t[1] link 'Home'\n", raw.Tree)
	assert.Equal(t, "<body></body>", raw.HTML)

	_, err = fromEvaluate("tree")
	assert.Error(t, err)
}

func TestNewSnapshotCapsHTML(t *testing.T) {
	snap := newSnapshot("https://example.com", "Example", rawSnapshot{
		Tree: "tree",
		HTML: strings.Repeat("x", maxHTMLChars+10),
	})

	assert.Equal(t, "https://example.com", snap.URL)
	assert.Equal(t, "Example", snap.Title)
	assert.Equal(t, "tree", snap.Tree)
	assert.Len(t, snap.HTML, maxHTMLChars+3)
	assert.True(t, strings.HasSuffix(snap.HTML, "..."))
}

func TestSnapshotScriptStampsBidAttribute(t *testing.T) {
	assert.Contains(t, snapshotScript, "data-ai-id")
	assert.True(t, strings.HasPrefix(snapshotScript, "() =>"))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := config.DefaultConfig().Browser
	cfg.Driver = "selenium"

	_, err := New(cfg, zap.NewNop())
	assert.ErrorContains(t, err, `unknown browser driver "selenium"`)
}

func TestRodDriverNotInitialized(t *testing.T) {
	d := &RodDriver{log: zap.NewNop()}

	_, err := d.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, d.Goto(context.Background(), "https://example.com"), ErrNotInitialized)
	assert.ErrorIs(t, d.Execute(context.Background(), nil, action.ExecOptions{}), ErrNotInitialized)
	d.Close()
}
