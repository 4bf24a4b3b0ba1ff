package action

import (
	"testing"

	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRodKeyComb(t *testing.T) {
	tests := []struct {
		comb string
		key  input.Key
		mods []input.Key
	}{
		{"Enter", input.Enter, nil},
		{"Space", input.Space, nil},
		{"a", input.Key('a'), nil},
		{"ControlOrMeta+a", input.Key('a'), []input.Key{input.ControlLeft}},
		{"Meta+Shift+KeyT", input.Key('t'), []input.Key{input.MetaLeft, input.ShiftLeft}},
		{"Digit5", input.Key('5'), nil},
		{"Control++", input.Key('+'), []input.Key{input.ControlLeft}},
		{"Hyper+Tab", input.Tab, nil},
	}

	for _, tt := range tests {
		t.Run(tt.comb, func(t *testing.T) {
			key, mods, err := rodKeyComb(tt.comb)
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.mods, mods)
		})
	}
}

func TestRodKeyCombRejectsUnknownKeys(t *testing.T) {
	for _, comb := range []string{"F13", "Control+é", ""} {
		_, _, err := rodKeyComb(comb)
		assert.Error(t, err, comb)
	}
}

func TestRodButton(t *testing.T) {
	assert.Equal(t, proto.InputMouseButtonLeft, rodButton(""))
	assert.Equal(t, proto.InputMouseButtonLeft, rodButton("left"))
	assert.Equal(t, proto.InputMouseButtonRight, rodButton("right"))
	assert.Equal(t, proto.InputMouseButtonMiddle, rodButton("middle"))
}
