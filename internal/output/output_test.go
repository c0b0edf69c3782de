package output_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prism-overlay/bwoverlay/internal/output"
	"github.com/prism-overlay/bwoverlay/internal/player"
)

func TestConsole_RendersKnownAndUnknownPlayers(t *testing.T) {
	var buf bytes.Buffer
	c := output.NewConsole(&buf)

	known := player.NewKnown("Alice", uuid.New(), "", player.NewStats(500000, 10, 5, 0, 0, 20, 5, 0, 0, player.Winstreaks{}))
	unknown := player.NewUnknown("Bob")

	require.NoError(t, c.Render([]player.Player{known, unknown}))

	out := buf.String()
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "USERNAME")
}
