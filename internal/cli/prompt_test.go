package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompterAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  first  \r\nlast"), &out)
	ctx := context.Background()

	answer, err := p.Ask(ctx, "? ")
	require.NoError(t, err)
	assert.Equal(t, "first", answer)

	answer, err = p.Ask(ctx, "? ")
	require.NoError(t, err)
	assert.Equal(t, "last", answer, "final line without newline")

	_, err = p.Ask(ctx, "? ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "? ? ? ", out.String())
}

func TestPrompterSecretWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n\ns3cret\n"), &out)

	secret, err := p.Secret(context.Background(), "Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)
	assert.Equal(t, 3, strings.Count(out.String(), "Password: "))
}

func TestPrompterHonorsCancellation(t *testing.T) {
	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	p := NewPrompter(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Ask(ctx, "? ")
	assert.ErrorIs(t, err, context.Canceled)
}
