package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil query service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQueryService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Query: &mockQueryService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil query service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingQueryService)
	})

	t.Run("query only is valid", func(t *testing.T) {
		ports := &Ports{
			Query: &mockQueryService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Query:     &mockQueryService{},
			Retriever: &mockRetriever{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_UpdatePorts(t *testing.T) {
	server, err := NewServer(&Ports{Query: &mockQueryService{}})
	require.NoError(t, err)

	t.Run("swaps the active pipeline", func(t *testing.T) {
		replacement := &Ports{Query: &mockQueryService{}, Retriever: &mockRetriever{}}

		err := server.UpdatePorts(replacement)

		require.NoError(t, err)
		assert.Same(t, replacement, server.currentPorts())
	})

	t.Run("rejects invalid replacement", func(t *testing.T) {
		before := server.currentPorts()

		err := server.UpdatePorts(&Ports{})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingQueryService)
		assert.Same(t, before, server.currentPorts(), "a bad swap must not take effect")
	})
}
