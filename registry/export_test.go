package registry

import (
	"encoding/json"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Store_Export(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.Set(NetworkTest, "token", addr1)
	require.NoError(t, err)
	_, err = s.Set(NetworkTest, "compliance", addr2)
	require.NoError(t, err)

	t.Run("document", func(t *testing.T) {
		t.Parallel()

		out, err := s.Export(NetworkTest, ExportDocument)
		require.NoError(t, err)

		var doc Document
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, NetworkTest, doc.Network)
		assert.Equal(t, addr1, doc.Entries["token"])
		assert.Equal(t, addr2, doc.Entries["compliance"])
	})

	t.Run("key-value is sorted by name", func(t *testing.T) {
		t.Parallel()

		out, err := s.Export(NetworkTest, ExportKeyValue)
		require.NoError(t, err)
		assert.Equal(t, "compliance="+addr2+"\ntoken="+addr1+"\n", out)
	})

	t.Run("structured", func(t *testing.T) {
		t.Parallel()

		out, err := s.Export(NetworkTest, ExportStructured)
		require.NoError(t, err)

		var decoded struct {
			Network string            `toml:"network"`
			Entries map[string]string `toml:"entries"`
		}
		require.NoError(t, toml.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "test", decoded.Network)
		assert.Equal(t, addr1, decoded.Entries["token"])
	})
}

func Test_ParseExportFormat(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"document", "key-value", "structured"} {
		got, err := ParseExportFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, ExportFormat(valid), got)
	}

	_, err := ParseExportFormat("csv")
	require.Error(t, err)
}
