package artifact

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galaxy/config"
)

func TestKey(t *testing.T) {
	a := Key("flow.svg", []byte("<svg/>"))
	b := Key("../flow.svg", []byte("<svg/>"))
	c := Key("flow.svg", []byte("<svg></svg>"))

	assert.Equal(t, a, b, "names are cleaned")
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasSuffix(a, "/flow.svg"))
	assert.Len(t, strings.SplitN(a, "/", 2)[0], 16)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("x/flow.png"))
	assert.True(t, strings.HasPrefix(ContentType("x/flow.svg"), "image/svg+xml"))
	assert.Equal(t, "application/octet-stream", ContentType("x/flow"))
}

func TestUploadToMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("http://files.local/")

	key, url, err := Upload(ctx, s, "flow.svg", []byte("<svg/>"))
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/"+key, url)

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	keys, err := s.List(ctx, strings.Split(key, "/")[0])
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = Upload(ctx, nil, "flow.svg", nil)
	assert.Error(t, err)
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ArtifactConfig
	}{
		{"no endpoint", config.ArtifactConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}},
		{"no credentials", config.ArtifactConfig{Endpoint: "minio:9000", Bucket: "b"}},
		{"no bucket", config.ArtifactConfig{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Store(tt.cfg)
			assert.Error(t, err)
		})
	}

	s, err := NewS3Store(config.ArtifactConfig{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
}
