package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "embeddinggemma", cfg.Model)
	assert.Equal(t, 768, cfg.Dimension)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		// Should have default values
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
		assert.Equal(t, "embeddinggemma", cfg.Model)
		assert.Equal(t, 768, cfg.Dimension)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.Host)
	})

	t.Run("with custom model", func(t *testing.T) {
		cfg := NewConfig(WithModel("text-embedding-3-small"))

		assert.Equal(t, "text-embedding-3-small", cfg.Model)
	})

	t.Run("with custom dimension", func(t *testing.T) {
		cfg := NewConfig(WithDimension(1536))

		assert.Equal(t, 1536, cfg.Dimension)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://custom:8080/v1"),
			WithModel("custom-embed"),
			WithDimension(384),
		)

		assert.Equal(t, "http://custom:8080/v1", cfg.Host)
		assert.Equal(t, "custom-embed", cfg.Model)
		assert.Equal(t, 384, cfg.Dimension)
	})
}

func TestConfig_Normalize(t *testing.T) {
	t.Run("adds v1 suffix", func(t *testing.T) {
		cfg := &Config{Host: "http://localhost:11434"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("strips trailing slash before suffixing", func(t *testing.T) {
		cfg := &Config{Host: "http://localhost:11434/"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("leaves canonical host alone", func(t *testing.T) {
		cfg := &Config{Host: "http://localhost:11434/v1"}
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("ignores empty host", func(t *testing.T) {
		cfg := &Config{}
		cfg.Normalize()
		assert.Equal(t, "", cfg.Host)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid default", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("normalizes before validating", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := &Config{Model: "m", Dimension: 768}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := &Config{Host: "http://localhost:11434", Dimension: 768}
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive dimension", func(t *testing.T) {
		cfg := &Config{Host: "http://localhost:11434", Model: "m"}
		assert.Error(t, cfg.Validate())
	})
}

func TestCheckDimension(t *testing.T) {
	t.Run("matching vectors pass", func(t *testing.T) {
		assert.NoError(t, CheckDimension([][]float32{{1, 2, 3}, {4, 5, 6}}, 3))
	})

	t.Run("mismatch is reported with index", func(t *testing.T) {
		err := CheckDimension([][]float32{{1, 2, 3}, {4, 5}}, 3)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
		assert.Contains(t, err.Error(), "vector 1")
	})

	t.Run("zero expected disables the check", func(t *testing.T) {
		assert.NoError(t, CheckDimension([][]float32{{1}, {1, 2, 3}}, 0))
	})

	t.Run("empty input passes", func(t *testing.T) {
		assert.NoError(t, CheckDimension(nil, 768))
	})
}
