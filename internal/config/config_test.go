package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ca-srg/cyberrag/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, FetchModeHTTP, cfg.FetchMode)
		assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
		assert.Equal(t, ComposerTemplate, cfg.ComposerBackend)
		assert.Equal(t, 900, cfg.AnswerMaxChars)
		assert.Equal(t, 8080, cfg.ServerPort)
	})

	t.Run("clamps fetch timeout", func(t *testing.T) {
		t.Setenv("FETCH_TIMEOUT", "5m")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, time.Minute, cfg.FetchTimeout)
	})

	t.Run("rejects unknown fetch mode", func(t *testing.T) {
		t.Setenv("FETCH_MODE", "carrier-pigeon")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("rejects cors origin without scheme", func(t *testing.T) {
		t.Setenv("SERVER_CORS_ORIGINS", "https://faq.example.org,faq.example.net")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "faq.example.net")
	})

	t.Run("gemini requires api key", func(t *testing.T) {
		t.Setenv("COMPOSER_BACKEND", "gemini")
		t.Setenv("GEMINI_API_KEY", "")

		_, err := Load()
		require.Error(t, err)

		t.Setenv("GEMINI_API_KEY", "test-key")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, ComposerGemini, cfg.ComposerBackend)
	})

	t.Run("sdk backends require api keys", func(t *testing.T) {
		for backend, keyVar := range map[string]string{
			ComposerAnthropic: "ANTHROPIC_API_KEY",
			ComposerOpenAI:    "OPENAI_API_KEY",
		} {
			t.Setenv("COMPOSER_BACKEND", backend)
			t.Setenv(keyVar, "")
			_, err := Load()
			require.Error(t, err, backend)
			assert.Contains(t, err.Error(), keyVar)

			t.Setenv(keyVar, "test-key")
			cfg, err := Load()
			require.NoError(t, err, backend)
			assert.Equal(t, backend, cfg.ComposerBackend)
		}
	})
}

func TestLoadSlack(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")

	cfg, err := LoadSlack()
	require.NoError(t, err)
	assert.True(t, cfg.SocketMode, "app token should switch on socket mode")
	assert.Equal(t, 10, cfg.RateUserPerMinute)
}

func TestLoadSourcesDefault(t *testing.T) {
	src, err := LoadSources("")
	require.NoError(t, err)

	assert.Equal(t, []string{"hongkong", "japan", "nyc"}, src.RegionNames())
	assert.Equal(t, 40, src.MinSentenceLength)
	assert.Equal(t, 5, src.TopK)
	assert.Contains(t, src.StopWords, "the")

	jp, ok := src.Region("japan")
	require.True(t, ok)
	assert.Equal(t, []string{"https://nco.nict.go.jp/en"}, jp.URLs)
	assert.Contains(t, jp.Hints, "nict")
}

func TestParseSourcesValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "no regions",
			yaml:    "regions: []\n",
			wantErr: types.ErrNoSources,
		},
		{
			name:    "empty url list",
			yaml:    "regions:\n  - name: x\n    hints: [x]\n    urls: []\n",
			wantErr: types.ErrNoSources,
		},
		{
			name:    "relative url",
			yaml:    "regions:\n  - name: x\n    hints: [x]\n    urls: [/about]\n",
			wantErr: types.ErrInvalidSourceURL,
		},
		{
			name:    "ftp url",
			yaml:    "regions:\n  - name: x\n    hints: [x]\n    urls: [\"ftp://example.com/a\"]\n",
			wantErr: types.ErrInvalidSourceURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSources([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing hints", func(t *testing.T) {
		_, err := ParseSources([]byte("regions:\n  - name: x\n    urls: [\"https://example.com\"]\n"))
		require.Error(t, err)
	})

	t.Run("duplicate region", func(t *testing.T) {
		_, err := ParseSources([]byte("regions:\n  - name: x\n    hints: [x]\n    urls: [\"https://a.example\"]\n  - name: X\n    hints: [y]\n    urls: [\"https://b.example\"]\n"))
		require.Error(t, err)
	})
}

func TestParseSourcesNormalizes(t *testing.T) {
	src, err := ParseSources([]byte(`
top_k: 500
regions:
  - name: " EU "
    hints: [" ENISA ", ""]
    urls: ["https://www.enisa.europa.eu/topics"]
stop_words: [" The ", ""]
`))
	require.NoError(t, err)

	assert.Equal(t, "eu", src.Regions[0].Name)
	assert.Equal(t, []string{"enisa"}, src.Regions[0].Hints)
	assert.Equal(t, []string{"the"}, src.StopWords)
	assert.Equal(t, maxTopK, src.TopK)
	assert.Equal(t, defaultMinSentenceLength, src.MinSentenceLength)
}

func TestLoadSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_sentence_length: 10\nregions:\n  - name: uk\n    hints: [ncsc]\n    urls: [\"https://www.ncsc.gov.uk/\"]\n"), 0o644))

	src, err := LoadSources(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"uk"}, src.RegionNames())
	assert.Equal(t, 10, src.MinSentenceLength)

	_, err = LoadSources(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadTelegram(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_ALLOW_FROM", " 42, 7 ,")

	cfg, err := LoadTelegram()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.ResponseTimeout)

	ids, err := cfg.AllowedUserIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{42, 7}, ids)

	t.Setenv("TELEGRAM_ALLOW_FROM", "42,alice")
	_, err = LoadTelegram()
	require.Error(t, err)
}
