package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tok := New([]string{"the", "and", "is", "of"})

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple lowercase", "phishing attack", []string{"phishing", "attack"}},
		{"upper case folded", "RANSOMWARE Protection", []string{"ransomware", "protection"}},
		{"punctuation splits", "multi-factor, authentication!", []string{"multi", "factor", "authentication"}},
		{"digits dropped", "CVE-2024-3094 xz", []string{"cve", "xz"}},
		{"letters around digits split", "ipv6rollout", []string{"ipv", "rollout"}},
		{"stop-words removed", "the state of the art", []string{"state", "art"}},
		{"duplicates kept", "patch patch and patch", []string{"patch", "patch", "patch"}},
		{"non-latin dropped", "サイバー security 網絡安全", []string{"security"}},
		{"accented letters split", "café sécurité", []string{"caf", "s", "curit"}},
		{"only symbols", "!@#$%^ 123", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Tokenize(tt.input))
		})
	}
}

func TestTokenizeAlphabetAndStopWords(t *testing.T) {
	stop := []string{"a", "the", "to", "in", "is"}
	tok := New(stop)

	inputs := []string{
		"Report incidents to the HKCERT hotline in 24 hours!",
		"NICT's NOTICE project is scanning IoT devices (2019–2024).",
		"NYC Cyber Command: protect your accounts — use a password manager.",
		"\t\n   ",
	}
	for _, in := range inputs {
		for _, token := range tok.Tokenize(in) {
			assert.Regexp(t, `^[a-z]+$`, token)
			assert.NotContains(t, stop, token)
		}
	}
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name      string
		query     []string
		candidate []string
		want      int
	}{
		{"no overlap", []string{"ransomware"}, []string{"phishing", "email"}, 0},
		{"single hit", []string{"ransomware"}, []string{"ransomware", "backup"}, 1},
		{"candidate multiplicity counts", []string{"security"}, []string{"security", "and", "security"}, 2},
		{"repeated query token", []string{"security", "security"}, []string{"security", "security"}, 4},
		{"repeated query token single hit", []string{"security", "security"}, []string{"security"}, 2},
		{"repeat weighs one term over another", []string{"backup", "backup", "patch"}, []string{"patch", "patch", "backup"}, 4},
		{"two distinct terms", []string{"ransomware", "protection"}, []string{"deploy", "ransomware", "protection"}, 2},
		{"empty query", nil, []string{"security"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlap(tt.query, Counts(tt.candidate)))
		})
	}
}
