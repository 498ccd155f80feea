package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"cyrillic title", "Обзор нового телефона", "ru", true},
		{"mixed latin and cyrillic", "iPhone 15 обзор", "ru", true},
		{"japanese kana with kanji", "東京の天気です", "ja", true},
		{"chinese", "北京天气", "zh", true},
		{"korean", "안녕하세요", "ko", true},
		{"greek", "Καλημέρα", "el", true},
		{"latin only", "Hello world", "", false},
		{"single foreign letter", "Café Ж", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectScript(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty falls back", "   ", Default},
		{"script wins", "Привет, как дела? Это тестовый текст.", "ru"},
		{"english prose", "The quick brown fox jumps over the lazy dog while the farmer watches from the window of his house.", "en"},
		{"german prose", "Die Regierung hat heute beschlossen, dass die neuen Regeln ab dem nächsten Monat für alle Bürger gelten werden.", "de"},
		{"digits only", "12345 67890", Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestNormalize(t *testing.T) {
	code, ok := Normalize("RU")
	assert.True(t, ok)
	assert.Equal(t, "ru", code)

	code, ok = Normalize("en-US")
	assert.True(t, ok)
	assert.Equal(t, "en", code)

	_, ok = Normalize("not a language")
	assert.False(t, ok)
}

func TestName(t *testing.T) {
	assert.Equal(t, "Russian", Name("ru"))
	assert.Equal(t, "English", Name("en"))
	assert.Equal(t, "??", Name("??"))
}
