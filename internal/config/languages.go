package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Language maps file types to an editing mode ("plain" or "markup").
type Language struct {
	Name      string   `toml:"name"`
	Mode      string   `toml:"mode"`
	FileTypes []string `toml:"file-types"`
}

type Languages struct {
	Languages []Language `toml:"language"`
}

// DefaultLanguages is used when languages.toml is absent.
func DefaultLanguages() Languages {
	return Languages{
		Languages: []Language{
			{Name: "markdown", Mode: "markup", FileTypes: []string{"md", "markdown", "mkd", "mdx", "README"}},
			{Name: "text", Mode: "plain", FileTypes: []string{"txt", "text", "log"}},
		},
	}
}

// Match returns the first language whose file types match path by
// extension or by full base name.
func (l Languages) Match(path string) *Language {
	base := filepath.Base(path)
	baseLower := strings.ToLower(base)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	for i := range l.Languages {
		lang := &l.Languages[i]
		for _, ft := range lang.FileTypes {
			ftLower := strings.ToLower(ft)
			if ftLower == ext || ftLower == baseLower {
				return lang
			}
			if strings.HasPrefix(ftLower, ".") && strings.TrimPrefix(ftLower, ".") == ext {
				return lang
			}
		}
	}
	return nil
}

// ModeFor returns the mode name for path, or fallback when nothing matches.
func (l Languages) ModeFor(path, fallback string) string {
	if path == "" {
		return fallback
	}
	if lang := l.Match(path); lang != nil && lang.Mode != "" {
		return lang.Mode
	}
	return fallback
}

func LoadLanguages() (Languages, error) {
	path, err := LanguagesPath()
	if err != nil {
		return DefaultLanguages(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultLanguages(), nil
		}
		return DefaultLanguages(), err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return DefaultLanguages(), err
	}
	return cfg, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
