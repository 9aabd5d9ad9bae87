package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type EditorOptions struct {
	TabWidth      int    `toml:"tab-width"`
	DefaultMode   string `toml:"default-mode"`
	ShowStatusBar *bool  `toml:"show-status-bar"`
	DateFormat    string `toml:"date-format"`
}

// StatusBar reports whether the status bar starts visible.
func (o EditorOptions) StatusBar() bool {
	return o.ShowStatusBar == nil || *o.ShowStatusBar
}

type ElevateOptions struct {
	Helper     string `toml:"helper"`
	StagingDir string `toml:"staging-dir"`
	Timeout    string `toml:"timeout"`
}

// TimeoutDuration parses Timeout. Zero means no limit.
func (o ElevateOptions) TimeoutDuration() (time.Duration, error) {
	if o.Timeout == "" || o.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(o.Timeout)
	if err != nil {
		return 0, fmt.Errorf("elevate.timeout: %w", err)
	}
	return d, nil
}

type Theme struct {
	Theme                string `toml:"theme"`
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	StatuslineForeground string `toml:"statusline-foreground"`
	StatuslineBackground string `toml:"statusline-background"`
	MessageForeground    string `toml:"message-foreground"`
	ErrorForeground      string `toml:"error-foreground"`
	PromptForeground     string `toml:"prompt-foreground"`
	PromptBackground     string `toml:"prompt-background"`
	SelectionForeground  string `toml:"selection-foreground"`
	SelectionBackground  string `toml:"selection-background"`
	SudoForeground       string `toml:"sudo-foreground"`
	SudoBackground       string `toml:"sudo-background"`
	SyntaxHeading        string `toml:"syntax-heading"`
	SyntaxEmphasis       string `toml:"syntax-emphasis"`
	SyntaxStrong         string `toml:"syntax-strong"`
	SyntaxCode           string `toml:"syntax-code"`
	SyntaxLink           string `toml:"syntax-link"`
	SyntaxQuote          string `toml:"syntax-quote"`
	SyntaxList           string `toml:"syntax-list"`
	SyntaxPunctuation    string `toml:"syntax-punctuation"`
}

type Config struct {
	Editor  EditorOptions     `toml:"editor"`
	Elevate ElevateOptions    `toml:"elevate"`
	Theme   Theme             `toml:"theme"`
	Keymap  map[string]string `toml:"keymap"`
}

func Default() Config {
	showStatus := true
	return Config{
		Editor: EditorOptions{
			TabWidth:      4,
			DefaultMode:   "plain",
			ShowStatusBar: &showStatus,
			DateFormat:    "2006-01-02 15:04",
		},
		Elevate: ElevateOptions{
			Helper:     "sudo",
			StagingDir: "",
			Timeout:    "30s",
		},
		Theme: Theme{
			Theme:                "",
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			StatuslineForeground: "#B3B1AD",
			StatuslineBackground: "#0F1419",
			MessageForeground:    "#B3B1AD",
			ErrorForeground:      "#FF3333",
			PromptForeground:     "#0A0E14",
			PromptBackground:     "#E6B450",
			SelectionForeground:  "#B3B1AD",
			SelectionBackground:  "#27425A",
			SudoForeground:       "#0A0E14",
			SudoBackground:       "#F07178",
			SyntaxHeading:        "#FFA759",
			SyntaxEmphasis:       "#D4BFFF",
			SyntaxStrong:         "#FFD173",
			SyntaxCode:           "#BAE67E",
			SyntaxLink:           "#5CCFE6",
			SyntaxQuote:          "#5C6773",
			SyntaxList:           "#F29668",
			SyntaxPunctuation:    "#C0C0C0",
		},
		Keymap: map[string]string{
			"ctrl+n":   "new",
			"ctrl+o":   "open",
			"ctrl+s":   "save",
			"alt+s":    "save_as",
			"ctrl+q":   "quit",
			"ctrl+z":   "undo",
			"ctrl+y":   "redo",
			"ctrl+f":   "find",
			"f3":       "find_next",
			"shift+f3": "find_previous",
			"ctrl+r":   "replace",
			"alt+r":    "replace_all",
			"ctrl+g":   "goto_line",
			"f5":       "insert_datetime",
			"ctrl+x":   "cut",
			"ctrl+c":   "copy",
			"ctrl+v":   "paste",
			"ctrl+a":   "select_all",
			"ctrl+e":   "toggle_sudo",
			"ctrl+t":   "toggle_mode",
			"ctrl+b":   "toggle_status_bar",
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.DefaultMode != "" {
		cfg.Editor.DefaultMode = userCfg.Editor.DefaultMode
	}
	if userCfg.Editor.ShowStatusBar != nil {
		cfg.Editor.ShowStatusBar = userCfg.Editor.ShowStatusBar
	}
	if userCfg.Editor.DateFormat != "" {
		cfg.Editor.DateFormat = userCfg.Editor.DateFormat
	}
	if userCfg.Elevate.Helper != "" {
		cfg.Elevate.Helper = userCfg.Elevate.Helper
	}
	if userCfg.Elevate.StagingDir != "" {
		cfg.Elevate.StagingDir = userCfg.Elevate.StagingDir
	}
	if userCfg.Elevate.Timeout != "" {
		cfg.Elevate.Timeout = userCfg.Elevate.Timeout
	}
	if _, err := cfg.Elevate.TimeoutDuration(); err != nil {
		return cfg, err
	}
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	for k, v := range userCfg.Keymap {
		cfg.Keymap[k] = v
	}

	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.MessageForeground != "" {
		dst.MessageForeground = src.MessageForeground
	}
	if src.ErrorForeground != "" {
		dst.ErrorForeground = src.ErrorForeground
	}
	if src.PromptForeground != "" {
		dst.PromptForeground = src.PromptForeground
	}
	if src.PromptBackground != "" {
		dst.PromptBackground = src.PromptBackground
	}
	if src.SelectionForeground != "" {
		dst.SelectionForeground = src.SelectionForeground
	}
	if src.SelectionBackground != "" {
		dst.SelectionBackground = src.SelectionBackground
	}
	if src.SudoForeground != "" {
		dst.SudoForeground = src.SudoForeground
	}
	if src.SudoBackground != "" {
		dst.SudoBackground = src.SudoBackground
	}
	if src.SyntaxHeading != "" {
		dst.SyntaxHeading = src.SyntaxHeading
	}
	if src.SyntaxEmphasis != "" {
		dst.SyntaxEmphasis = src.SyntaxEmphasis
	}
	if src.SyntaxStrong != "" {
		dst.SyntaxStrong = src.SyntaxStrong
	}
	if src.SyntaxCode != "" {
		dst.SyntaxCode = src.SyntaxCode
	}
	if src.SyntaxLink != "" {
		dst.SyntaxLink = src.SyntaxLink
	}
	if src.SyntaxQuote != "" {
		dst.SyntaxQuote = src.SyntaxQuote
	}
	if src.SyntaxList != "" {
		dst.SyntaxList = src.SyntaxList
	}
	if src.SyntaxPunctuation != "" {
		dst.SyntaxPunctuation = src.SyntaxPunctuation
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

// LoadTheme reads theme/<name>.toml. Both a flat file and one wrapped in a
// [theme] table are accepted.
func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var wrap struct {
		Theme *Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err == nil && wrap.Theme != nil {
		return *wrap.Theme, nil
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err != nil {
		return Theme{}, fmt.Errorf("parse theme %s: %w", path, err)
	}
	return t, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QPAD_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qpad"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qpad"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
