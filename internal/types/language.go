package types

import "path/filepath"

// Language identifies the source language of a document.
type Language string

const (
	LanguageUnknown    Language = ""
	LanguageGo         Language = "go"
	LanguageCSharp     Language = "csharp"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
)

// LanguageForPath maps a file path to its language by extension.
func LanguageForPath(path string) Language {
	switch filepath.Ext(path) {
	case ".go":
		return LanguageGo
	case ".cs":
		return LanguageCSharp
	case ".py":
		return LanguagePython
	case ".js", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}
