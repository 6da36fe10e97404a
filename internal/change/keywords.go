package change

import (
	"os"
	"unicode"

	"github.com/pelletier/go-toml/v2"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/types"
)

// KeywordTable holds the reserved words an identifier may not collide with,
// per language. Built-in tables can be extended from a TOML file for projects
// using language extensions or contextual keywords.
type KeywordTable struct {
	byLanguage map[types.Language]map[string]bool
}

// DefaultKeywords returns the built-in reserved-word tables.
func DefaultKeywords() *KeywordTable {
	t := &KeywordTable{byLanguage: make(map[types.Language]map[string]bool, 4)}
	t.add(types.LanguageGo,
		"break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select", "struct",
		"switch", "type", "var")
	t.add(types.LanguageCSharp,
		"abstract", "as", "base", "bool", "break", "byte", "case", "catch",
		"char", "checked", "class", "const", "continue", "decimal", "default",
		"delegate", "do", "double", "else", "enum", "event", "explicit",
		"extern", "false", "finally", "fixed", "float", "for", "foreach",
		"goto", "if", "implicit", "in", "int", "interface", "internal", "is",
		"lock", "long", "namespace", "new", "null", "object", "operator",
		"out", "override", "params", "private", "protected", "public",
		"readonly", "ref", "return", "sbyte", "sealed", "short", "sizeof",
		"stackalloc", "static", "string", "struct", "switch", "this", "throw",
		"true", "try", "typeof", "uint", "ulong", "unchecked", "unsafe",
		"ushort", "using", "virtual", "void", "volatile", "while")
	t.add(types.LanguagePython,
		"False", "None", "True", "and", "as", "assert", "async", "await",
		"break", "class", "continue", "def", "del", "elif", "else", "except",
		"finally", "for", "from", "global", "if", "import", "in", "is",
		"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
		"while", "with", "yield")
	t.add(types.LanguageJavaScript,
		"break", "case", "catch", "class", "const", "continue", "debugger",
		"default", "delete", "do", "else", "export", "extends", "false",
		"finally", "for", "function", "if", "import", "in", "instanceof",
		"let", "new", "null", "return", "static", "super", "switch", "this",
		"throw", "true", "try", "typeof", "var", "void", "while", "with",
		"yield")
	return t
}

func (t *KeywordTable) add(lang types.Language, words ...string) {
	set := t.byLanguage[lang]
	if set == nil {
		set = make(map[string]bool, len(words))
		t.byLanguage[lang] = set
	}
	for _, w := range words {
		set[w] = true
	}
}

// IsReserved reports whether name is a reserved word of the language.
func (t *KeywordTable) IsReserved(lang types.Language, name string) bool {
	return t.byLanguage[lang][name]
}

// keywordOverrides is the TOML shape for additional reserved words, keyed by
// language name.
type keywordOverrides struct {
	Keywords map[string][]string `toml:"keywords"`
}

// LoadOverrides merges additional reserved words from a TOML file into the
// table. A missing file is not an error.
func (t *KeywordTable) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return lcrerrors.Wrap(lcrerrors.CodeConfig, err, "failed to read keyword overrides %s", path)
	}
	var overrides keywordOverrides
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return lcrerrors.Wrap(lcrerrors.CodeConfig, err, "invalid keyword overrides %s", path)
	}
	for lang, words := range overrides.Keywords {
		t.add(types.Language(lang), words...)
	}
	return nil
}

// ValidIdentifier reports whether name is syntactically a legal identifier:
// a letter or underscore followed by letters, digits or underscores.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
