package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/lcr/internal/types"
)

// declRule maps one provider-native declaration node kind onto the engine's
// symbol taxonomy. The tables below are the only place node kind strings
// appear; nothing downstream inspects tree-sitter kinds.
type declRule struct {
	kind      types.SymbolKind
	nameField string // grammar field holding the name node; "" = first identifier child
}

// langSpec is the static per-language grammar description.
type langSpec struct {
	language    *tree_sitter.Language
	declKinds   map[string]declRule
	identKinds  map[string]bool // leaf node kinds that are identifier occurrences
	assignKinds map[string]bool // node kinds whose "left" field is an assignment target
	scopeKinds  map[string]bool // declaration kinds that contribute to qualified names
	classKinds  map[string]bool // scope kinds whose direct functions are methods
}

func languageSpecs() map[types.Language]*langSpec {
	return map[types.Language]*langSpec{
		types.LanguageGo: {
			language: tree_sitter.NewLanguage(tree_sitter_go.Language()),
			declKinds: map[string]declRule{
				"function_declaration": {types.SymbolKindFunction, "name"},
				"method_declaration":   {types.SymbolKindMethod, "name"},
				"type_spec":            {types.SymbolKindStruct, "name"},
				"var_spec":             {types.SymbolKindVariable, "name"},
				"const_spec":           {types.SymbolKindVariable, "name"},
				"field_declaration":    {types.SymbolKindField, "name"},
			},
			identKinds: map[string]bool{
				"identifier":         true,
				"type_identifier":    true,
				"field_identifier":   true,
				"package_identifier": true,
			},
			assignKinds: map[string]bool{
				"assignment_statement":  true,
				"short_var_declaration": true,
			},
			scopeKinds: map[string]bool{},
			classKinds: map[string]bool{},
		},
		types.LanguageCSharp: {
			language: tree_sitter.NewLanguage(tree_sitter_csharp.Language()),
			declKinds: map[string]declRule{
				"namespace_declaration":             {types.SymbolKindNamespace, "name"},
				"file_scoped_namespace_declaration": {types.SymbolKindNamespace, "name"},
				"class_declaration":                 {types.SymbolKindClass, "name"},
				"struct_declaration":                {types.SymbolKindStruct, "name"},
				"interface_declaration":             {types.SymbolKindInterface, "name"},
				"enum_declaration":                  {types.SymbolKindEnum, "name"},
				"enum_member_declaration":           {types.SymbolKindEnumMember, "name"},
				"method_declaration":                {types.SymbolKindMethod, "name"},
				"constructor_declaration":           {types.SymbolKindConstructor, "name"},
				"destructor_declaration":            {types.SymbolKindDestructor, "name"},
				"operator_declaration":              {types.SymbolKindOperator, ""},
				"property_declaration":              {types.SymbolKindProperty, "name"},
				"variable_declarator":               {types.SymbolKindVariable, "name"},
				"parameter":                         {types.SymbolKindParameter, "name"},
			},
			identKinds: map[string]bool{
				"identifier": true,
			},
			assignKinds: map[string]bool{
				"assignment_expression": true,
			},
			scopeKinds: map[string]bool{
				"namespace_declaration":             true,
				"file_scoped_namespace_declaration": true,
				"class_declaration":                 true,
				"struct_declaration":                true,
				"interface_declaration":             true,
				"enum_declaration":                  true,
			},
			classKinds: map[string]bool{
				"class_declaration":     true,
				"struct_declaration":    true,
				"interface_declaration": true,
			},
		},
		types.LanguagePython: {
			language: tree_sitter.NewLanguage(tree_sitter_python.Language()),
			declKinds: map[string]declRule{
				"class_definition":    {types.SymbolKindClass, "name"},
				"function_definition": {types.SymbolKindFunction, "name"},
			},
			identKinds: map[string]bool{
				"identifier": true,
			},
			assignKinds: map[string]bool{
				"assignment":           true,
				"augmented_assignment": true,
			},
			scopeKinds: map[string]bool{
				"class_definition": true,
			},
			classKinds: map[string]bool{
				"class_definition": true,
			},
		},
		types.LanguageJavaScript: {
			language: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
			declKinds: map[string]declRule{
				"function_declaration": {types.SymbolKindFunction, "name"},
				"class_declaration":    {types.SymbolKindClass, "name"},
				"method_definition":    {types.SymbolKindMethod, "name"},
				"variable_declarator":  {types.SymbolKindVariable, "name"},
				"field_definition":     {types.SymbolKindField, "property"},
			},
			identKinds: map[string]bool{
				"identifier":                    true,
				"property_identifier":           true,
				"shorthand_property_identifier": true,
			},
			assignKinds: map[string]bool{
				"assignment_expression":           true,
				"augmented_assignment_expression": true,
			},
			scopeKinds: map[string]bool{
				"class_declaration": true,
			},
			classKinds: map[string]bool{
				"class_declaration": true,
			},
		},
	}
}

// adjustKind applies the language-specific corrections that depend on the
// enclosing scope rather than the node kind alone.
func adjustKind(lang types.Language, rule declRule, name string, kindStack []string, spec *langSpec) types.SymbolKind {
	kind := rule.kind
	inClass := false
	for _, k := range kindStack {
		if spec.classKinds[k] {
			inClass = true
		}
	}
	switch lang {
	case types.LanguagePython:
		if kind == types.SymbolKindFunction && inClass {
			if name == "__init__" {
				return types.SymbolKindConstructor
			}
			if name == "__del__" {
				return types.SymbolKindDestructor
			}
			return types.SymbolKindMethod
		}
	case types.LanguageJavaScript:
		if kind == types.SymbolKindMethod && name == "constructor" {
			return types.SymbolKindConstructor
		}
	case types.LanguageCSharp:
		if kind == types.SymbolKindVariable {
			for _, k := range kindStack {
				if k == "field_declaration" {
					return types.SymbolKindField
				}
			}
		}
	}
	return kind
}
