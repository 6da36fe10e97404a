package treesitter

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

// declInfo is one declaration extracted from a document.
type declInfo struct {
	name      string
	qualified string // scope path without module prefix, "." separated
	kind      types.SymbolKind
	static    bool
	nameLine  int // 1-based position of the name token
	nameCol   int
	nameLen   int
	startByte uint // byte range of the whole declaration node
	endByte   uint
}

// identInfo is one identifier occurrence.
type identInfo struct {
	name      string
	line      int
	column    int
	length    int
	startByte uint
	endByte   uint
	write     bool
	declIndex int // index into decls when this token is a declaration name, else -1
}

// docModel is the derived semantic model for one document of one snapshot.
// It holds plain positions only; the syntax tree is released after extraction.
type docModel struct {
	doc    snapshot.Document
	lang   types.Language
	decls  []declInfo
	idents []identInfo
}

type modelBuilder struct {
	spec      *langSpec
	lang      types.Language
	content   []byte
	model     *docModel
	scope     []string // qualified-name path
	kindStack []string // enclosing node kinds
	declNames map[uint]int // name-token start byte -> decl index
}

// buildModel extracts declarations and identifier occurrences from a parsed
// tree. The tree is not retained.
func buildModel(doc snapshot.Document, lang types.Language, spec *langSpec, tree *tree_sitter.Tree) *docModel {
	b := &modelBuilder{
		spec:      spec,
		lang:      lang,
		content:   []byte(doc.Text),
		model:     &docModel{doc: doc, lang: lang},
		declNames: make(map[uint]int),
	}
	b.walk(tree.RootNode())
	return b.model
}

func (b *modelBuilder) walk(node *tree_sitter.Node) {
	kind := node.Kind()

	pushedScope := false
	if rule, ok := b.spec.declKinds[kind]; ok {
		if nameNode := b.declNameNode(node, rule); nameNode != nil {
			name := nameNode.Utf8Text(b.content)
			declKind := adjustKind(b.lang, rule, name, b.kindStack, b.spec)
			pos := nameNode.StartPosition()
			idx := len(b.model.decls)
			b.model.decls = append(b.model.decls, declInfo{
				name:      name,
				qualified: strings.Join(append(append([]string{}, b.scope...), name), "."),
				kind:      declKind,
				static:    b.hasStaticModifier(node),
				nameLine:  int(pos.Row) + 1,
				nameCol:   int(pos.Column) + 1,
				nameLen:   int(nameNode.EndByte() - nameNode.StartByte()),
				startByte: node.StartByte(),
				endByte:   node.EndByte(),
			})
			b.declNames[nameNode.StartByte()] = idx
			if b.spec.scopeKinds[kind] {
				b.scope = append(b.scope, name)
				pushedScope = true
			}
		}
	}

	if b.spec.identKinds[kind] && node.ChildCount() == 0 {
		pos := node.StartPosition()
		declIndex := -1
		if idx, ok := b.declNames[node.StartByte()]; ok {
			declIndex = idx
		}
		b.model.idents = append(b.model.idents, identInfo{
			name:      node.Utf8Text(b.content),
			line:      int(pos.Row) + 1,
			column:    int(pos.Column) + 1,
			length:    int(node.EndByte() - node.StartByte()),
			startByte: node.StartByte(),
			endByte:   node.EndByte(),
			write:     b.isAssignmentTarget(node),
			declIndex: declIndex,
		})
	}

	b.kindStack = append(b.kindStack, kind)
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			b.walk(child)
		}
	}
	b.kindStack = b.kindStack[:len(b.kindStack)-1]
	if pushedScope {
		b.scope = b.scope[:len(b.scope)-1]
	}
}

// declNameNode finds the name token of a declaration node.
func (b *modelBuilder) declNameNode(node *tree_sitter.Node, rule declRule) *tree_sitter.Node {
	if rule.nameField != "" {
		if n := node.ChildByFieldName(rule.nameField); n != nil {
			if b.spec.identKinds[n.Kind()] || n.Kind() == "qualified_name" {
				if n.Kind() == "qualified_name" {
					return lastIdentChild(n, b.spec)
				}
				return n
			}
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c != nil && b.spec.identKinds[c.Kind()] {
			return c
		}
	}
	return nil
}

// lastIdentChild returns the rightmost identifier in a qualified name node
// (e.g. the "Inner" of "namespace Outer.Inner").
func lastIdentChild(node *tree_sitter.Node, spec *langSpec) *tree_sitter.Node {
	var last *tree_sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c == nil {
			continue
		}
		if spec.identKinds[c.Kind()] {
			last = c
		} else if c.Kind() == "qualified_name" {
			if inner := lastIdentChild(c, spec); inner != nil {
				last = inner
			}
		}
	}
	return last
}

// isAssignmentTarget reports whether the identifier sits inside the "left"
// side of an enclosing assignment construct.
func (b *modelBuilder) isAssignmentTarget(node *tree_sitter.Node) bool {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		if b.spec.assignKinds[parent.Kind()] {
			left := parent.ChildByFieldName("left")
			return left != nil &&
				node.StartByte() >= left.StartByte() &&
				node.EndByte() <= left.EndByte()
		}
	}
	return false
}

func (b *modelBuilder) hasStaticModifier(node *tree_sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == "modifier" && c.Utf8Text(b.content) == "static" {
			return true
		}
	}
	return false
}

// declAt returns the innermost declaration whose node range contains the byte
// offset, or -1.
func (m *docModel) declAt(offset int) int {
	best := -1
	var bestSpan uint
	for i, d := range m.decls {
		if uint(offset) >= d.startByte && uint(offset) < d.endByte {
			span := d.endByte - d.startByte
			if best == -1 || span < bestSpan {
				best = i
				bestSpan = span
			}
		}
	}
	return best
}

// identAt returns the identifier whose token range contains the byte offset,
// or -1.
func (m *docModel) identAt(offset int) int {
	for i, id := range m.idents {
		if uint(offset) >= id.startByte && uint(offset) < id.endByte {
			return i
		}
	}
	return -1
}
