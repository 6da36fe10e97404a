package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL merges a .lcr.kdl document into cfg.
//
//	project { root "." name "myapp" }
//	load {
//	    include "src/**"
//	    exclude "**/generated/**"
//	    extensions ".go" ".cs"
//	    max_file_size 10485760
//	    max_file_count 10000
//	}
//	watch { enabled true debounce_ms 200 }
//	keywords { overrides "keywords.toml" }
func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse .lcr.kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "load":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					cfg.Load.Include = append(cfg.Load.Include, stringArgs(cn)...)
				case "exclude":
					cfg.Load.Exclude = append(cfg.Load.Exclude, stringArgs(cn)...)
				case "extensions":
					cfg.Load.Extensions = append(cfg.Load.Extensions, stringArgs(cn)...)
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Load.MaxFileSize = int64(v)
					}
				case "max_file_count":
					if v, ok := firstIntArg(cn); ok {
						cfg.Load.MaxFileCount = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "keywords":
			for _, cn := range n.Children {
				assignString(cn, "overrides", func(v string) { cfg.Keywords.OverridePath = v })
			}
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func stringArgs(n *document.Node) []string {
	var out []string
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func assignString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
