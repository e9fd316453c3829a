package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads a .patricia.kdl-shaped config file at path. A missing file
// is reported as (nil, nil): use Default() in that case.
func LoadKDL(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if cfg.Corpus.Root != "" && !filepath.IsAbs(cfg.Corpus.Root) {
		cfg.Corpus.Root = filepath.Clean(filepath.Join(dir, cfg.Corpus.Root))
	}
	return cfg, nil
}

// parseKDL parses KDL text against Default()'s values, overriding only what
// the document specifies.
func parseKDL(content string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(content) == "" {
		return cfg, nil
	}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "corpus":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Corpus.Root = v })
			}
		case "staging":
			for _, cn := range n.Children {
				assignSimpleString(cn, "dir", func(v string) { cfg.Staging.Dir = v })
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Index.Dir = s
					}
				case "spill_threshold":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.SpillThreshold = v
					}
				case "queue_capacity":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.QueueCapacity = v
					}
				case "writer_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.WriterWorkers = v
					}
				case "parallel_archive":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.ParallelArchive = b
					}
				}
			}
		case "archive":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Archive.Dir = s
					}
				case "compression":
					if s, ok := firstStringArg(cn); ok {
						cfg.Archive.Compression = s
					}
				case "keep_source":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Archive.KeepSource = b
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return cfg, nil
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

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
