package render

import (
	"sort"
	"strings"
)

type treeNode struct {
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

// Tree draws slash-separated file paths as a box-drawing directory tree.
// Directories carry a trailing slash and sort together with files by name.
func Tree(paths []string) string {
	root := newTreeNode()
	for _, path := range paths {
		node := root
		parts := strings.Split(path, "/")
		for i, part := range parts {
			if part == "" {
				continue
			}
			name := part
			if i < len(parts)-1 {
				name += "/"
			}
			child, ok := node.children[name]
			if !ok {
				child = newTreeNode()
				node.children[name] = child
			}
			node = child
		}
	}

	var b strings.Builder
	writeTree(&b, root, "")
	return b.String()
}

func writeTree(b *strings.Builder, node *treeNode, prefix string) {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		last := i == len(names)-1
		connector, extension := "├── ", "│   "
		if last {
			connector, extension = "└── ", "    "
		}
		b.WriteString(prefix + connector + name + "\n")
		writeTree(b, node.children[name], prefix+extension)
	}
}
