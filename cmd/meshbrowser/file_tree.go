package main

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/meshview/internal/engine/importer"
)

// fileNode is one entry of the model tree. Path is absolute for files and
// relative to the root for directories.
type fileNode struct {
	Name     string
	Path     string
	IsDir    bool
	Children []*fileNode
}

// buildTree lists the importable files under root whose relative path
// contains search, case-insensitively. Empty directories are pruned.
func buildTree(root, search string) (*fileNode, int, error) {
	search = strings.ToLower(search)
	tree := &fileNode{Name: filepath.Base(root), IsDir: true}
	dirs := map[string]*fileNode{".": tree}
	count := 0

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !importer.Supported(p) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if search != "" && !strings.Contains(strings.ToLower(filepath.ToSlash(rel)), search) {
			return nil
		}

		parent := ensureDir(dirs, filepath.Dir(rel))
		parent.Children = append(parent.Children, &fileNode{Name: d.Name(), Path: p})
		count++
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sortTree(tree)
	return tree, count, nil
}

func ensureDir(dirs map[string]*fileNode, rel string) *fileNode {
	if n, ok := dirs[rel]; ok {
		return n
	}
	parent := ensureDir(dirs, filepath.Dir(rel))
	n := &fileNode{Name: filepath.Base(rel), Path: rel, IsDir: true}
	parent.Children = append(parent.Children, n)
	dirs[rel] = n
	return n
}

// sortTree orders directories before files, then by name.
func sortTree(n *fileNode) {
	sort.Slice(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, c := range n.Children {
		if c.IsDir {
			sortTree(c)
		}
	}
}

func (app *App) renderFileTree() {
	if app.tree == nil {
		imgui.TextDisabled("No folder open")
		imgui.TextDisabled("Use File > Open Folder...")
		return
	}

	if imgui.BeginChildStrV("FileTreeChild", imgui.NewVec2(0, 0), imgui.ChildFlagsBorders, imgui.WindowFlagsHorizontalScrollbar) {
		app.renderTreeNode(app.tree)
	}
	imgui.EndChild()
}

func (app *App) renderTreeNode(node *fileNode) {
	for _, child := range node.Children {
		if child.IsDir {
			flags := imgui.TreeNodeFlagsOpenOnArrow | imgui.TreeNodeFlagsOpenOnDoubleClick | imgui.TreeNodeFlagsSpanAvailWidth
			if app.search != "" {
				flags |= imgui.TreeNodeFlagsDefaultOpen
			}
			if imgui.TreeNodeExStrV("[+] "+child.Name, flags) {
				app.renderTreeNode(child)
				imgui.TreePop()
			}
			continue
		}

		flags := imgui.TreeNodeFlagsLeaf | imgui.TreeNodeFlagsNoTreePushOnOpen | imgui.TreeNodeFlagsSpanAvailWidth
		if child.Path == app.selected {
			flags |= imgui.TreeNodeFlagsSelected
		}
		imgui.TreeNodeExStrV(child.Name, flags)
		if imgui.IsItemClicked() && child.Path != app.selected {
			app.openModel(child.Path)
		}
	}
}
