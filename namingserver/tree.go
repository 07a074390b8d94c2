package namingserver

import (
	"github.com/brisk-labs/brisk/brisk"
	"github.com/brisk-labs/brisk/errors"
	"github.com/brisk-labs/brisk/path"
)

// pathNode is a node of the naming server's in-memory directory tree
// (spec.md §4.7). A node with a non-nil serverStubs is a file (leaf); a
// node with a nil serverStubs is a directory. The root is always a
// directory. All access to a tree of pathNodes is serialized by the
// owning Server's lock; pathNode itself holds no lock.
type pathNode struct {
	path        path.Path
	serverStubs *brisk.ServerStubs
	children    map[string]*pathNode
}

func newDirNode(p path.Path) *pathNode {
	return &pathNode{path: p, children: make(map[string]*pathNode)}
}

func newFileNode(p path.Path, stubs brisk.ServerStubs) *pathNode {
	return &pathNode{path: p, serverStubs: &stubs}
}

func (n *pathNode) isFile() bool { return n.serverStubs != nil }
func (n *pathNode) isDir() bool  { return n.serverStubs == nil }

// getChildNode returns the child named name, or errors.NotFound if there
// is none.
func (n *pathNode) getChildNode(name string) (*pathNode, error) {
	const op = "namingserver.pathNode.getChildNode"
	c, ok := n.children[name]
	if !ok {
		return nil, errors.E(op, errors.NotFound)
	}
	return c, nil
}

func (n *pathNode) doesChildFileExist(name string) bool {
	c, ok := n.children[name]
	return ok && c.isFile()
}

func (n *pathNode) doesChildDirectoryExist(name string) bool {
	c, ok := n.children[name]
	return ok && c.isDir()
}

// addChild adds child under name, failing errors.Exist if a child with
// that name is already present.
func (n *pathNode) addChild(name string, child *pathNode) error {
	const op = "namingserver.pathNode.addChild"
	if _, ok := n.children[name]; ok {
		return errors.E(op, errors.Exist)
	}
	n.children[name] = child
	return nil
}

// deleteChild removes the child named name, failing errors.NotFound if
// there is none.
func (n *pathNode) deleteChild(name string) error {
	const op = "namingserver.pathNode.deleteChild"
	if _, ok := n.children[name]; !ok {
		return errors.E(op, errors.NotFound)
	}
	delete(n.children, name)
	return nil
}

// getNodeByPath walks p's components from n, failing errors.NotFound if
// any component is absent.
func (n *pathNode) getNodeByPath(p path.Path) (*pathNode, error) {
	const op = "namingserver.pathNode.getNodeByPath"
	cur := n
	for _, c := range p.Components() {
		next, err := cur.getChildNode(c)
		if err != nil {
			return nil, errors.E(op, errors.NotFound, err)
		}
		cur = next
	}
	return cur, nil
}

// getDescendants returns every leaf (file) node reachable from n,
// including n itself if n is a file.
func (n *pathNode) getDescendants() []*pathNode {
	if n.isFile() {
		return []*pathNode{n}
	}
	var out []*pathNode
	for _, c := range n.children {
		out = append(out, c.getDescendants()...)
	}
	return out
}
