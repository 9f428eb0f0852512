package object

import "strings"

// Find resolves a slash-delimited path of names. An absolute path starts
// at the root of the tree and its first segment must name the root;
// a relative path starts at e's children. It returns nil if any segment
// does not match.
func (e *Entity) Find(path string) *Entity {
	node := e
	if strings.HasPrefix(path, "/") {
		for p := node.Parent(); p != nil; p = node.Parent() {
			node = p
		}
		segments := split(path)
		if len(segments) == 0 {
			return node
		}
		if segments[0] != node.Name() {
			return nil
		}
		return node.walk(segments[1:])
	}
	return node.walk(split(path))
}

func (e *Entity) walk(segments []string) *Entity {
	node := e
	for _, name := range segments {
		var next *Entity
		for _, c := range node.Children() {
			if c.Name() == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

func split(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}
