package config

// Encode is the inverse of Decode: it renders the model back into the
// generic document shape. Decode(Encode(t)) yields a tree equal to t.
func Encode(t *Tree) map[string]any {
	doc := map[string]any{
		KeyName: t.Name,
	}
	if t.Description != "" {
		doc[KeyDescription] = t.Description
	}
	if t.Root != nil {
		doc[KeyRoot] = EncodeNode(t.Root)
	}
	return doc
}

// EncodeNode renders a single node and its subtree.
func EncodeNode(n *Node) map[string]any {
	out := map[string]any{
		KeyType: n.Type,
		KeyName: n.Name,
	}
	if len(n.Properties) > 0 {
		out[KeyProperties] = cloneValue(n.Properties)
	}
	if len(n.Children) > 0 {
		children := make([]any, len(n.Children))
		for i, c := range n.Children {
			children[i] = EncodeNode(c)
		}
		out[KeyChildren] = children
	}
	return out
}
