package config

import (
	"fmt"
	"sort"

	"github.com/vk/behaviorgo/internal/nodeid"
)

// Keys accepted at the top level of a tree document.
const (
	KeyName        = "name"
	KeyDescription = "description"
	KeyRoot        = "root"
)

// Keys accepted in a node object.
const (
	KeyType       = "type"
	KeyProperties = "properties"
	KeyChildren   = "children"
	KeyChild      = "child"
)

var (
	treeKeys = map[string]struct{}{KeyName: {}, KeyDescription: {}, KeyRoot: {}}
	nodeKeys = map[string]struct{}{KeyType: {}, KeyName: {}, KeyProperties: {}, KeyChildren: {}, KeyChild: {}}
)

// Decode translates a generic document into the tree model. It does not
// know which node types exist; that is checked by the builder against its
// registry. All structural issues are reported together in a
// *ValidationError.
func Decode(data map[string]any) (*Tree, error) {
	verr := &ValidationError{}
	if data == nil {
		verr.Addf("", ErrInvalidDocument, "document is empty")
		return nil, verr
	}
	doc := Normalize(data).(map[string]any)

	tree := &Tree{Name: DefaultTreeName}

	// A document with a "type" key and no "root" is a bare root node.
	_, hasRoot := doc[KeyRoot]
	_, hasType := doc[KeyType]
	if hasType && !hasRoot {
		tree.Root = decodeNode(doc, nodeid.Root(tree.Name), verr)
		if err := verr.ErrOrNil(); err != nil {
			return nil, err
		}
		return tree, nil
	}

	for _, key := range sortedKeys(doc) {
		if _, ok := treeKeys[key]; !ok {
			verr.Addf("", ErrInvalidDocument, "unknown top-level key %q", key)
		}
	}

	if raw, ok := doc[KeyName]; ok {
		name, isString := raw.(string)
		switch {
		case !isString:
			verr.Addf("", ErrInvalidDocument, "%q must be a string, got %T", KeyName, raw)
		case !nodeid.IsValidName(name):
			verr.Addf("", ErrInvalidDocument, "tree name %q must match [a-zA-Z0-9_-]+", name)
		default:
			tree.Name = name
		}
	}

	if raw, ok := doc[KeyDescription]; ok {
		desc, isString := raw.(string)
		if !isString {
			verr.Addf("", ErrInvalidDocument, "%q must be a string, got %T", KeyDescription, raw)
		}
		tree.Description = desc
	}

	rootAddr := nodeid.Root(tree.Name)
	switch raw := doc[KeyRoot].(type) {
	case nil:
		verr.Addf("", ErrInvalidDocument, "document has no %q node", KeyRoot)
	case map[string]any:
		tree.Root = decodeNode(raw, rootAddr, verr)
	default:
		verr.Addf(rootAddr.String(), ErrInvalidDocument, "%q must be an object, got %T", KeyRoot, raw)
	}

	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}
	return tree, nil
}

func decodeNode(raw map[string]any, addr *nodeid.Address, verr *ValidationError) *Node {
	path := addr.String()
	n := &Node{}

	for _, key := range sortedKeys(raw) {
		if _, ok := nodeKeys[key]; !ok {
			verr.Addf(path, ErrInvalidDocument, "unknown node key %q", key)
		}
	}

	switch t := raw[KeyType].(type) {
	case nil:
		verr.Addf(path, ErrInvalidDocument, "node has no %q", KeyType)
	case string:
		if !nodeid.IsValidName(t) {
			verr.Addf(path, ErrInvalidDocument, "node type %q must match [a-zA-Z0-9_-]+", t)
		}
		n.Type = t
	default:
		verr.Addf(path, ErrInvalidDocument, "%q must be a string, got %T", KeyType, t)
	}

	n.Name = n.Type
	if rawName, ok := raw[KeyName]; ok {
		name, isString := rawName.(string)
		switch {
		case !isString:
			verr.Addf(path, ErrInvalidDocument, "%q must be a string, got %T", KeyName, rawName)
		case name == "":
			verr.Addf(path, ErrInvalidDocument, "%q must not be empty", KeyName)
		default:
			n.Name = name
		}
	}

	if rawProps, ok := raw[KeyProperties]; ok && rawProps != nil {
		props, isMap := rawProps.(map[string]any)
		if !isMap {
			verr.Addf(path, ErrInvalidDocument, "%q must be an object, got %T", KeyProperties, rawProps)
		} else if len(props) > 0 {
			n.Properties = props
		}
	}

	var children []any
	rawChildren, hasChildren := raw[KeyChildren]
	rawChild, hasChild := raw[KeyChild]
	switch {
	case hasChildren && hasChild:
		verr.Addf(path, ErrInvalidDocument, "%q and %q are mutually exclusive", KeyChildren, KeyChild)
	case hasChildren && rawChildren != nil:
		list, isList := rawChildren.([]any)
		if !isList {
			verr.Addf(path, ErrInvalidDocument, "%q must be an array, got %T", KeyChildren, rawChildren)
		}
		children = list
	case hasChild:
		children = []any{rawChild}
	}

	for i, rawChild := range children {
		childMap, isMap := rawChild.(map[string]any)
		if !isMap {
			verr.Addf(addr.Child("node", i).String(), ErrInvalidDocument, "child must be an object, got %T", rawChild)
			continue
		}
		childType, _ := childMap[KeyType].(string)
		if !nodeid.IsValidName(childType) {
			childType = "node"
		}
		n.Children = append(n.Children, decodeNode(childMap, addr.Child(childType, i), verr))
	}

	return n
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String implements fmt.Stringer for log output.
func (n *Node) String() string {
	if n.Name == n.Type {
		return n.Type
	}
	return fmt.Sprintf("%s(%s)", n.Type, n.Name)
}
