// Package hcl provides the HCL implementation of the config.Parser
// interface. A tree is written as nested `node` blocks:
//
//	name = "guard"
//
//	node "selector" "top" {
//	  node "condition" {
//	    condition = "enemy_visible"
//	  }
//	  node "wait" {
//	    duration = "2s"
//	  }
//	}
//
// The first block label is the node type and the optional second label its
// name. Attributes inside a block become the node's properties, and nested
// blocks its children in source order. The parser produces exactly the
// generic document a JSON file with the same content would, so both
// formats go through the same decoding path.
package hcl
