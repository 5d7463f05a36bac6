// Package config defines the format-agnostic model of a behavior tree
// document, along with the Parser interface implemented by the concrete
// file formats.
//
// Every input path ends in the same place: a generic map[string]any (the
// shape of a decoded JSON object) that Decode turns into a *Tree. JSON and
// HCL files are parsed into that map by their own packages, and in-memory
// callers hand it over directly. Keeping a single decoding path is what
// makes building from a file and building from the equivalent map produce
// the same tree.
package config
