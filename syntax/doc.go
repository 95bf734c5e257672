// Package syntax holds the lossless concrete syntax tree for WebAssembly text.
//
// The tree has two layers. Green nodes and tokens are immutable, carry only a
// kind and their text length, and can be shared between trees. Red nodes
// (SyntaxNode, SyntaxToken) are cursors created on demand that add a parent
// link and an absolute offset, which makes upward and sibling navigation
// possible without storing parent pointers in the green tree.
//
// Concatenating the text of every token in a tree reproduces the source
// exactly, including whitespace, comments and malformed input.
package syntax
