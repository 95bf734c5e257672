// Package parser turns WebAssembly text into a lossless syntax tree.
//
// Parsing never fails. Input the grammar cannot place is kept in the tree as
// ERROR tokens and described by a SyntaxError, so the text of the returned
// root always equals the source. Recovery is built from a few combinators
// (retry, resume, expectRightParen and the error token/term absorbers) that
// keep a mistake local to the construct it occurs in.
//
// The lexer is directed: the parser asks for the token kind it expects at
// the current position. Tokenize offers a context-free classification of
// the same input for tools that only need a token stream.
package parser
