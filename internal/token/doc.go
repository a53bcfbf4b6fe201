// Package token defines the word tokens produced by the lexer.
// Invariants:
//   - Token.Lexeme holds only letters and interior apostrophes; it is never empty.
//   - Token.End is exclusive and lies on the same line as Token.Start.
//   - End.Offset - Start.Offset == len(Lexeme) and the column distance equals the
//     lexeme's UTF-16 length.
package token
