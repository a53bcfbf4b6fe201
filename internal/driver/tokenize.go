package driver

import (
	"fmt"
	"os"

	"codeproof/internal/expand"
	"codeproof/internal/keywords"
	"codeproof/internal/lexer"
	"codeproof/internal/token"
)

// TokenInfo is one word of a tokenized file.
type TokenInfo struct {
	Token      token.Token
	Convention expand.Convention
	// Reserved is set for keywords of the file's language.
	Reserved bool
	// Parts holds the expanded words; nil unless expansion was requested.
	Parts []token.Token
}

type TokenizeResult struct {
	Path     string
	Language string
	Text     string
	Tokens   []TokenInfo
}

// Tokenize lexes the file at path. With expandWords set every token is also
// split by its casing convention. An empty language is inferred from the
// extension.
func Tokenize(path, language string, expandWords bool) (*TokenizeResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if IsBinary(content) {
		return nil, fmt.Errorf("%s: binary file", path)
	}
	if language == "" {
		language = LanguageID(path)
	}
	res := &TokenizeResult{Path: path, Language: language, Text: string(content)}
	reserved := keywords.Reserved(language)
	for tok := range lexer.Tokens(res.Text) {
		info := TokenInfo{
			Token:      tok,
			Convention: expand.Recognize(tok.Lexeme),
			Reserved:   reserved.Contains(tok.Lexeme),
		}
		if expandWords {
			info.Parts = expand.Expand(tok)
		}
		res.Tokens = append(res.Tokens, info)
	}
	return res, nil
}
