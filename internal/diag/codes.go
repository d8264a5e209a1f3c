package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Конфигурация
	CfgInfo          Code = 1000
	CfgParse         Code = 1001
	CfgUnknownKey    Code = 1002
	CfgInvalidValue  Code = 1003
	CfgUnknownLang   Code = 1004
	CfgInvalidEngine Code = 1005
	CfgInvalidColor  Code = 1006

	// Построение грамматик
	GrmInfo                 Code = 2000
	GrmDuplicateRule        Code = 2001
	GrmInvalidPattern       Code = 2002
	GrmInvalidNestedGrammar Code = 2003
	GrmDuplicateLanguage    Code = 2004
	GrmEmpty                Code = 2005

	// Токенизация
	TokInfo           Code = 3000
	TokRecursionLimit Code = 3001

	IOLoadFileError Code = 4001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		CfgInfo:                 "Configuration information",
		CfgParse:                "Configuration syntax error",
		CfgUnknownKey:           "Unknown configuration key",
		CfgInvalidValue:         "Invalid configuration value",
		CfgUnknownLang:          "Unknown language",
		CfgInvalidEngine:        "Invalid pattern engine",
		CfgInvalidColor:         "Invalid theme color",
		GrmInfo:                 "Grammar information",
		GrmDuplicateRule:        "Duplicate rule",
		GrmInvalidPattern:       "Invalid pattern",
		GrmInvalidNestedGrammar: "Invalid nested grammar",
		GrmDuplicateLanguage:    "Duplicate language",
		GrmEmpty:                "Grammar has no rules",
		TokInfo:                 "Tokenizer information",
		TokRecursionLimit:       "Nested grammar recursion limit exceeded",
		IOLoadFileError:         "I/O load file error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("GRM%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TOK%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
