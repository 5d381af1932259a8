// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/sage-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is one fenced code block from a reply.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a code block with a default width.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{Language: language, Code: code, MaxWidth: 80}
}

// Render renders the block with syntax highlighting and a language
// badge.
func (c CodeBlock) Render() string {
	code := strings.TrimRight(c.Code, "\n")

	var header string
	if c.Language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Bold(true).
			Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 2).
		MaxWidth(maxWidth).
		Render(header + highlightCode(code, c.Language))
}

// ParseCodeBlocks replaces fenced code blocks in text with rendered
// versions, leaving the surrounding prose untouched.
func ParseCodeBlocks(text string, maxWidth int) string {
	lines := strings.Split(text, "\n")
	var result []string
	var codeLines []string
	var language string
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			if inCodeBlock {
				cb := NewCodeBlock(language, strings.Join(codeLines, "\n"))
				cb.MaxWidth = maxWidth
				result = append(result, cb.Render())
				codeLines = nil
				language = ""
				inCodeBlock = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inCodeBlock = true
			}
		case inCodeBlock:
			codeLines = append(codeLines, line)
		default:
			result = append(result, line)
		}
	}

	// Unclosed fence: render what we have.
	if inCodeBlock && len(codeLines) > 0 {
		cb := NewCodeBlock(language, strings.Join(codeLines, "\n"))
		cb.MaxWidth = maxWidth
		result = append(result, cb.Render())
	}

	return strings.Join(result, "\n")
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies ANSI syntax highlighting via chroma. On any
// failure the original code comes back unstyled.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(sb.String(), "\n")
}
