package lsp

import (
	"context"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/gosense/gosense/internal/completion"
	"github.com/gosense/gosense/internal/lookup"
)

// textDocumentCompletion handles the textDocument/completion request.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	offset := offsetAt(doc.Content, params.Position)
	res, err := s.engine.Complete(context.Background(), completion.Request{
		File:    uriToPath(doc.URI),
		Content: []byte(doc.Content),
		Offset:  offset,
	})
	if err != nil {
		s.logger.Debug("completion failed", "uri", doc.URI, "offset", offset, "error", err)
		return nil, err
	}

	replace := protocol.Range{
		Start: positionAt(doc.Content, res.ReplaceStart),
		End:   positionAt(doc.Content, offset),
	}
	return protocol.CompletionList{
		IsIncomplete: false,
		Items:        completionItems(res.Items, &replace),
	}, nil
}

// completionItems maps engine items to LSP items. Item order is kept.
// When replace is set every item carries a text edit over it, so clients
// do not guess word boundaries inside import paths.
func completionItems(items []completion.Item, replace *protocol.Range) []protocol.CompletionItem {
	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		kind := itemKind(it)
		item := protocol.CompletionItem{
			Label: it.Text,
			Kind:  &kind,
		}
		if detail := itemDetail(it.Entry); detail != "" {
			item.Detail = &detail
		}
		newText := it.Text
		if it.Insert != nil {
			text := snippet(it.Apply())
			format := protocol.InsertTextFormatSnippet
			item.InsertText = &text
			item.InsertTextFormat = &format
			newText = text
		}
		if replace != nil {
			item.TextEdit = protocol.TextEdit{Range: *replace, NewText: newText}
		}
		out = append(out, item)
	}
	return out
}

func itemKind(it completion.Item) protocol.CompletionItemKind {
	switch it.Source {
	case completion.SourceSDK, completion.SourceProject:
		return protocol.CompletionItemKindModule
	case completion.SourceKeyword:
		return protocol.CompletionItemKindKeyword
	}

	switch it.Style {
	case lookup.StyleInterface:
		return protocol.CompletionItemKindInterface
	case lookup.StyleAggregate:
		return protocol.CompletionItemKindStruct
	case lookup.StyleFunction:
		return protocol.CompletionItemKindFunction
	case lookup.StyleMethod:
		return protocol.CompletionItemKindMethod
	case lookup.StyleVariable:
		return protocol.CompletionItemKindVariable
	case lookup.StyleConstant:
		return protocol.CompletionItemKindConstant
	case lookup.StyleField:
		return protocol.CompletionItemKindField
	case lookup.StylePackage:
		return protocol.CompletionItemKindModule
	default:
		return protocol.CompletionItemKindText
	}
}

// itemDetail joins tail and type text. Bold entries without type text are
// marked with an asterisk since LSP has no emphasis.
func itemDetail(e lookup.Entry) string {
	detail := strings.TrimSpace(e.TailText + " " + e.TypeText)
	if e.Bold && detail == "" {
		return "*"
	}
	return detail
}

var snippetEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)

// snippet renders an insertion as a snippet with the final tab stop at the
// caret.
func snippet(ins lookup.Insertion) string {
	caret := min(max(ins.Caret, 0), len(ins.Text))
	return snippetEscaper.Replace(ins.Text[:caret]) + "$0" + snippetEscaper.Replace(ins.Text[caret:])
}
