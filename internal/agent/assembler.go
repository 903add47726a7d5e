package agent

import (
	"sort"
	"strings"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
)

// Fragment is one incremental piece of a streamed model response: a text
// delta or a tool-call delta.
type Fragment struct {
	Text     string
	ToolCall *ToolCallFragment
}

// ToolCallFragment carries part of the tool call at position Index.
type ToolCallFragment struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// Assembly is a fully assembled model round.
type Assembly struct {
	Text         string
	ToolCalls    []domain.ToolCall
	HasToolCalls bool
}

type partialCall struct {
	id   string
	name strings.Builder
	args strings.Builder
}

// Assembler rebuilds one round's text and tool calls from fragments.
// Use a fresh Assembler per round.
type Assembler struct {
	text    strings.Builder
	calls   map[int]*partialCall
	sawCall bool
}

func NewAssembler() *Assembler {
	return &Assembler{calls: make(map[int]*partialCall)}
}

// Add consumes the next fragment and returns the text to show the user now.
// Text is always buffered but only surfaced until the first tool-call
// fragment of the round.
func (a *Assembler) Add(f Fragment) string {
	if tc := f.ToolCall; tc != nil {
		a.sawCall = true
		pc, ok := a.calls[tc.Index]
		if !ok {
			pc = &partialCall{}
			a.calls[tc.Index] = pc
		}
		if tc.ID != "" {
			pc.id = tc.ID
		}
		pc.name.WriteString(tc.Name)
		pc.args.WriteString(tc.Arguments)
	}

	if f.Text == "" {
		return ""
	}
	a.text.WriteString(f.Text)
	if a.sawCall {
		return ""
	}
	return f.Text
}

// Result returns the assembled round with tool calls ordered by index.
func (a *Assembler) Result() Assembly {
	indexes := make([]int, 0, len(a.calls))
	for i := range a.calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	calls := make([]domain.ToolCall, 0, len(indexes))
	for _, i := range indexes {
		pc := a.calls[i]
		calls = append(calls, domain.ToolCall{
			ID:   pc.id,
			Type: "function",
			Function: domain.ToolCallFunction{
				Name:      pc.name.String(),
				Arguments: pc.args.String(),
			},
		})
	}

	return Assembly{
		Text:         a.text.String(),
		ToolCalls:    calls,
		HasToolCalls: a.sawCall,
	}
}
