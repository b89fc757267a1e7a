package streaming

import (
	"reflect"
	"testing"

	"github.com/alexschlessinger/vanillachat/messages"
)

func TestStreamStateEmpty(t *testing.T) {
	snap := NewStreamState().Snapshot()
	if snap.Content == nil || len(snap.Content) != 0 {
		t.Fatalf("expected empty non-nil content, got %#v", snap.Content)
	}
}

func TestStreamStateText(t *testing.T) {
	s := NewStreamState()
	s.Apply(ContentFragment("Hi"), ContentFragment(" there"))

	snap := s.Snapshot()
	if len(snap.Content) != 1 || snap.Content[0].Type != messages.SegmentText {
		t.Fatalf("unexpected content %#v", snap.Content)
	}
	if snap.Text() != "Hi there" {
		t.Errorf("Text() = %q, want %q", snap.Text(), "Hi there")
	}
}

func TestStreamStateToolCallAssembly(t *testing.T) {
	s := NewStreamState()
	s.Apply(ToolCallFragment(0, "abc", "lookup", ""))
	s.Apply(ToolCallFragment(0, "", "", `{"q":`))
	s.Apply(ToolCallFragment(0, "", "", `"x"}`))

	calls := s.Snapshot().ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(calls))
	}
	call := calls[0]
	if call.ToolCallID != "abc" || call.ToolName != "lookup" {
		t.Errorf("id/name = %q/%q", call.ToolCallID, call.ToolName)
	}
	if call.ArgsText != `{"q":"x"}` {
		t.Errorf("ArgsText = %q", call.ArgsText)
	}
	if !reflect.DeepEqual(call.Args, map[string]any{"q": "x"}) {
		t.Errorf("Args = %#v", call.Args)
	}
}

func TestStreamStatePartialArgs(t *testing.T) {
	s := NewStreamState()
	s.Apply(ToolCallFragment(0, "abc", "lookup", `{"q":`))

	call := s.Snapshot().ToolCalls()[0]
	if call.Args == nil || len(call.Args) != 0 {
		t.Errorf("partial args should parse to empty map, got %#v", call.Args)
	}
	if call.ArgsText != `{"q":` {
		t.Errorf("ArgsText = %q", call.ArgsText)
	}
}

func TestStreamStateNonObjectArgs(t *testing.T) {
	s := NewStreamState()
	s.Apply(ToolCallFragment(0, "abc", "lookup", `[1,2]`))

	if args := s.Snapshot().ToolCalls()[0].Args; len(args) != 0 {
		t.Errorf("array args should parse to empty map, got %#v", args)
	}
}

func TestStreamStateIDSetOnce(t *testing.T) {
	s := NewStreamState()
	s.Apply(ToolCallFragment(0, "", "lookup", ""))
	s.Apply(ToolCallFragment(0, "late", "", ""))
	s.Apply(ToolCallFragment(0, "other", "", ""))

	if id := s.Snapshot().ToolCalls()[0].ToolCallID; id != "late" {
		t.Errorf("ToolCallID = %q, want late", id)
	}
}

func TestStreamStateNameLastNonEmptyWins(t *testing.T) {
	s := NewStreamState()
	s.Apply(ToolCallFragment(0, "a", "first", ""))
	s.Apply(ToolCallFragment(0, "", "", ""))
	s.Apply(ToolCallFragment(0, "", "second", ""))

	if name := s.Snapshot().ToolCalls()[0].ToolName; name != "second" {
		t.Errorf("ToolName = %q, want second", name)
	}
}

func TestStreamStateFirstSeenOrder(t *testing.T) {
	s := NewStreamState()
	s.Apply(ToolCallFragment(3, "c3", "three", ""))
	s.Apply(ToolCallFragment(1, "c1", "one", ""))
	s.Apply(ToolCallFragment(3, "", "", "{}"))
	s.Apply(ContentFragment("text"))

	snap := s.Snapshot()
	if snap.Content[0].Type != messages.SegmentText {
		t.Fatalf("text segment should come first, got %#v", snap.Content[0])
	}
	calls := snap.ToolCalls()
	if len(calls) != 2 || calls[0].ToolCallID != "c3" || calls[1].ToolCallID != "c1" {
		t.Fatalf("unexpected tool call order %#v", calls)
	}
	if s.ToolCallCount() != 2 {
		t.Errorf("ToolCallCount() = %d", s.ToolCallCount())
	}
}

func TestStreamStateSnapshotsAreIndependent(t *testing.T) {
	s := NewStreamState()
	s.Apply(ToolCallFragment(0, "abc", "lookup", `{"q":"x"}`))
	first := s.Snapshot()
	first.Content[0].Args["q"] = "mutated"

	if got := s.Snapshot().ToolCalls()[0].Args["q"]; got != "x" {
		t.Errorf("later snapshot affected by mutation: %v", got)
	}
}
