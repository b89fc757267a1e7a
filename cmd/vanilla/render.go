package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexschlessinger/vanillachat/llm"
	"github.com/alexschlessinger/vanillachat/messages"
	"go.uber.org/zap"
)

var _ messages.EventProcessor = (*textRenderer)(nil)
var _ messages.EventProcessor = (*jsonRenderer)(nil)

// textRenderer prints snapshot text progressively and summarizes tool calls at the end
type textRenderer struct {
	out      io.Writer
	splitter llm.ThinkSplitter
	wrote    bool
	quiet    bool
}

func newTextRenderer(out io.Writer, quiet bool) *textRenderer {
	return &textRenderer{out: out, quiet: quiet}
}

// OnSnapshot prints the text the snapshot adds; think blocks are styled apart
func (r *textRenderer) OnSnapshot(prev, cur messages.Snapshot) {
	delta := messages.TextDelta(prev, cur)
	if delta == "" {
		return
	}
	visible, thinking := r.splitter.ProcessChunk(delta)
	r.write(visible, thinking)
}

func (r *textRenderer) write(visible, thinking string) {
	if thinking != "" && !r.quiet {
		fmt.Fprint(r.out, thinkStyle.Styled(thinking))
		r.wrote = true
	}
	if visible != "" {
		fmt.Fprint(r.out, visible)
		r.wrote = true
	}
}

// OnComplete flushes held-back text and lists the tool calls of the final snapshot
func (r *textRenderer) OnComplete(final messages.Snapshot) {
	r.write(r.splitter.Flush())

	calls := final.ToolCalls()
	if len(calls) > 0 && r.wrote {
		fmt.Fprintln(r.out)
	}
	for _, call := range calls {
		fmt.Fprintf(r.out, "%s %s\n", toolStyle.Styled("→ "+call.ToolName), call.ArgsText)
		r.wrote = true
	}
	if len(calls) == 0 && r.wrote {
		fmt.Fprintln(r.out)
	}
}

// OnError ends a partially printed line; the error itself is reported by the caller
func (r *textRenderer) OnError(err error) {
	if r.wrote {
		fmt.Fprintln(r.out)
	}
}

// jsonRenderer prints every snapshot as one JSON line
type jsonRenderer struct {
	enc *json.Encoder
}

func newJSONRenderer(out io.Writer) *jsonRenderer {
	return &jsonRenderer{enc: json.NewEncoder(out)}
}

func (r *jsonRenderer) OnSnapshot(prev, cur messages.Snapshot) {
	r.write(cur)
}

func (r *jsonRenderer) OnComplete(final messages.Snapshot) {}

// OnError prints the error in snapshot shape so consumers see one format
func (r *jsonRenderer) OnError(err error) {
	r.write(messages.ErrorSnapshot(err))
}

func (r *jsonRenderer) write(snap messages.Snapshot) {
	if err := r.enc.Encode(snap); err != nil {
		zap.S().Debugw("json_output_failed", "error", err)
	}
}

func newRenderer(config *Config, out io.Writer) messages.EventProcessor {
	if config.JSONOutput {
		return newJSONRenderer(out)
	}
	return newTextRenderer(out, config.Quiet)
}
