package streaming

import (
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	envelopeStatusKey = "statusCode"
	envelopeBodyKey   = "body"
	sseDataPrefix     = "data:"
	sseDoneMarker     = "[DONE]"
)

// SplitFrames extracts the JSON chunk objects contained in one physical chunk of text.
//
// Three shapes are recognized:
//   - a single chunk object;
//   - an aggregated envelope {"statusCode": ..., "body": "<concatenated chunk objects>"};
//   - newline-delimited objects, optionally SSE framed ("data: {...}").
//
// Unparsable pieces are skipped and never abort the chunk.
func SplitFrames(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	if gjson.Valid(trimmed) {
		obj := gjson.Parse(trimmed)
		if !obj.IsObject() {
			zap.S().Debugw("frame_not_object", "type", obj.Type.String())
			return nil
		}
		if body, ok := envelopeBody(obj); ok {
			return ScanObjects(body)
		}
		return []string{trimmed}
	}

	return splitLines(trimmed)
}

// envelopeBody returns the body string of an aggregated serverless response.
func envelopeBody(obj gjson.Result) (string, bool) {
	if !obj.Get(envelopeStatusKey).Exists() {
		return "", false
	}
	body := obj.Get(envelopeBodyKey)
	if body.Type != gjson.String {
		return "", false
	}
	return body.String(), true
}

func splitLines(text string) []string {
	var frames []string
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isSSEControlLine(line) {
			continue
		}
		if payload, ok := strings.CutPrefix(line, sseDataPrefix); ok {
			line = strings.TrimSpace(payload)
			if line == sseDoneMarker || line == "" {
				continue
			}
		}

		if gjson.Valid(line) {
			if gjson.Parse(line).IsObject() {
				frames = append(frames, line)
			}
			continue
		}

		// Concatenated objects on one line, or an object with trailing noise.
		found := ScanObjects(line)
		if len(found) == 0 {
			zap.S().Debugw("frame_line_skipped", "line_length", len(line))
		}
		frames = append(frames, found...)
	}
	return frames
}

func isSSEControlLine(line string) bool {
	return strings.HasPrefix(line, ":") ||
		strings.HasPrefix(line, "event:") ||
		strings.HasPrefix(line, "id:") ||
		strings.HasPrefix(line, "retry:")
}

// ScanObjects returns the consecutive top-level {...} objects in s, found by
// counting brace depth. Candidates that are not valid JSON are dropped.
//
// Known limitation: the scan does not understand JSON strings, so a literal
// brace inside a string value shifts the depth count and the surrounding
// object is lost.
func ScanObjects(s string) []string {
	var objects []string
	depth := 0
	start := -1

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := s[start : i+1]
				if gjson.Valid(candidate) {
					objects = append(objects, candidate)
				} else {
					zap.S().Debugw("frame_object_skipped", "length", len(candidate))
				}
				start = -1
			}
		}
	}
	return objects
}
