// Copyright 2026 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package log

import (
	"context"
	"strings"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// FormatWithContextTags renders a message the way the text sink does, with
// the bracketed tags of ctx in front, e.g. "[pass=joinelim] promoted ...".
// Arguments are rendered without redaction markers, so sensitive values are
// not marked in the output.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	formatTags(ctx, true /* brackets */, &buf)
	buf.WriteString(renderArgs(false /* redactable */, format, args))
	return buf.String()
}

// formatTags appends the context tags to buf. Single-letter keys are written
// directly in front of their value, e.g. "n1", others as key=value. It returns
// false if there were no tags.
func formatTags(ctx context.Context, brackets bool, buf *strings.Builder) bool {
	tags := logtags.FromContext(ctx)
	if tags == nil {
		return false
	}
	list := tags.Get()
	if len(list) == 0 {
		return false
	}
	if brackets {
		buf.WriteByte('[')
	}
	for i := range list {
		tag := &list[i]
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(tag.Key())
		if v := tag.Value(); v != nil && v != "" {
			if len(tag.Key()) > 1 {
				buf.WriteByte('=')
			}
			buf.WriteString(tag.ValueStr())
		}
	}
	if brackets {
		buf.WriteString("] ")
	}
	return true
}

// renderArgs formats the arguments. When redactable is set, unsafe values
// are enclosed in redaction markers.
func renderArgs(redactable bool, format string, args []interface{}) string {
	if len(args) == 0 && format == "" {
		return ""
	}
	var s redact.RedactableString
	if len(args) == 0 {
		s = redact.Sprint(redact.Safe(format))
	} else {
		s = redact.Sprintf(format, args...)
	}
	if redactable {
		return string(s)
	}
	return s.StripMarkers()
}

// Safe marks a value as safe for reporting: it is never enclosed in
// redaction markers.
func Safe(a interface{}) redact.SafeValue {
	return redact.Safe(a)
}
