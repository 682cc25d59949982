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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

type jsonEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func captureJSON(t *testing.T) (*bytes.Buffer, func() []jsonEntry) {
	var buf bytes.Buffer
	require.NoError(t, SetOutput(&buf, FormatJSON))
	t.Cleanup(func() {
		require.NoError(t, SetOutput(os.Stderr, FormatText))
		SetRedactable(false)
	})
	return &buf, func() []jsonEntry {
		var res []jsonEntry
		for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
			if line == "" {
				continue
			}
			var e jsonEntry
			require.NoError(t, json.Unmarshal([]byte(line), &e))
			res = append(res, e)
		}
		return res
	}
}

func TestSeverities(t *testing.T) {
	_, entries := captureJSON(t)
	ctx := context.Background()
	Infof(ctx, "info %d", 1)
	Warningf(ctx, "warning %d", 2)
	Errorf(ctx, "error %d", 3)

	require.Equal(t, []jsonEntry{
		{Level: "info", Message: "info 1"},
		{Level: "warn", Message: "warning 2"},
		{Level: "error", Message: "error 3"},
	}, entries())
}

func TestVerbosity(t *testing.T) {
	_, entries := captureJSON(t)
	ctx := context.Background()

	restore := SetVerbosity(1)
	require.True(t, V(1))
	require.False(t, V(2))
	VEventf(ctx, 2, "hidden")
	VEventf(ctx, 1, "shown")
	restore()
	require.False(t, V(1))

	require.Equal(t, []jsonEntry{{Level: "info", Message: "shown"}}, entries())
}

func TestContextTags(t *testing.T) {
	_, entries := captureJSON(t)
	ctx := logtags.AddTag(context.Background(), "n", 1)
	ctx = logtags.AddTag(ctx, "pass", "joinelim")
	Infof(ctx, "hello")

	require.Equal(t, []jsonEntry{{Level: "info", Message: "[n1,pass=joinelim] hello"}}, entries())
	require.Equal(t, "[n1,pass=joinelim] x=3", FormatWithContextTags(ctx, "x=%d", 3))
}

func TestRedactable(t *testing.T) {
	_, entries := captureJSON(t)
	ctx := context.Background()
	SetRedactable(true)
	Infof(ctx, "table %s column %s", redact.Safe("t"), "secret")
	SetRedactable(false)
	Infof(ctx, "table %s column %s", redact.Safe("t"), "secret")

	require.Equal(t, []jsonEntry{
		{Level: "info", Message: "table t column ‹secret›"},
		{Level: "info", Message: "table t column secret"},
	}, entries())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	require.Error(t, err)
}
