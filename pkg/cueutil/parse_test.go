// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	include!: [string, ...string]
	dev?:     bool
	...
}
`

type testSettings struct {
	Include []string `json:"include"`
	Dev     bool     `json:"dev"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		data        string
		wantErr     string
		wantInclude []string
	}{
		{
			name:        "valid JSON",
			data:        `{"include": ["packages/*/composer.json"], "dev": true}`,
			wantInclude: []string{"packages/*/composer.json"},
		},
		{
			name:        "unknown keys are allowed",
			data:        `{"include": ["a", "b"], "note": "x"}`,
			wantInclude: []string{"a", "b"},
		},
		{
			name:    "wrong element type",
			data:    `{"include": [1]}`,
			wantErr: "include[0]",
		},
		{
			name:    "empty include list",
			data:    `{"include": []}`,
			wantErr: "include",
		},
		{
			name:    "missing required field",
			data:    `{"dev": true}`,
			wantErr: "include",
		},
		{
			name:    "syntax error",
			data:    `{"include": [}`,
			wantErr: "extra.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := ParseAndDecode[testSettings]([]byte(testSchema), []byte(tt.data), "#Settings", WithFilename("extra.json"))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(result.Value.Include, ",") != strings.Join(tt.wantInclude, ",") {
				t.Errorf("Include = %v, want %v", result.Value.Include, tt.wantInclude)
			}
		})
	}
}

func TestValidate_SizeLimit(t *testing.T) {
	t.Parallel()

	_, err := Validate([]byte(testSchema), []byte(`{"include": ["a"]}`), "#Settings", WithMaxFileSize(4))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("expected size error, got %v", err)
	}
}
