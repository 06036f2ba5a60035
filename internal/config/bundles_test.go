package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseBundles(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expected    int
		expectError string
	}{
		{
			name: "two bundles",
			content: `bundles:
  - name: site.css
    files: [reset.css, layout.css]
  - name: admin.css
    type: css
    files:
      - admin/*.css
`,
			expected: 2,
		},
		{
			name:     "empty file",
			content:  "",
			expected: 0,
		},
		{
			name: "missing name",
			content: `bundles:
  - files: [a.css]
`,
			expectError: "missing name",
		},
		{
			name: "javascript bundle",
			content: `bundles:
  - name: app.js
    type: js
    files: [a.js]
`,
			expectError: "unsupported type",
		},
		{
			name: "no files",
			content: `bundles:
  - name: site.css
`,
			expectError: "no files",
		},
		{
			name: "duplicate",
			content: `bundles:
  - name: site.css
    files: [a.css]
  - name: site.css
    files: [b.css]
`,
			expectError: "defined twice",
		},
		{
			name:        "malformed yaml",
			content:     "bundles: [",
			expectError: "failed to parse bundles",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundles, err := ParseBundles([]byte(tt.content))
			if tt.expectError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectError) {
					t.Fatalf("ParseBundles error = %v, want containing %q", err, tt.expectError)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBundles error: %v", err)
			}
			if len(bundles) != tt.expected {
				t.Errorf("ParseBundles = %d bundles, want %d", len(bundles), tt.expected)
			}
			for _, b := range bundles {
				if b.Type != "css" {
					t.Errorf("bundle %s Type = %q, want css", b.Name, b.Type)
				}
			}
		})
	}
}

func TestLoadBundles(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bundles.yaml")
	content := `bundles:
  - name: site.css
    files: [reset.css, layout.css]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	bundles, err := LoadBundles(path)
	if err != nil {
		t.Fatalf("LoadBundles error: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Name != "site.css" {
		t.Fatalf("LoadBundles = %+v", bundles)
	}
	if got := strings.Join(bundles[0].Files, ","); got != "reset.css,layout.css" {
		t.Errorf("Files = %q, want %q", got, "reset.css,layout.css")
	}

	if _, err := LoadBundles(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("LoadBundles should fail for a missing file")
	}
}
