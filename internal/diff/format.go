// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// UNIFIED DIFF FORMAT
// =============================================================================

// FormatNewFile returns a unified diff that adds content as a brand new file.
// The single hunk declares the whole file: "@@ -0,0 +1,N @@".
func FormatNewFile(path, content string) string {
	lines := SplitLines(content)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("diff --git a/%s b/%s\n", path, path))
	sb.WriteString("new file mode 100644\n")
	sb.WriteString("--- /dev/null\n")
	sb.WriteString(fmt.Sprintf("+++ b/%s\n", path))
	sb.WriteString(fmt.Sprintf("@@ -0,0 +1,%d @@\n", len(lines)))

	for _, line := range lines {
		sb.WriteString(DiffLineAdded.Prefix())
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// Summary returns a short "+N -M" description of a diff body.
func Summary(text string) string {
	additions, deletions := Stats(text)

	var parts []string
	if additions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", additions))
	}
	if deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", deletions))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, " ")
}
