// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{UVNotFoundId, false, "uv is not installed"},
		{FolderNotFoundId, false, "Folder not found"},
		{ScriptNotFoundId, false, "Script not found"},
		{LaunchFailedId, false, "could not be run"},
		{TimeoutExceededId, false, "Execution timed out"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{InvalidSecretsId, false, "Invalid --secrets value"},
		{RunnerProtocolBrokenId, false, "did not emit valid JSON"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Get(%d).Id() = %d", tt.id, issue.Id())
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain '%s'", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), len(issues))
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Errorf("Values() not ordered by id at %d", i)
		}
	}
}

func TestIssue_ExtLinks(t *testing.T) {
	issue := Get(UVNotFoundId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("expected uv install link")
	}

	links[0] = "modified"
	if issue.ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	var gotStyle string
	render = func(in string, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	rendered, err := Get(UVNotFoundId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	if !strings.Contains(rendered, "## See also") || !strings.Contains(rendered, "docs.astral.sh") {
		t.Errorf("Render() output missing links:\n%s", rendered)
	}
}
