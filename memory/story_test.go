package memory

import "testing"

func TestClassifyAction(t *testing.T) {
	cases := []struct {
		action string
		want   string
	}{
		{"generate_app", "creation"},
		{"draft_email", "creation"},
		{"update_profile", "modification"},
		{"send_email", "sharing"},
		{"deploy_site", "sharing"},
		{"analyze_metrics", "analysis"},
		{"design_logo", "planning"},
		{"login", "general"},
		{"", "general"},
	}
	for _, tc := range cases {
		if got := ClassifyAction(tc.action); got != tc.want {
			t.Errorf("ClassifyAction(%q) = %q, want %q", tc.action, got, tc.want)
		}
	}
}

func TestMetadataMatches(t *testing.T) {
	meta := Metadata{
		AppName:     "Gmail",
		Action:      "send_email",
		ProjectName: "TaskMaster",
		Extra:       map[string]string{"campaign": "Launch Week"},
	}

	if !meta.Matches(nil) {
		t.Errorf("Empty filters must match everything")
	}
	if !meta.Matches(map[string]string{"app_name": "gmail"}) {
		t.Errorf("Expected case-insensitive match")
	}
	if !meta.Matches(map[string]string{"project_name": "task"}) {
		t.Errorf("Expected substring match")
	}
	if !meta.Matches(map[string]string{"app_name": "gmail", "action": "send"}) {
		t.Errorf("Expected all criteria to match together")
	}
	if meta.Matches(map[string]string{"app_name": "gmail", "action": "draft"}) {
		t.Errorf("One failing criterion must fail the whole filter")
	}
	if !meta.Matches(map[string]string{"campaign": "launch"}) {
		t.Errorf("Expected Extra fields to be filterable")
	}
	if meta.Matches(map[string]string{"no_such_key": "x"}) {
		t.Errorf("Absent keys must count as non-match")
	}
}

func TestMetadataStringMap(t *testing.T) {
	meta := Metadata{
		StoryID: "s1", AppName: "design", Action: "create_logo",
		Extra: map[string]string{"palette": "dark"},
	}
	m := meta.StringMap()
	if m["story_id"] != "s1" || m["app_name"] != "design" || m["palette"] != "dark" {
		t.Errorf("Unexpected string map: %v", m)
	}
}
