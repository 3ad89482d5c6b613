package extract

import "testing"

func TestParseReplyShapes(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  Fields
	}{
		{
			name:  "plain object",
			reply: `{"company":"Acme Corp","position":"Software Engineer Intern","location":"Remote","candidate_portal_url":"https://acme.example/portal"}`,
			want: Fields{
				Company:            "Acme Corp",
				Position:           "Software Engineer Intern",
				Location:           "Remote",
				CandidatePortalURL: "https://acme.example/portal",
			},
		},
		{
			name: "json fence with prose",
			reply: "Sure, here is the extraction:\n```json\n" +
				`{"company":"Acme Corp","position":"Intern","location":"","candidate_portal_url":""}` +
				"\n```\nLet me know if you need anything else.",
			want: Fields{Company: "Acme Corp", Position: "Intern"},
		},
		{
			name:  "bare fence",
			reply: "```\n" + `{"company":"Initech","position":"","location":"","candidate_portal_url":""}` + "\n```",
			want:  Fields{Company: "Initech"},
		},
		{
			name:  "unclosed json fence",
			reply: "```json\n" + `{"company":"Initech","position":"Analyst Intern","location":"","candidate_portal_url":""}`,
			want:  Fields{Company: "Initech", Position: "Analyst Intern"},
		},
		{
			name:  "prose around braces",
			reply: `The JSON you asked for is {"company":"Hooli","position":"","location":"","candidate_portal_url":""} as requested.`,
			want:  Fields{Company: "Hooli"},
		},
		{
			name:  "missing keys decode empty",
			reply: `{"company":"Hooli"}`,
			want:  Fields{Company: "Hooli"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseReply(tc.reply)
			if err != nil {
				t.Fatalf("ParseReply: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseReply = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParseReplyRejectsGarbage(t *testing.T) {
	for _, reply := range []string{
		"",
		"I cannot help with that request.",
		"```",
		"{company: Acme}",             // bare keys are not JSON
		`{"company": "Acme"`,          // unterminated object still has no closing brace
		"the braces are backwards }{", // end before start
	} {
		if _, err := ParseReply(reply); err == nil {
			t.Errorf("ParseReply(%q) succeeded, want error", reply)
		}
	}
}
