package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/constella-backend/internal/data/repos/testutil"
)

func TestTranslateNames(t *testing.T) {
	log := testutil.Logger(t)

	tests := []struct {
		name     string
		language string
		out      string
		err      error
		want     map[string]string
		calls    int
	}{
		{
			name:     "english is identity",
			language: "en",
			want:     map[string]string{"Concept1": "Concept1", "Concept2": "Concept2"},
		},
		{
			name:     "plain json",
			language: "ko",
			out:      `{"Concept1":"개념1","Concept2":"개념2"}`,
			want:     map[string]string{"Concept1": "개념1", "Concept2": "개념2"},
			calls:    1,
		},
		{
			name:     "json fence",
			language: "ko",
			out:      "```json\n{\"Concept1\":\"별\"}\n```",
			want:     map[string]string{"Concept1": "별"},
			calls:    1,
		},
		{
			name:     "plain fence",
			language: "ko",
			out:      "```\n{\"Concept2\":\"행성\"}\n```",
			want:     map[string]string{"Concept2": "행성"},
			calls:    1,
		},
		{
			name:     "generator error",
			language: "ko",
			err:      errors.New("provider down"),
			want:     map[string]string{},
			calls:    1,
		},
		{
			name:     "not json",
			language: "ko",
			out:      "Invalid JSON",
			want:     map[string]string{},
			calls:    1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{jsonOut: tc.out, jsonErr: tc.err}
			tr := NewNameTranslator(log, gen, nil)
			got := tr.TranslateNames(context.Background(), []string{"Concept1", "Concept2"}, tc.language)
			if len(got) != len(tc.want) {
				t.Fatalf("TranslateNames: want=%v got=%v", tc.want, got)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Fatalf("TranslateNames[%q]: want=%q got=%q", k, v, got[k])
				}
			}
			if gen.jsonCalls != tc.calls {
				t.Fatalf("generator calls: want=%d got=%d", tc.calls, gen.jsonCalls)
			}
		})
	}
}
