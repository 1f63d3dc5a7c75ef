package service_test

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"skripta.hr/forum/internal/modules/notification/service"
)

func TestExtractMentions(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "no mentions",
			content: "Običan odgovor bez spominjanja.",
			want:    []string{},
		},
		{
			name:    "single mention",
			content: "Hvala @ana.kovac na odgovoru!",
			want:    []string{"ana.kovac"},
		},
		{
			name:    "multiple mentions",
			content: "@marko_h i @ivan-p imaju skriptu",
			want:    []string{"marko_h", "ivan-p"},
		},
		{
			name:    "duplicates collapse",
			content: "@marko_h vidi ovo, @marko_h ozbiljno",
			want:    []string{"marko_h"},
		},
		{
			name:    "too short ignored",
			content: "ovo @ab nije spomen",
			want:    []string{},
		},
		{
			name:    "matches inside emails too",
			content: "pišite na ana@skripta.hr",
			want:    []string{"skripta.hr"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := service.ExtractMentions(tc.content)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ExtractMentions(%q) = %v, want %v", tc.content, got, tc.want)
			}
		})
	}
}

func TestChannelFor(t *testing.T) {
	userID := uuid.MustParse("018f3b1a-0000-7000-8000-000000000001")
	want := "notifications:user:018f3b1a-0000-7000-8000-000000000001"
	if got := service.ChannelFor(userID); got != want {
		t.Fatalf("ChannelFor() = %q, want %q", got, want)
	}
}
