package httpapi

import (
	"testing"

	"github.com/pickemhq/pickem-api/internal/domain/game"
)

func TestTeamToDTO_DerivesMissingAbbreviation(t *testing.T) {
	cases := []struct {
		name string
		team game.Team
		want string
	}{
		{
			name: "stored abbreviation wins",
			team: game.Team{Name: "Philadelphia Eagles", Abbreviation: "PHI"},
			want: "PHI",
		},
		{
			name: "derived from name when missing",
			team: game.Team{Name: "Philadelphia Eagles"},
			want: "PHI",
		},
		{
			name: "short name kept whole",
			team: game.Team{Name: "KC"},
			want: "KC",
		},
		{
			name: "blank name still yields a code",
			team: game.Team{Name: "   "},
			want: "???",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dto := teamToDTO(tc.team)
			if dto.Abbreviation != tc.want {
				t.Fatalf("expected abbreviation %q, got %q", tc.want, dto.Abbreviation)
			}
			if dto.Name != tc.team.Name {
				t.Fatalf("expected name %q, got %q", tc.team.Name, dto.Name)
			}
		})
	}
}
