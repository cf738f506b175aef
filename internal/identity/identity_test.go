package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Identity
	}{
		{
			name: "email only",
			text: "Reach me at Jane.Doe+events@Example.com.",
			want: Identity{Email: "Jane.Doe+events@Example.com"},
		},
		{
			name: "linkedin without scheme",
			text: "profile: linkedin.com/in/jane-doe/",
			want: Identity{LinkedIn: "linkedin.com/in/jane-doe/"},
		},
		{
			name: "both",
			text: "jane@x.com https://www.LinkedIn.com/in/JaneDoe",
			want: Identity{Email: "jane@x.com", LinkedIn: "https://www.LinkedIn.com/in/JaneDoe"},
		},
		{
			name: "company page is not a profile",
			text: "https://www.linkedin.com/company/acme",
			want: Identity{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Extract(tc.text))
		})
	}
}

func TestKeysAreCaseAndSchemeInsensitive(t *testing.T) {
	a := Keys([]string{"JANE@X.COM", "http://LinkedIn.com/in/Jane/"})
	b := Keys([]string{"jane@x.com", "https://www.linkedin.com/in/jane"})
	require.Equal(t, []string{"jane@x.com", "linkedin.com/in/jane"}, a)
	require.Equal(t, a, b)
}

func TestKeysCollectsEveryMatch(t *testing.T) {
	keys := Keys([]string{"a@x.com, b@y.org", "Email"})
	require.Equal(t, []string{"a@x.com", "b@y.org"}, keys)
}

func TestExtractCellsKeepsFirstMatch(t *testing.T) {
	id := ExtractCells([]string{"Jane", "jane@x.com", "other@y.com", "linkedin.com/in/jane"})
	require.Equal(t, "jane@x.com", id.Email)
	require.Equal(t, "linkedin.com/in/jane", id.LinkedIn)
	require.False(t, id.Empty())
	require.True(t, ExtractCells([]string{"no", "ids"}).Empty())
}

func TestCleanCell(t *testing.T) {
	require.Equal(t, "jane@x.com", CleanCell("  ｊａｎｅ@x.com  "))
	require.Equal(t, "Jane Doe", CleanCell("Jane\t\n  Doe"))
}

func TestSet(t *testing.T) {
	set := NewSet()
	set.AddRow([]string{"name", "email"})
	require.Equal(t, 0, set.Len())

	set.AddRow([]string{"Jane", "JANE@X.COM"})
	require.True(t, set.ContainsAny(EmailKey("jane@x.com")))
	require.False(t, set.ContainsAny("bob@x.com"))
	require.Equal(t, 1, set.Len())
}
