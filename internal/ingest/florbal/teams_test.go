package florbal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const teamSearchPage = `
<html><body>
<table class="table">
  <thead><tr><th>Tým</th><th>Soutěž</th><th>Kategorie</th><th>Oddíl</th><th>Kraj</th><th>Město</th></tr></thead>
  <tbody>
    <tr>
      <td><a href="/team/detail/overview/41177">FBC Sokol Vyšehrad</a></td>
      <td>2. liga mužů</td><td>Muži</td><td>FBC Sokol Vyšehrad</td><td>Praha</td><td>Praha 2</td>
    </tr>
    <tr>
      <td><a href="/team/detail/overview/41180">FBC Sokol Vyšehrad B</a></td>
      <td>Pražský přebor</td><td>Muži</td>
    </tr>
    <tr>
      <td><a href="/team/detail/overview/draft">Rozpracovaný tým</a></td>
      <td>-</td><td>-</td><td>-</td><td>-</td><td>-</td>
    </tr>
    <tr>
      <td><a href="https://www.ceskyflorbal.cz/team/detail/overview/39001?season=2024">Sokol Vyšehrad dorost</a></td>
      <td>Dorostenci</td><td>Dorost</td><td>FBC Sokol Vyšehrad</td><td>Praha</td><td>Praha</td>
    </tr>
  </tbody>
</table>
</body></html>`

func TestExtractTeamSearch(t *testing.T) {
	results, err := ExtractTeamSearch(mustParse(t, teamSearchPage))
	require.NoError(t, err)

	assert.Equal(t, []TeamSearchResult{
		{TeamID: "41177", TeamName: "FBC Sokol Vyšehrad", Competition: "2. liga mužů", City: "Praha 2"},
		{TeamID: "41180", TeamName: "FBC Sokol Vyšehrad B", Competition: "Pražský přebor"},
		{TeamID: "39001", TeamName: "Sokol Vyšehrad dorost", Competition: "Dorostenci", City: "Praha"},
	}, results)
}

func TestExtractTeamSearch_LinkOutsideTable(t *testing.T) {
	page := `<ul><li><a href="/team/detail/overview/12">Tatran Střešovice</a></li></ul>`

	results, err := ExtractTeamSearch(mustParse(t, page))
	require.NoError(t, err)
	assert.Equal(t, []TeamSearchResult{{TeamID: "12", TeamName: "Tatran Střešovice"}}, results)
}

func TestExtractTeamSearch_NoTeams(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"empty directory", `<table><tbody><tr><td>Nenalezeno</td></tr></tbody></table>`},
		{"only blank links", `<a href="/team/detail/overview/5">  </a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := ExtractTeamSearch(mustParse(t, tt.html))
			require.ErrorIs(t, err, ErrNoTeams)
			assert.Nil(t, results)
			assert.Equal(t, KindEmptyResult, KindOf(err))
		})
	}
}
