package florbal

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_JSONShape(t *testing.T) {
	ok := Ok([]TeamSearchResult{{TeamID: "12", TeamName: "Tatran"}})
	b, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"data":[{"teamId":"12","teamName":"Tatran"}]}`, string(b))

	fail := Fail[[]TeamSearchResult](ErrNoTeams)
	b, err = json.Marshal(fail)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":"no teams found","kind":"empty_result"}`, string(b))
}

func TestResult_DecodeFailureKeepsKind(t *testing.T) {
	var res Result[MatchRoster]
	require.NoError(t, json.Unmarshal([]byte(`{"ok":false,"error":"server returned error 502","kind":"http"}`), &res))

	assert.False(t, res.OK)
	assert.Equal(t, KindHTTP, res.Kind)
	assert.Equal(t, "server returned error 502", res.Err().Error())
	assert.Equal(t, KindHTTP, KindOf(res.Err()))
}

func TestFail_UnclassifiedErrorBecomesParseFailure(t *testing.T) {
	res := Fail[int](errors.New("boom"))

	assert.False(t, res.OK)
	assert.Equal(t, KindStructure, res.Kind)
	assert.Equal(t, "unknown error while parsing the page", res.Error)
}

func TestOk_ErrIsNil(t *testing.T) {
	assert.NoError(t, Ok(MatchRoster{}).Err())
}
