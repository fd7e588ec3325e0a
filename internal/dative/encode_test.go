package dative

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dativeconv/internal/ir"
)

func jsonUnmarshal(s string, v any) error { return json.Unmarshal([]byte(s), v) }

func decodeOne(t *testing.T, record string) Form {
	t.Helper()
	forms, err := DecodeForms([]byte("[" + record + "]"))
	require.NoError(t, err)
	require.Len(t, forms, 1)
	return forms[0]
}

func TestSourceRecordGolden(t *testing.T) {
	f := decodeOne(t, fullRecord)
	raw, err := f.SourceRecord()
	require.NoError(t, err)

	canonical, err := ir.Canonicalize(raw)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "source_record", canonical)
}

func TestSourceRecordFieldOrder(t *testing.T) {
	f := decodeOne(t, fullRecord)
	raw, err := f.SourceRecord()
	require.NoError(t, err)

	s := string(raw)
	assert.Regexp(t, `^\{"_id":"interlinear/11111111-1111-4111-8111-111111111111","version":1,"oldid":42,`, s)
	assert.Contains(t, s, `"datetime_entered":"2013-01-02T03:04:05.678Z"`)
	assert.Contains(t, s, `"date_elicited":"2012-11-30T00:00:00.000Z"`)
	assert.Contains(t, s, `"morpheme_break_ids":[[{"id":12,"code1":"go","code2":"V"},{"id":null,"code1":"PST","code2":"Agr"}]]`)
	assert.Contains(t, s, `"files":[]`)
}

func TestSourceRecordRoundTrip(t *testing.T) {
	f := decodeOne(t, fullRecord)
	raw, err := f.SourceRecord()
	require.NoError(t, err)

	// The preserved record carries the form UUID in _id, not UUID.
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	m["UUID"] = f.UUID.String()
	again, err := json.Marshal(m)
	require.NoError(t, err)

	g := decodeOne(t, string(again))
	assert.Equal(t, f.MorphemeBreakIDs, g.MorphemeBreakIDs)
	assert.True(t, f.DatetimeEntered.Equal(g.DatetimeEntered))
	assert.Equal(t, f.Speaker, g.Speaker)
}

func TestUtilityValue(t *testing.T) {
	empty := ""
	cat := "V-Agr"
	id := 1

	tests := []struct {
		name   string
		form   Form
		wantOK bool
	}{
		{"nothing present", Form{}, false},
		{"empty string present", Form{SyntacticCategoryString: &empty, BreakGlossCategory: &empty}, false},
		{"empty list present", Form{MorphemeBreakIDs: [][]SubToken{}}, false},
		{"category string", Form{SyntacticCategoryString: &cat}, true},
		{"break ids", Form{MorphemeBreakIDs: [][]SubToken{{{ID: &id}}}}, true},
		{"gloss ids", Form{MorphemeGlossIDs: [][]SubToken{{}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok, err := tt.form.UtilityValue()
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Nil(t, value)
			}
		})
	}
}

func TestUtilityValueLayout(t *testing.T) {
	cat := "V-Agr"
	f := Form{SyntacticCategoryString: &cat, DatetimeEntered: time.Unix(0, 0)}
	value, ok, err := f.UtilityValue()
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"version":1,"syntactic_category_string":"V-Agr","morpheme_break_ids":null,"morpheme_gloss_ids":null,"break_gloss_category":null}`, string(value))
}
