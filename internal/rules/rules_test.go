package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stripelint/stripelint/internal/types"
)

func TestDefault_Prefixes(t *testing.T) {
	tbl := Default()
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"secret test", `k = "sk_test_abcdefghij"`, []string{"sk_test_abcdefghij"}},
		{"secret live", "sk_live_ABCDEFGHIJ1234", []string{"sk_live_ABCDEFGHIJ1234"}},
		{"publishable test", "pk_test_0123456789", []string{"pk_test_0123456789"}},
		{"publishable live", "pk_live_0123456789abc", []string{"pk_live_0123456789abc"}},
		{"too short", "sk_test_abc", nil},
		{"wrong case", "SK_TEST_abcdefghij", nil},
		{"restricted key prefix", "rk_live_abcdefghij", nil},
		{"two on a line", "sk_test_aaaaaaaaaa sk_test_bbbbbbbbbb", []string{"sk_test_aaaaaaaaaa", "sk_test_bbbbbbbbbb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, m := range tbl.FindLine(0, tt.line) {
				got = append(got, m.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindLine_CapsAt64(t *testing.T) {
	body := ""
	for i := 0; i < 70; i++ {
		body += "a"
	}
	ms := Default().FindLine(3, "sk_test_"+body)
	require.Len(t, ms, 1)
	assert.Equal(t, 8+64, len(ms[0].Text))
	assert.Equal(t, 3, ms[0].Line)
	assert.Equal(t, 0, ms[0].Start)
}

func TestFindLine_RuneColumns(t *testing.T) {
	ms := Default().FindLine(0, "é = sk_test_abcdefghij")
	require.Len(t, ms, 1)
	assert.Equal(t, 4, ms[0].Start)
}

func TestSeverity(t *testing.T) {
	r, ok := Default().Lookup(StripeKeyID)
	require.True(t, ok)
	assert.Equal(t, types.SeverityError, r.Severity("sk_live_ABCDEFGHIJ"))
	assert.Equal(t, types.SeverityWarning, r.Severity("pk_live_ABCDEFGHIJ"))
	assert.Equal(t, types.SeverityWarning, r.Severity("sk_test_ABCDEFGHIJ"))
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile([]Rule{{ID: "", Pattern: "x"}})
	assert.Error(t, err)
	_, err = Compile([]Rule{{ID: "a", Pattern: "x"}, {ID: "a", Pattern: "y"}})
	assert.Error(t, err)
	_, err = Compile([]Rule{{ID: "bad", Pattern: "("}})
	assert.Error(t, err)
	_, err = Compile([]Rule{{ID: "empty", Pattern: "a*"}})
	assert.Error(t, err)
}

func TestMerge_AddsAndOverrides(t *testing.T) {
	tbl, err := Default().Merge([]Rule{{ID: "stripe_restricted", Pattern: `rk_(test|live)_[A-Za-z0-9]{10,64}`, ErrorWhen: "rk_live"}})
	require.NoError(t, err)
	assert.Equal(t, []string{StripeKeyID, "stripe_restricted"}, tbl.IDs())

	ms := tbl.FindLine(0, "rk_live_abcdefghij sk_test_abcdefghij")
	require.Len(t, ms, 2)
	assert.Equal(t, "stripe_restricted", ms[0].Rule)
	assert.Equal(t, StripeKeyID, ms[1].Rule)

	over, err := Default().Merge([]Rule{{ID: StripeKeyID, Pattern: `sk_live_[A-Za-z0-9]{10,64}`, ErrorWhen: "sk_live"}})
	require.NoError(t, err)
	assert.Len(t, over, 1)
	assert.Empty(t, over.FindLine(0, "sk_test_abcdefghij"))
}

func TestFindLine_OverlappingRulesLeftmostWins(t *testing.T) {
	tbl, err := Compile([]Rule{
		{ID: "short", Pattern: `sk_test_[a-z]{10}`},
		{ID: "long", Pattern: `sk_test_[a-z]{10,20}`},
	})
	require.NoError(t, err)
	ms := tbl.FindLine(0, "sk_test_abcdefghijklmn")
	require.Len(t, ms, 1)
	assert.Equal(t, "long", ms[0].Rule)
}
