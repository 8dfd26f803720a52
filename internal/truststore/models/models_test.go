package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Domain
		wantErr bool
	}{
		{name: "user", input: "user", want: DomainUser},
		{name: "admin", input: "admin", want: DomainAdmin},
		{name: "system", input: "system", want: DomainSystem},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "global", wantErr: true},
		{name: "case sensitive", input: "User", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDomain(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDomain_String(t *testing.T) {
	assert.Equal(t, "user", DomainUser.String())
	assert.Equal(t, "admin", DomainAdmin.String())
	assert.Equal(t, "system", DomainSystem.String())
	assert.Equal(t, "domain(7)", Domain(7).String())
}

func TestDomain_IsValid(t *testing.T) {
	assert.True(t, DomainUser.IsValid())
	assert.True(t, DomainAdmin.IsValid())
	assert.True(t, DomainSystem.IsValid())
	assert.False(t, Domain(-1).IsValid())
	assert.False(t, Domain(3).IsValid())
}

func TestParseScope(t *testing.T) {
	t.Run("accepts user and machine", func(t *testing.T) {
		for _, input := range []string{"user", "machine"} {
			scope, err := ParseScope(input)
			require.NoError(t, err)
			assert.Equal(t, input, scope.String())
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseScope("")
		require.Error(t, err)
	})

	t.Run("rejects unknown", func(t *testing.T) {
		_, err := ParseScope("global")
		require.Error(t, err)
	})
}

func TestScope_Domains(t *testing.T) {
	t.Run("user scope spans the user domain only", func(t *testing.T) {
		assert.Equal(t, []Domain{DomainUser}, ScopeUser.Domains())
	})

	t.Run("machine scope evaluates admin before system", func(t *testing.T) {
		assert.Equal(t, []Domain{DomainAdmin, DomainSystem}, ScopeMachine.Domains())
	})

	t.Run("unknown scope spans nothing", func(t *testing.T) {
		assert.Nil(t, Scope("global").Domains())
	})
}

func TestRecord_Result(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   Outcome
		wantOK bool
	}{
		{
			name:   "outcome value",
			record: Record{KeyResult: OutcomeDeny},
			want:   OutcomeDeny,
			wantOK: true,
		},
		{
			name:   "int value",
			record: Record{KeyResult: 1},
			want:   OutcomeTrustRoot,
			wantOK: true,
		},
		{
			name:   "int32 value",
			record: Record{KeyResult: int32(3)},
			want:   OutcomeDeny,
			wantOK: true,
		},
		{
			name:   "int64 value",
			record: Record{KeyResult: int64(4)},
			want:   OutcomeUnspecified,
			wantOK: true,
		},
		{
			name:   "integral float from JSON",
			record: Record{KeyResult: float64(3)},
			want:   OutcomeDeny,
			wantOK: true,
		},
		{
			name:   "json number",
			record: Record{KeyResult: json.Number("1")},
			want:   OutcomeTrustRoot,
			wantOK: true,
		},
		{
			name:   "value outside known outcomes still decides",
			record: Record{KeyResult: 99},
			want:   Outcome(99),
			wantOK: true,
		},
		{
			name:   "missing key",
			record: Record{"policy": "ssl"},
			wantOK: false,
		},
		{
			name:   "empty record",
			record: Record{},
			wantOK: false,
		},
		{
			name:   "nil record",
			record: nil,
			wantOK: false,
		},
		{
			name:   "string value is not numeric",
			record: Record{KeyResult: "3"},
			wantOK: false,
		},
		{
			name:   "bool value is not numeric",
			record: Record{KeyResult: true},
			wantOK: false,
		},
		{
			name:   "fractional float is lossy",
			record: Record{KeyResult: 3.5},
			wantOK: false,
		},
		{
			name:   "int64 out of 32-bit range is lossy",
			record: Record{KeyResult: int64(1) << 40},
			wantOK: false,
		},
		{
			name:   "fractional json number is lossy",
			record: Record{KeyResult: json.Number("3.5")},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.record.Result()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRecord_Result_JSONRoundTrip(t *testing.T) {
	// Settings decoded from JSON carry float64 values; the result must
	// still be extracted.
	raw := `[{"result": 3}, {"result": 1, "policy": "ssl"}]`

	var settings TrustSettings
	require.NoError(t, json.Unmarshal([]byte(raw), &settings))
	require.Len(t, settings, 2)

	outcome, ok := settings[0].Result()
	require.True(t, ok)
	assert.Equal(t, OutcomeDeny, outcome)

	assert.Len(t, settings[1], 2, "constraint keys survive decoding")
}

func TestTrustSettings_AssertedOutcome(t *testing.T) {
	tests := []struct {
		name     string
		settings TrustSettings
		want     Outcome
		wantOK   bool
	}{
		{
			name:     "empty sequence asserts trust root",
			settings: TrustSettings{},
			want:     OutcomeTrustRoot,
			wantOK:   true,
		},
		{
			name:     "nil sequence asserts trust root",
			settings: nil,
			want:     OutcomeTrustRoot,
			wantOK:   true,
		},
		{
			name:     "first usable record decides",
			settings: TrustSettings{{KeyResult: OutcomeDeny}, {KeyResult: OutcomeTrustRoot}},
			want:     OutcomeDeny,
			wantOK:   true,
		},
		{
			name: "constrained record never decides",
			settings: TrustSettings{
				{KeyResult: OutcomeDeny, "policy": "ssl"},
				{KeyResult: OutcomeTrustRoot},
			},
			want:   OutcomeTrustRoot,
			wantOK: true,
		},
		{
			name:     "unusable result values are skipped",
			settings: TrustSettings{{KeyResult: "3"}, {KeyResult: 3.5}, {KeyResult: OutcomeDeny}},
			want:     OutcomeDeny,
			wantOK:   true,
		},
		{
			name:     "no record decides",
			settings: TrustSettings{{KeyResult: OutcomeDeny, "policy": "ssl"}, {"note": "x"}},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.settings.AssertedOutcome()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "trust_root", OutcomeTrustRoot.String())
	assert.Equal(t, "deny", OutcomeDeny.String())
	assert.Equal(t, "unspecified", OutcomeUnspecified.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
