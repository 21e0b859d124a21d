package models

import (
	"encoding/json"
	"testing"
)

func TestNullStringUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want NullString
	}{
		{"plain scalar", `"act_123"`, NullString{String: "act_123", Valid: true}},
		{"null", `null`, NullString{}},
		{"envelope", `{"String":"act_123","Valid":true}`, NullString{String: "act_123", Valid: true}},
		{"invalid envelope", `{"String":"x","Valid":false}`, NullString{String: "x", Valid: false}},
		{"envelope without valid flag", `{"String":"y"}`, NullString{String: "y", Valid: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n NullString
			if err := json.Unmarshal([]byte(tc.in), &n); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.in, err)
			}
			if n != tc.want {
				t.Errorf("got %+v, want %+v", n, tc.want)
			}
		})
	}
}

func TestNullInt64Unmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want NullInt64
	}{
		{"plain scalar", `42`, NullInt64{Int64: 42, Valid: true}},
		{"null", `null`, NullInt64{}},
		{"envelope", `{"Int64":42,"Valid":true}`, NullInt64{Int64: 42, Valid: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n NullInt64
			if err := json.Unmarshal([]byte(tc.in), &n); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.in, err)
			}
			if n != tc.want {
				t.Errorf("got %+v, want %+v", n, tc.want)
			}
		})
	}
}

func TestNullMarshalNormalizes(t *testing.T) {
	// Whatever form arrived, the API emits plain-or-null.
	t.Run("valid string emits scalar", func(t *testing.T) {
		out, err := json.Marshal(NullString{String: "Launch", Valid: true})
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != `"Launch"` {
			t.Errorf("got %s, want \"Launch\"", out)
		}
	})

	t.Run("invalid emits null", func(t *testing.T) {
		out, err := json.Marshal(NullInt64{Int64: 9, Valid: false})
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != "null" {
			t.Errorf("got %s, want null", out)
		}
	})
}

func TestNullInt64Key(t *testing.T) {
	if k := (NullInt64{Int64: 42, Valid: true}).Key(); k != "42" {
		t.Errorf("key = %q, want 42", k)
	}
	if k := (NullInt64{}).Key(); k != "" {
		t.Errorf("null key = %q, want empty", k)
	}
}

func TestMetricsResultAccessors(t *testing.T) {
	t.Run("empty wrappers yield nil", func(t *testing.T) {
		var m MetricsResult
		if m.MetaCampaigns() != nil || m.GoogleCampaigns() != nil {
			t.Error("empty result must yield nil campaign slices")
		}
	})

	t.Run("outer wrapper is unwrapped", func(t *testing.T) {
		m := MetricsResult{
			Value:  [][]MetricsCampaign{{{Name: NullString{String: "A", Valid: true}}}},
			Google: [][]MetricsCampaign{{}},
		}
		if got := m.MetaCampaigns(); len(got) != 1 || got[0].Name.Value() != "A" {
			t.Errorf("meta campaigns = %+v", got)
		}
		if got := m.GoogleCampaigns(); len(got) != 0 {
			t.Errorf("google campaigns = %+v", got)
		}
	})
}
