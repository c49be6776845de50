package api

import (
	"encoding/json"
	"testing"
)

func TestInt64_Unmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    Int64
		wantErr bool
	}{
		{`123`, 123, false},
		{`"123"`, 123, false},
		{`" 123 "`, 123, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`-5`, -5, false},
		{`"1700000000"`, 1700000000, false},
		{`1.0`, 1, false},
		{`1e3`, 1000, false},
		{`"1.9"`, 0, true},
		{`1.5`, 0, true},
		{`1e30`, 0, true},
		{`"1e30"`, 0, true},
		{`-1e30`, 0, true},
		{`"NaN"`, 0, true},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got struct {
				N Int64 `json:"n"`
			}
			err := json.Unmarshal([]byte(`{"n":`+tt.input+`}`), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.N != tt.want {
				t.Errorf("N = %d, want %d", got.N, tt.want)
			}
		})
	}
}

func TestInt64_Marshal(t *testing.T) {
	data, err := json.Marshal(Int64(42))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "42" {
		t.Errorf("Marshal() = %s, want 42", data)
	}
}

func TestBool_Unmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    Bool
		wantErr bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`1`, true, false},
		{`0`, false, false},
		{`"1"`, true, false},
		{`"true"`, true, false},
		{`"false"`, false, false},
		{`""`, false, false},
		{`null`, false, false},
		{`"maybe"`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got struct {
				B Bool `json:"b"`
			}
			err := json.Unmarshal([]byte(`{"b":`+tt.input+`}`), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.B != tt.want {
				t.Errorf("B = %v, want %v", got.B, tt.want)
			}
		})
	}
}
