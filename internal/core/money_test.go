package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"1", 1},
		{"1.0", 1},
		{"1.23", 1.23},
		{" 2.50 ", 2.5},
		{"40abc", 40},
		{".5", 0.5},
		{"-3", -3},
		{"1e3", 1000},
		{"1e", 1},
		{"", 0},
		{"abc", 0},
		{".", 0},
		{"-", 0},
		{"1e999", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.out {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.out, got)
		}
	}
}

func TestAmountJSON(t *testing.T) {
	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
		E Amount `json:"e"`
	}
	in := `{"a": 12.5, "b": "300", "c": "", "d": true, "e": null}`
	if err := json.Unmarshal([]byte(in), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != 12.5 || v.B != 300 || v.C != 0 || v.D != 0 || v.E != 0 {
		t.Fatalf("unexpected decode %+v", v)
	}
	b, _ := json.Marshal(Amount(1234.5))
	if string(b) != "1234.5" {
		t.Fatalf("unexpected encoding %s", b)
	}
}
