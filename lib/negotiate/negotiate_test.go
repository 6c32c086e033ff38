// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package negotiate

import (
	"errors"
	"testing"
)

func TestAcceptanceAllows(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[Encoding]bool
	}{
		{
			name:   "absent_header_accepts_identity_only",
			header: "",
			want:   map[Encoding]bool{Identity: true, Gzip: false, Brotli: false, Zstd: false},
		},
		{
			name:   "single_coding_keeps_identity_default",
			header: "gzip",
			want:   map[Encoding]bool{Identity: true, Gzip: true, Brotli: false, Zstd: false},
		},
		{
			name:   "identity_only",
			header: "identity",
			want:   map[Encoding]bool{Identity: true, Gzip: false, Brotli: false, Zstd: false},
		},
		{
			name:   "wildcard_accepts_everything",
			header: "*",
			want:   map[Encoding]bool{Identity: true, Gzip: true, Brotli: true, Zstd: true},
		},
		{
			name:   "refusing_wildcard_refuses_identity_too",
			header: "*;q=0",
			want:   map[Encoding]bool{Identity: false, Gzip: false, Brotli: false, Zstd: false},
		},
		{
			name:   "explicit_entry_overrides_wildcard",
			header: "gzip;q=0, *",
			want:   map[Encoding]bool{Identity: true, Gzip: false, Brotli: true, Zstd: true},
		},
		{
			name:   "identity_refused_explicitly",
			header: "gzip, identity;q=0",
			want:   map[Encoding]bool{Identity: false, Gzip: true, Brotli: false, Zstd: false},
		},
		{
			name:   "qvalues_gate_without_reordering",
			header: "gzip;q=1.0, br;q=0.1, zstd;q=0.5",
			want:   map[Encoding]bool{Identity: true, Gzip: true, Brotli: true, Zstd: true},
		},
		{
			name:   "unknown_codings_are_ignored",
			header: "deflate, compress;q=0.5",
			want:   map[Encoding]bool{Identity: true, Gzip: false, Brotli: false, Zstd: false},
		},
		{
			name:   "legacy_x_gzip_alias",
			header: "x-gzip",
			want:   map[Encoding]bool{Identity: true, Gzip: true, Brotli: false, Zstd: false},
		},
		{
			name:   "tokens_are_case_insensitive",
			header: "GZip, BR;Q=0",
			want:   map[Encoding]bool{Identity: true, Gzip: true, Brotli: false, Zstd: false},
		},
		{
			name:   "whitespace_between_members",
			header: " br ;q=0.9 ,\tzstd ",
			want:   map[Encoding]bool{Identity: true, Gzip: false, Brotli: true, Zstd: true},
		},
		{
			name:   "unparsable_member_is_ignored",
			header: "br;q=abc, gzip",
			want:   map[Encoding]bool{Identity: true, Gzip: true, Brotli: false, Zstd: false},
		},
		{
			name:   "out_of_range_q_is_ignored",
			header: "br;q=2.0, zstd;q=-1",
			want:   map[Encoding]bool{Identity: true, Gzip: false, Brotli: false, Zstd: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ParseAccept(tt.header)
			for e, want := range tt.want {
				if got := a.Allows(e); got != want {
					t.Errorf("ParseAccept(%q).Allows(%v) = %v, want %v", tt.header, e, got, want)
				}
			}
		})
	}
}

func TestChoose(t *testing.T) {
	all := [NumEncodings]bool{Identity: true, Gzip: true, Brotli: true, Zstd: true}
	identityOnly := [NumEncodings]bool{Identity: true}
	identityGzip := [NumEncodings]bool{Identity: true, Gzip: true}

	tests := []struct {
		name      string
		header    string
		available [NumEncodings]bool
		want      Encoding
		wantErr   bool
	}{
		// Fixed preference order: brotli beats zstd beats gzip.
		{name: "wildcard_prefers_brotli", header: "*", available: all, want: Brotli},
		{name: "all_listed_prefers_brotli", header: "gzip, br, zstd", available: all, want: Brotli},
		{name: "zstd_when_brotli_unavailable", header: "*", available: [NumEncodings]bool{Identity: true, Gzip: true, Zstd: true}, want: Zstd},
		{name: "zstd_when_brotli_refused", header: "br;q=0, *", available: all, want: Zstd},
		// A high q-value never reorders the server preference.
		{name: "qvalues_do_not_reorder", header: "gzip;q=1.0, br;q=0.001", available: all, want: Brotli},
		{name: "gzip_for_gzip_only_client", header: "gzip", available: identityGzip, want: Gzip},
		{name: "identity_for_identity_client", header: "identity", available: identityGzip, want: Identity},
		{name: "identity_when_nothing_else_stored", header: "br, gzip, zstd", available: identityOnly, want: Identity},
		{name: "absent_header_serves_identity", header: "", available: all, want: Identity},
		// 406 paths.
		{name: "identity_refused_no_alternative", header: "identity;q=0", available: identityOnly, wantErr: true},
		{name: "refusing_wildcard_no_alternative", header: "*;q=0", available: all, wantErr: true},
		{name: "only_unstored_codings_accepted", header: "identity;q=0, deflate", available: identityGzip, wantErr: true},
		{name: "refused_identity_falls_back_to_gzip", header: "gzip, identity;q=0", available: identityGzip, want: Gzip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Choose(ParseAccept(tt.header), tt.available)
			if tt.wantErr {
				if !errors.Is(err, ErrNotAcceptable) {
					t.Fatalf("Choose(%q) error = %v, want ErrNotAcceptable", tt.header, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Choose(%q): %v", tt.header, err)
			}
			if got != tt.want {
				t.Errorf("Choose(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestCutSuffix(t *testing.T) {
	tests := []struct {
		name        string
		wantLogical string
		wantEnc     Encoding
		wantOK      bool
	}{
		{"app.js.gz", "app.js", Gzip, true},
		{"app.js.br", "app.js", Brotli, true},
		{"app.js.zst", "app.js", Zstd, true},
		{"assets/app.js.gz", "assets/app.js", Gzip, true},
		{"app.js", "app.js", Identity, false},
		{"archive.tar", "archive.tar", Identity, false},
		// A bare suffix is an ordinary file name.
		{".gz", ".gz", Identity, false},
		{"dir/.br", "dir/.br", Identity, false},
	}

	for _, test := range tests {
		logical, e, ok := CutSuffix(test.name)
		if logical != test.wantLogical || e != test.wantEnc || ok != test.wantOK {
			t.Errorf("CutSuffix(%q) = (%q, %v, %v), want (%q, %v, %v)",
				test.name, logical, e, ok, test.wantLogical, test.wantEnc, test.wantOK)
		}
	}
}

func TestSuffixRoundTrip(t *testing.T) {
	for _, e := range Compressed() {
		name := "index.html" + e.Suffix()
		logical, got, ok := CutSuffix(name)
		if !ok || got != e || logical != "index.html" {
			t.Errorf("CutSuffix(%q) = (%q, %v, %v), want (index.html, %v, true)", name, logical, got, ok, e)
		}
	}
}

func TestEncodingTokens(t *testing.T) {
	tests := []struct {
		e    Encoding
		want string
	}{
		{Identity, "identity"},
		{Gzip, "gzip"},
		{Brotli, "br"},
		{Zstd, "zstd"},
	}
	for _, test := range tests {
		if got := test.e.String(); got != test.want {
			t.Errorf("Encoding(%d).String() = %q, want %q", test.e, got, test.want)
		}
	}
}
