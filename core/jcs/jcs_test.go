package jcs

import "testing"

func TestCanonicalizeJSONSortsKeys(t *testing.T) {
	canonical, err := CanonicalizeJSON([]byte(`{"b":1,"a":2}`))
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if string(canonical) != `{"a":2,"b":1}` {
		t.Fatalf("unexpected canonical form: %s", canonical)
	}
}

func TestDigestValueIgnoresFieldOrder(t *testing.T) {
	type ab struct {
		A string `json:"a"`
		B int    `json:"b"`
	}
	type ba struct {
		B int    `json:"b"`
		A string `json:"a"`
	}
	first, err := DigestValue(ab{A: "x", B: 3})
	if err != nil {
		t.Fatalf("digest ab: %v", err)
	}
	second, err := DigestValue(ba{B: 3, A: "x"})
	if err != nil {
		t.Fatalf("digest ba: %v", err)
	}
	if first != second {
		t.Fatalf("canonical digests differ: %s vs %s", first, second)
	}
}

func TestSHA256HexKnownValue(t *testing.T) {
	if got := SHA256Hex([]byte("hi\n")); got != "98ea6e4f216f2fb4b69fff9b3a44842c38686ca685f3f55dc48c5d3fb1107be4" {
		t.Fatalf("unexpected digest: %s", got)
	}
	if SHA256Hex([]byte("hi\n")) == SHA256Hex([]byte("hi\r\n")) {
		t.Fatalf("line ending variants must not share a digest")
	}
}
