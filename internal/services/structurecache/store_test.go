package structurecache

import "testing"

func TestNormalizeSubject(t *testing.T) {
	cases := map[string]string{
		"  Cálculo  Diferencial ": "cálculo diferencial",
		"LINEAR ALGEBRA":          "linear algebra",
		"física":                  "física",
		"   ":                     "",
	}
	for in, want := range cases {
		if got := NormalizeSubject(in); got != want {
			t.Fatalf("NormalizeSubject(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHashKeyDeterministic(t *testing.T) {
	a := HashKey("Calculus", "undergraduate")
	b := HashKey("Calculus", "undergraduate")
	if a != b {
		t.Fatalf("hash not deterministic: %q vs %q", a, b)
	}
}

func TestHashKeyCaseInsensitiveSubject(t *testing.T) {
	if HashKey("Calculus", "undergraduate") != HashKey("calculus", "undergraduate") {
		t.Fatalf("subject case must not change the hash")
	}
	if HashKey(" calculus ", "undergraduate") != HashKey("calculus", "undergraduate") {
		t.Fatalf("subject padding must not change the hash")
	}
}

func TestHashKeyDistinguishesLevel(t *testing.T) {
	if HashKey("Calculus", "undergraduate") == HashKey("Calculus", "graduate") {
		t.Fatalf("education level must change the hash")
	}
}

func TestHashKeyDistinguishesSubject(t *testing.T) {
	if HashKey("Calculus", "undergraduate") == HashKey("Algebra", "undergraduate") {
		t.Fatalf("subject must change the hash")
	}
}
