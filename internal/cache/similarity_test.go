package cache

import "testing"

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"What is the capital of France?", []string{"what", "is", "the", "capital", "of", "france"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{"punct,separated;words", []string{"punct", "separated", "words"}},
		{"", nil},
		{"?!.", nil},
	}

	for _, tt := range tests {
		got := tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("tokenize(%q) has %d tokens, want %d", tt.in, len(got), len(tt.want))
			continue
		}
		for _, w := range tt.want {
			if _, ok := got[w]; !ok {
				t.Errorf("tokenize(%q) missing token %q", tt.in, w)
			}
		}
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "red green blue", "blue green red", 1.0},
		{"disjoint", "red green", "cyan magenta", 0.0},
		{"partial", "alpha beta gamma one", "alpha beta gamma", 0.75},
		{"both empty", "", "", 0.0},
		{"one empty", "red", "", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jaccard(tokenize(tt.a), tokenize(tt.b))
			if got != tt.want {
				t.Errorf("jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// The metric is symmetric by contract.
			if rev := jaccard(tokenize(tt.b), tokenize(tt.a)); rev != got {
				t.Errorf("jaccard is not symmetric: %v vs %v", got, rev)
			}
		})
	}
}
