package weather

import "testing"

func TestDescribeCodeKnown(t *testing.T) {
	cases := map[int]string{
		0:  "Klarer Himmel",
		2:  "Teilweise bewoelkt",
		45: "Nebel",
		99: "Gewitter mit starkem Hagel",
	}
	for code, want := range cases {
		if got := DescribeCode(code); got != want {
			t.Errorf("DescribeCode(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestDescribeCodeUnknownFallsBack(t *testing.T) {
	for _, code := range []int{-1, 4, 42, 100, 1000} {
		if got := DescribeCode(code); got != DescriptionUnavailable {
			t.Errorf("DescribeCode(%d) = %q, want fallback %q", code, got, DescriptionUnavailable)
		}
	}
}
