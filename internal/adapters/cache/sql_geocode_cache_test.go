package cache

import (
	"reflect"
	"testing"
)

func TestDedupeAddresses(t *testing.T) {
	in := []string{
		" 334 1st Ave N, Seattle ",
		"334 1st Ave N, Seattle",
		"",
		"   ",
		"1 N Center Court St, Portland",
	}
	want := []string{
		"334 1st Ave N, Seattle",
		"1 N Center Court St, Portland",
	}

	if got := dedupeAddresses(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("dedupeAddresses = %v, want %v", got, want)
	}

	if got := dedupeAddresses(nil); len(got) != 0 {
		t.Fatalf("dedupeAddresses(nil) = %v, want empty", got)
	}
}
