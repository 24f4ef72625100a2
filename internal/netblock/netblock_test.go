package netblock

import (
	"net/netip"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"network block", "10.0.0.0/16", false},
		{"subnet block", "10.0.1.0/24", false},
		{"half subnet", "10.0.1.128/25", false},
		{"default route", "0.0.0.0/0", false},
		{"host bits set", "10.0.1.5/24", true},
		{"not a cidr", "10.0.0.0", true},
		{"garbage", "many-addresses", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestContains(t *testing.T) {
	network := netip.MustParsePrefix("10.0.0.0/16")

	tests := []struct {
		name  string
		inner string
		want  bool
	}{
		{"subnet inside", "10.0.1.0/24", true},
		{"same block", "10.0.0.0/16", true},
		{"smaller slice inside", "10.0.1.128/25", true},
		{"outside network", "10.1.0.0/24", false},
		{"wider than network", "10.0.0.0/8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := netip.MustParsePrefix(tt.inner)
			if got := Contains(network, inner); got != tt.want {
				t.Errorf("Contains(%s, %s) = %v, want %v", network, inner, got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	a := netip.MustParsePrefix("10.0.1.0/24")

	tests := []struct {
		name string
		b    string
		want bool
	}{
		{"disjoint sibling", "10.0.2.0/24", false},
		{"identical", "10.0.1.0/24", true},
		{"contained half", "10.0.1.128/25", true},
		{"containing network", "10.0.0.0/16", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := netip.MustParsePrefix(tt.b)
			if got := Overlaps(a, b); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", a, b, got, tt.want)
			}
		})
	}
}

func TestIsDefault(t *testing.T) {
	if !IsDefault(AllIPv4) {
		t.Error("expected 0.0.0.0/0 to be the default destination")
	}
	if IsDefault(netip.MustParsePrefix("10.0.0.0/16")) {
		t.Error("10.0.0.0/16 is not the default destination")
	}
}
