package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongestQualifiedPrefix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"type call", "Foo", "Foo"},
		{"static member", "Foo.bar", "Foo"},
		{"nested type", "Foo.Bar", "Foo.Bar"},
		{"nested static member", "Foo.Bar.baz", "Foo.Bar"},
		{"stops at first lower segment", "Foo.bar.Baz", "Foo"},
		{"free function", "print", ""},
		{"member on value", "super.someFunc", ""},
		{"empty", "", ""},
		{"unicode upper", "Ärger.make", "Ärger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestQualifiedPrefix(tt.in))
		})
	}
}

func TestTypeReferences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "Int", []string{"Int"}},
		{"generic", "Dictionary<String,Foo.Bar>", []string{"Dictionary", "String", "Foo.Bar"}},
		{"dictionary sugar", "[String: Foo]", []string{"String", "Foo"}},
		{"optional", "Foo?", []string{"Foo"}},
		{"closure", "(Foo) -> Bar", []string{"Foo", "Bar"}},
		{"keywords dropped", "inout some Foo", []string{"Foo"}},
		{"lower only", "x", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeReferences(tt.in))
		})
	}
}
