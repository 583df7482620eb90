package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty becomes root", "", "/"},
		{"root stays root", "/", "/"},
		{"bare segment gains leading slash", "order", "/order"},
		{"already normalized unchanged", "/order", "/order"},
		{"trailing slash stripped", "/order/", "/order"},
		{"multiple leading slashes collapsed", "//order", "/order"},
		{"multiple trailing slashes stripped", "/order///", "/order"},
		{"nested path kept", "shop/order/refund", "/shop/order/refund"},
		{"only slashes becomes root", "///", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "/", "order", "/order/", "//a/b///", "graphql"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize not idempotent for %q", in)
	}
}

func TestResolver_Reserved(t *testing.T) {
	r := NewResolver("graphql")

	d := r.Resolve("graphql")
	assert.Equal(t, Reserved, d.Kind)
	assert.Equal(t, "/graphql", d.Path)

	d = r.Resolve("/graphql")
	assert.Equal(t, Reserved, d.Kind)

	d = r.Resolve("/graphql/")
	assert.Equal(t, Reserved, d.Kind)
}

func TestResolver_MarkerSubstringIsCapture(t *testing.T) {
	r := NewResolver("graphql")

	// A path that merely contains the marker as a substring or prefix is
	// still tenant capture traffic.
	for _, raw := range []string{"/graphql-webhook", "/graphqlx", "/graphql/sub", "/my/graphql"} {
		d := r.Resolve(raw)
		assert.Equal(t, Capture, d.Kind, "path %q must be captured", raw)
	}
}

func TestResolver_CaptureNormalizes(t *testing.T) {
	r := NewResolver("/graphql")

	d := r.Resolve("")
	assert.Equal(t, Capture, d.Kind)
	assert.Equal(t, "/", d.Path)

	d = r.Resolve("order/")
	assert.Equal(t, Capture, d.Kind)
	assert.Equal(t, "/order", d.Path)
}

func TestResolver_MarkerFormsEquivalent(t *testing.T) {
	bare := NewResolver("graphql")
	slashed := NewResolver("/graphql")

	assert.Equal(t, bare.Resolve("/graphql").Kind, slashed.Resolve("/graphql").Kind)
	assert.Equal(t, bare.Resolve("/other").Kind, slashed.Resolve("/other").Kind)
}
