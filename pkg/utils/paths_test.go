package utils

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("PKGWEAVE_TEST_DIR", "/srv/lib")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "home", in: "~", want: xdg.Home},
		{name: "under home", in: "~/src/lib", want: filepath.Join(xdg.Home, "src", "lib")},
		{name: "env var", in: "$PKGWEAVE_TEST_DIR/pkg", want: "/srv/lib/pkg"},
		{name: "tilde user form untouched", in: "~other/x", want: "~other/x"},
		{name: "relative", in: "lib", want: "lib"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
