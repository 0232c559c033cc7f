package main

import (
	"reflect"
	"testing"

	"github.com/sp00kydogz/CuadernoCLI/internal/models"
	"github.com/sp00kydogz/CuadernoCLI/internal/noteservice"
)

func TestMetaOps(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"plain", []string{"+tag:x", "-tag:y"}, "+tag:x -tag:y"},
		{"title with space", []string{"title:Nuevo título", "+tag:x"}, `title:"Nuevo título" +tag:x`},
		{"signed key", []string{"+tag:dos palabras"}, `+tag:"dos palabras"`},
		{"bare phrase", []string{"Nuevo título"}, `"Nuevo título"`},
		{"already quoted", []string{`title:"a b"`}, `title:"a b"`},
		{"not a key", []string{"12:30 hoy"}, `"12:30 hoy"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := metaOps(tc.args); got != tc.want {
				t.Errorf("metaOps(%q) = %q, want %q", tc.args, got, tc.want)
			}
		})
	}
}

func TestMetaOps_AppliedFromArgv(t *testing.T) {
	// As received from `cuaderno meta nota.md "title:Nuevo título" +tag:x`.
	argv := []string{"title:Nuevo título", "+tag:x"}

	var h models.Header
	noteservice.ApplyMetaOps(&h, metaOps(argv))

	if h.Title == nil || *h.Title != "Nuevo título" {
		t.Fatalf("title = %v, want %q", h.Title, "Nuevo título")
	}
	if !reflect.DeepEqual(h.Tags, []string{"x"}) {
		t.Errorf("tags = %v, want [x]", h.Tags)
	}
}
